package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationWarning NotificationKind = "warning"
)

// MODELS:

type ExpenseType struct {
	ID   string
	Name string
}

type Budget struct {
	ID        string
	UserID    string
	TypeID    string
	Name      string
	Limit     decimal.Decimal
	Spent     decimal.Decimal // derived, always recomputed from linked expenses
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

type Expense struct {
	ID          string
	UserID      string
	TypeID      string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Notes       string
	BudgetID    *string
}

type Notification struct {
	ID         string
	UserID     string
	BudgetID   *string
	BudgetName *string
	Message    string
	Kind       NotificationKind
	IsRead     bool
	NotifiedAt time.Time
}

type AccountInfo struct {
	UserID   string
	Name     string
	Email    string
	Phone    string
	Role     string
	JoinedAt time.Time
}

// REQUESTS START:

type BudgetRequest struct {
	TypeID    string
	Name      string
	Limit     decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

type UpdateBudgetRequest struct {
	ID         string
	NewTypeID  string
	NewName    string
	NewLimit   decimal.Decimal
	NewStart   time.Time
	NewEnd     time.Time
	NewNotes   string
	UpdateTime time.Time
}

type ExpenseRequest struct {
	TypeID      string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	Notes       string
	BudgetID    *string
}

type UpdateExpenseRequest struct {
	ID             string
	NewTypeID      string
	NewAmount      decimal.Decimal
	NewDate        time.Time
	NewDescription string
	NewNotes       string
	NewBudgetID    *string
	UpdateTime     time.Time
}

// REQUESTS END:

// RESPONSES:

type BudgetResponse struct {
	ID        string
	Name      string
	Category  string // joined expense type name
	Limit     decimal.Decimal
	Spent     decimal.Decimal
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

type ExpenseResponse struct {
	ID          string
	Date        time.Time
	Category    string // joined expense type name
	Description string
	Amount      decimal.Decimal
	Notes       string
	BudgetID    *string
}

type BudgetName struct {
	ID   string
	Name string
}

type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
}

// MonthlyTotal buckets expenses by calendar month. Grouping is year-aware,
// so a January from two different years never collapses into one bucket.
type MonthlyTotal struct {
	Year  int
	Month time.Month
	Label string // short month name, e.g. "Jan"
	Total decimal.Decimal
}

type BudgetCategorySummary struct {
	TypeID     string
	Name       string
	TotalLimit decimal.Decimal
	TotalSpent decimal.Decimal
}

type TotalWithTrend struct {
	Total decimal.Decimal
	Trend TrendResult
}
