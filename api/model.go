package api

import (
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// REQUESTS START:

type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SendOTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type ExpenseTypeRequest struct {
	Name string `json:"name"`
}

type BudgetRequest struct {
	TypeID    string          `json:"type_id"`
	Name      string          `json:"name"`
	Limit     decimal.Decimal `json:"limit"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Notes     string          `json:"notes"`
}

type ExpenseRequest struct {
	TypeID      string          `json:"type_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Notes       string          `json:"notes"`
	BudgetID    *string         `json:"budget_id"`
}

// REQUESTS END:

// RESPONSES:

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type AccountInfoResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	JoinedAt string `json:"joined_at"`
}

type ExpenseTypeItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BudgetItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Notes     string          `json:"notes"`
}

type ExpenseItem struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes"`
	BudgetID    *string         `json:"budget_id"`
}

type BudgetNameItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NotificationItem struct {
	ID         string  `json:"id"`
	BudgetID   *string `json:"budget_id"`
	BudgetName *string `json:"budget_name"`
	Message    string  `json:"message"`
	Type       string  `json:"type"`
	IsRead     bool    `json:"is_read"`
	NotifiedAt string  `json:"notified_at"`
}

type TrendItem struct {
	Percentage string `json:"percentage"`
	IsPositive bool   `json:"is_positive"`
}

type TotalResponse struct {
	Total decimal.Decimal `json:"total"`
	Trend TrendItem       `json:"trend"`
}

type MonthlyTotalItem struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

type CategoryTotalItem struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

type BudgetSummaryItem struct {
	TypeID     string          `json:"type_id"`
	Name       string          `json:"name"`
	TotalLimit decimal.Decimal `json:"total_limit"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return 404 // not found
	case appErrors.ErrValidation:
		return 400 // bad request
	case appErrors.ErrAuth:
		return 401 // unauthorized
	case appErrors.ErrAccessDenied:
		return 403 // access denied
	case appErrors.ErrConflict:
		return 409 // conflict
	case appErrors.ErrTransient:
		return 503 // service unavailable
	default:
		return 500 // internal error
	}
}

func BudgetToHttp(b expense.BudgetResponse) BudgetItem {
	return BudgetItem{
		ID:        b.ID,
		Name:      b.Name,
		Category:  b.Category,
		Limit:     b.Limit,
		Spent:     b.Spent,
		StartDate: b.StartDate.Format(dateLayout),
		EndDate:   b.EndDate.Format(dateLayout),
		Notes:     b.Notes,
	}
}

func ExpenseToHttp(e expense.ExpenseResponse) ExpenseItem {
	return ExpenseItem{
		ID:          e.ID,
		Date:        e.Date.Format(dateLayout),
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		Notes:       e.Notes,
		BudgetID:    e.BudgetID,
	}
}

func NotificationToHttp(n expense.Notification) NotificationItem {
	return NotificationItem{
		ID:         n.ID,
		BudgetID:   n.BudgetID,
		BudgetName: n.BudgetName,
		Message:    n.Message,
		Type:       string(n.Kind),
		IsRead:     n.IsRead,
		NotifiedAt: n.NotifiedAt.Format(time.RFC3339),
	}
}

func TotalToHttp(t expense.TotalWithTrend) TotalResponse {
	return TotalResponse{
		Total: t.Total,
		Trend: TrendItem{
			Percentage: t.Trend.Percent.StringFixed(1),
			IsPositive: t.Trend.IsPositive,
		},
	}
}

func MonthlyTotalToHttp(m expense.MonthlyTotal) MonthlyTotalItem {
	return MonthlyTotalItem{
		Year:  m.Year,
		Month: int(m.Month),
		Label: m.Label,
		Total: m.Total,
	}
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}
