package expense

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
	"github.com/aysel-mammadli/expense_tracker/internal/auth"
	"github.com/shopspring/decimal"
)

// Mocks

type MockStorage struct {
	savedNotifications []Notification
}

func (m *MockStorage) SaveUser(ctx context.Context, user auth.User) error {
	return nil
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	if email == "anna@example.com" {
		hashed, _ := auth.HashPassword("secure123")
		return auth.User{ID: "user-1", Name: "Anna", Email: email, PasswordHashed: hashed}, nil
	}
	return auth.User{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "User not found",
	}
}

func (m *MockStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	return email == "taken@example.com", nil
}

func (m *MockStorage) GetAccountInfo(ctx context.Context, userID string) (AccountInfo, error) {
	return AccountInfo{UserID: userID, Name: "Anna", Email: "anna@example.com", JoinedAt: time.Now().UTC()}, nil
}

func (m *MockStorage) UpdateUserProfile(ctx context.Context, userID string, fields auth.ProfileUpdate) error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, session auth.Session) error {
	return nil
}

func (m *MockStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	if token == "tok-expiring" {
		return auth.Session{
			ID:       "session-exp",
			Token:    token,
			ExpireAt: time.Now().UTC().Add(24 * time.Hour),
			UserID:   "user-1",
		}, nil
	}
	if token == "tok-valid" {
		return auth.Session{
			ID:       "session-valid",
			Token:    token,
			ExpireAt: time.Now().UTC().AddDate(0, 2, 0),
			UserID:   "user-1",
		}, nil
	}
	return auth.Session{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrAuth,
		Message: "Session not found",
	}
}

func (m *MockStorage) CheckSession(ctx context.Context, token string) (string, error) {
	if token == "tok-valid" || token == "tok-expiring" {
		return "user-1", nil
	}
	return "", fmt.Errorf("session does not exist")
}

func (m *MockStorage) UpdateSession(ctx context.Context, userID string, expireAt time.Time) error {
	return nil
}

func (m *MockStorage) LogoutUser(ctx context.Context, userID string, token string) error {
	return nil
}

func (m *MockStorage) UpsertEmailOTP(ctx context.Context, otp auth.EmailOTP) error {
	return nil
}

func (m *MockStorage) GetEmailOTP(ctx context.Context, email string) (auth.EmailOTP, error) {
	now := time.Now().UTC()
	switch email {
	case "verified@example.com":
		return auth.EmailOTP{Email: email, Code: "123456", Verified: true, ExpiresAt: now.Add(5 * time.Minute)}, nil
	case "pending@example.com":
		return auth.EmailOTP{Email: email, Code: "123456", Verified: false, ExpiresAt: now.Add(5 * time.Minute)}, nil
	case "stale@example.com":
		return auth.EmailOTP{Email: email, Code: "123456", Verified: true, ExpiresAt: now.Add(-5 * time.Minute)}, nil
	}
	return auth.EmailOTP{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "OTP not found",
	}
}

func (m *MockStorage) MarkEmailOTPVerified(ctx context.Context, email string) error {
	return nil
}

func (m *MockStorage) DeleteEmailOTP(ctx context.Context, email string) error {
	return nil
}

func (m *MockStorage) SaveExpenseType(ctx context.Context, expenseType ExpenseType) error {
	return nil
}

func (m *MockStorage) ListExpenseTypes(ctx context.Context) ([]ExpenseType, error) {
	return []ExpenseType{{ID: "type-1", Name: "Groceries"}}, nil
}

func (m *MockStorage) SaveBudget(ctx context.Context, budget Budget) (*BudgetResponse, error) {
	return &BudgetResponse{
		ID:       budget.ID,
		Name:     budget.Name,
		Category: "Groceries",
		Limit:    budget.Limit,
		Spent:    budget.Spent,
	}, nil
}

func (m *MockStorage) GetBudgets(ctx context.Context, userID string) ([]BudgetResponse, error) {
	return []BudgetResponse{
		{
			ID:       "budget-1",
			Name:     "Groceries",
			Category: "Groceries",
			Limit:    decimal.RequireFromString("500"),
			Spent:    decimal.RequireFromString("120"),
		},
	}, nil
}

func (m *MockStorage) GetBudgetByID(ctx context.Context, userID string, budgetID string) (*BudgetResponse, error) {
	if budgetID != "budget-1" {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found",
		}
	}
	return &BudgetResponse{ID: budgetID, Name: "Groceries"}, nil
}

func (m *MockStorage) UpdateBudget(ctx context.Context, userID string, fields UpdateBudgetRequest) (*BudgetResponse, error) {
	return &BudgetResponse{
		ID:    fields.ID,
		Name:  fields.NewName,
		Limit: fields.NewLimit,
	}, nil
}

func (m *MockStorage) DeleteBudget(ctx context.Context, userID string, budgetID string) error {
	if budgetID != "budget-1" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found",
		}
	}
	return nil
}

func (m *MockStorage) ListBudgetNames(ctx context.Context, userID string) ([]BudgetName, error) {
	return []BudgetName{{ID: "budget-1", Name: "Groceries"}}, nil
}

func (m *MockStorage) BudgetSummaryByCategory(ctx context.Context, userID string) ([]BudgetCategorySummary, error) {
	return []BudgetCategorySummary{
		{
			TypeID:     "type-1",
			Name:       "Groceries",
			TotalLimit: decimal.RequireFromString("500"),
			TotalSpent: decimal.RequireFromString("120"),
		},
	}, nil
}

func (m *MockStorage) SaveExpense(ctx context.Context, expense Expense) (*ExpenseResponse, error) {
	return &ExpenseResponse{
		ID:       expense.ID,
		Amount:   expense.Amount,
		Category: "Groceries",
		BudgetID: expense.BudgetID,
	}, nil
}

func (m *MockStorage) GetExpenses(ctx context.Context, userID string) ([]ExpenseResponse, error) {
	return []ExpenseResponse{
		{ID: "expense-1", Amount: decimal.RequireFromString("42.50"), Category: "Groceries"},
	}, nil
}

func (m *MockStorage) GetExpenseByID(ctx context.Context, userID string, expenseID string) (*ExpenseResponse, error) {
	if expenseID != "expense-1" {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Expense not found",
		}
	}
	return &ExpenseResponse{ID: expenseID, Amount: decimal.RequireFromString("42.50")}, nil
}

func (m *MockStorage) UpdateExpense(ctx context.Context, userID string, fields UpdateExpenseRequest) (*ExpenseResponse, error) {
	return &ExpenseResponse{ID: fields.ID, Amount: fields.NewAmount}, nil
}

func (m *MockStorage) DeleteExpense(ctx context.Context, userID string, expenseID string) error {
	return nil
}

func (m *MockStorage) GetRecentExpenses(ctx context.Context, userID string, limit int) ([]ExpenseResponse, error) {
	return []ExpenseResponse{
		{ID: "expense-1", Amount: decimal.RequireFromString("42.50")},
	}, nil
}

func (m *MockStorage) SumExpensesForBudget(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	return decimal.RequireFromString("120"), nil
}

func (m *MockStorage) CategoryTotals(ctx context.Context, userID string) ([]CategoryTotal, error) {
	return []CategoryTotal{
		{Name: "Groceries", Total: decimal.RequireFromString("120")},
	}, nil
}

func (m *MockStorage) MonthlyTotals(ctx context.Context, userID string) ([]MonthlyTotal, error) {
	return []MonthlyTotal{
		{Year: 2026, Month: 8, Label: "Aug", Total: decimal.RequireFromString("120")},
	}, nil
}

func (m *MockStorage) ExpenseWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.RequireFromString("100"), decimal.RequireFromString("200"), nil
}

func (m *MockStorage) BudgetWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.RequireFromString("300"), decimal.RequireFromString("200"), nil
}

func (m *MockStorage) RemainingWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.RequireFromString("-50"), decimal.RequireFromString("100"), nil
}

func (m *MockStorage) ReconcileBudget(ctx context.Context, budgetID string) error {
	if budgetID == "missing" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found",
		}
	}
	return nil
}

func (m *MockStorage) GetUnreadNotifications(ctx context.Context, userID string) ([]Notification, error) {
	return m.savedNotifications, nil
}

func (m *MockStorage) GetRecentNotifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if len(m.savedNotifications) > limit {
		return m.savedNotifications[:limit], nil
	}
	return m.savedNotifications, nil
}

func (m *MockStorage) MarkNotificationRead(ctx context.Context, userID string, notificationID string) error {
	if notificationID == "notif-other-user" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Notification not found or user not authorized",
		}
	}
	return nil
}

func (m *MockStorage) GetStorageType() string {
	return "MySQL"
}

type mockMailer struct {
	sentTo   []string
	lastCode string
	fail     bool
}

func (m *mockMailer) SendOTP(ctx context.Context, email string, code string) error {
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.sentTo = append(m.sentTo, email)
	m.lastCode = code
	return nil
}

func newTestTracker(mailer OTPMailer) ExpenseTracker {
	if mailer == nil {
		mailer = &mockMailer{}
	}
	return NewExpenseTracker(&MockStorage{}, mailer)
}

// Tests

func TestRegisterUser(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		input       auth.NewUser
		wantToken   bool
		expectedMsg string
	}{
		{
			name:        "Fail - Empty name",
			input:       auth.NewUser{Name: "", Email: "verified@example.com", PasswordPlain: "secure123"},
			expectedMsg: "Name cannot be empty!",
		},
		{
			name:        "Fail - Empty email",
			input:       auth.NewUser{Name: "Anna", Email: "", PasswordPlain: "secure123"},
			expectedMsg: "Email cannot be empty!",
		},
		{
			name:        "Fail - OTP never verified",
			input:       auth.NewUser{Name: "Anna", Email: "pending@example.com", PasswordPlain: "secure123"},
			expectedMsg: "OTP not verified.",
		},
		{
			name:        "Fail - OTP expired after verification",
			input:       auth.NewUser{Name: "Anna", Email: "stale@example.com", PasswordPlain: "secure123"},
			expectedMsg: "OTP not verified.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := et.RegisterUser(ctx, tt.input)

			if appErr, ok := err.(appErrors.ErrorResponse); ok {
				if appErr.Message != tt.expectedMsg {
					t.Errorf("Got message %q, want %q", appErr.Message, tt.expectedMsg)
				}
			} else if err == nil {
				t.Errorf("Expected error with message %q, got nil", tt.expectedMsg)
			}
		})
	}
}

func TestGenerateSession(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		input       auth.UserCredentialsPure
		wantToken   bool
		expectedMsg string
	}{
		{
			name:        "Fail - Empty credentials",
			input:       auth.UserCredentialsPure{Email: "", PasswordPlain: ""},
			expectedMsg: "Email and password are required.",
		},
		{
			name:        "Fail - Wrong password",
			input:       auth.UserCredentialsPure{Email: "anna@example.com", PasswordPlain: "wrong"},
			expectedMsg: "Invalid credentials",
		},
		{
			name:      "Success - Valid login",
			input:     auth.UserCredentialsPure{Email: "anna@example.com", PasswordPlain: "secure123"},
			wantToken: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := et.GenerateSession(ctx, tt.input)

			if tt.wantToken {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if len(token) != 32 {
					t.Errorf("Expected 32 hex chars token, got %q", token)
				}
				return
			}

			if appErr, ok := err.(appErrors.ErrorResponse); ok {
				if appErr.Message != tt.expectedMsg {
					t.Errorf("Got message %q, want %q", appErr.Message, tt.expectedMsg)
				}
			} else if err == nil {
				t.Errorf("Expected error with message %q, got nil", tt.expectedMsg)
			}
		})
	}
}

func TestCheckSession(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:    "unknown token",
			input:   "tok-unknown",
			wantErr: true,
		},
		{
			name:     "valid session",
			input:    "tok-valid",
			expected: "user-1",
		},
		{
			name:     "expiring session gets renewed",
			input:    "tok-expiring",
			expected: "user-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := et.CheckSession(ctx, tt.input)

			if userID != tt.expected {
				t.Errorf("User ID mismatch: got %q, want %q", userID, tt.expected)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Unexpected error state: %v", err)
			}
		})
	}
}

func TestRequestEmailOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a six digit code", func(t *testing.T) {
		mailer := &mockMailer{}
		et := newTestTracker(mailer)

		if err := et.RequestEmailOTP(ctx, "Anna@Example.com"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(mailer.sentTo) != 1 || mailer.sentTo[0] != "anna@example.com" {
			t.Errorf("Expected lowered recipient, got %v", mailer.sentTo)
		}
		if len(mailer.lastCode) != 6 {
			t.Errorf("Expected 6 digit code, got %q", mailer.lastCode)
		}
	})

	t.Run("empty email rejected", func(t *testing.T) {
		et := newTestTracker(nil)
		err := et.RequestEmailOTP(ctx, "")
		if appErr, ok := err.(appErrors.ErrorResponse); !ok || appErr.Code != appErrors.ErrValidation {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("mailer failure surfaces", func(t *testing.T) {
		et := newTestTracker(&mockMailer{fail: true})
		err := et.RequestEmailOTP(ctx, "anna@example.com")
		if err == nil || !strings.Contains(err.Error(), "failed to send otp email") {
			t.Errorf("Expected mail failure, got %v", err)
		}
	})
}

func TestVerifyEmailOTP(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		email   string
		code    string
		wantErr bool
	}{
		{name: "matching code", email: "pending@example.com", code: "123456"},
		{name: "wrong code", email: "pending@example.com", code: "000000", wantErr: true},
		{name: "expired record", email: "stale@example.com", code: "123456", wantErr: true},
		{name: "no record", email: "nobody@example.com", code: "123456", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := et.VerifyEmailOTP(ctx, tt.email, tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("Unexpected error state: %v", err)
			}
		})
	}
}

func TestSaveBudget(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		input       BudgetRequest
		expectedMsg string
	}{
		{
			name:        "Fail - Empty name",
			input:       BudgetRequest{Name: "", TypeID: "type-1", Limit: decimal.RequireFromString("500")},
			expectedMsg: "Budget name is required",
		},
		{
			name:        "Fail - Zero limit",
			input:       BudgetRequest{Name: "Groceries", TypeID: "type-1", Limit: decimal.Zero},
			expectedMsg: "Budget limit must be greater than 0",
		},
		{
			name:        "Fail - Negative limit",
			input:       BudgetRequest{Name: "Groceries", TypeID: "type-1", Limit: decimal.RequireFromString("-10")},
			expectedMsg: "Budget limit must be greater than 0",
		},
		{
			name:        "Fail - Missing type",
			input:       BudgetRequest{Name: "Groceries", TypeID: "", Limit: decimal.RequireFromString("500")},
			expectedMsg: "Expense type is required",
		},
		{
			name:  "Success - Valid budget",
			input: BudgetRequest{Name: "Groceries", TypeID: "type-1", Limit: decimal.RequireFromString("500")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := et.SaveBudget(ctx, "user-1", tt.input)

			if tt.expectedMsg == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if !created.Spent.IsZero() {
					t.Errorf("New budget must start with zero spent, got %s", created.Spent)
				}
				return
			}

			if appErr, ok := err.(appErrors.ErrorResponse); ok {
				if appErr.Message != tt.expectedMsg {
					t.Errorf("Got message %q, want %q", appErr.Message, tt.expectedMsg)
				}
			} else {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateBudget(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		input       UpdateBudgetRequest
		expectedMsg string
	}{
		{
			name:        "Fail - Empty name",
			input:       UpdateBudgetRequest{ID: "budget-1", NewTypeID: "type-1", NewName: "", NewLimit: decimal.RequireFromString("500")},
			expectedMsg: "Budget name is required",
		},
		{
			name:        "Fail - Missing type",
			input:       UpdateBudgetRequest{ID: "budget-1", NewTypeID: "", NewName: "Groceries", NewLimit: decimal.RequireFromString("500")},
			expectedMsg: "Expense type is required",
		},
		{
			name:        "Fail - Zero limit",
			input:       UpdateBudgetRequest{ID: "budget-1", NewTypeID: "type-1", NewName: "Groceries", NewLimit: decimal.Zero},
			expectedMsg: "Budget limit must be greater than 0",
		},
		{
			name:  "Success - Valid update",
			input: UpdateBudgetRequest{ID: "budget-1", NewTypeID: "type-1", NewName: "Groceries", NewLimit: decimal.RequireFromString("500")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := et.UpdateBudget(ctx, "user-1", tt.input)

			if tt.expectedMsg == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}

			if appErr, ok := err.(appErrors.ErrorResponse); ok {
				if appErr.Message != tt.expectedMsg {
					t.Errorf("Got message %q, want %q", appErr.Message, tt.expectedMsg)
				}
			} else {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestSaveExpense(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()
	budgetID := "budget-1"

	tests := []struct {
		name        string
		input       ExpenseRequest
		expectedMsg string
	}{
		{
			name:        "Fail - Zero amount",
			input:       ExpenseRequest{TypeID: "type-1", Amount: decimal.Zero, Date: time.Now()},
			expectedMsg: "Expense amount must be greater than 0",
		},
		{
			name:        "Fail - Negative amount",
			input:       ExpenseRequest{TypeID: "type-1", Amount: decimal.RequireFromString("-5"), Date: time.Now()},
			expectedMsg: "Expense amount must be greater than 0",
		},
		{
			name:        "Fail - Missing type",
			input:       ExpenseRequest{TypeID: "", Amount: decimal.RequireFromString("10"), Date: time.Now()},
			expectedMsg: "Expense type is required",
		},
		{
			name:        "Fail - Missing date",
			input:       ExpenseRequest{TypeID: "type-1", Amount: decimal.RequireFromString("10")},
			expectedMsg: "Expense date is required",
		},
		{
			name:  "Success - Linked to a budget",
			input: ExpenseRequest{TypeID: "type-1", Amount: decimal.RequireFromString("42.50"), Date: time.Now(), BudgetID: &budgetID},
		},
		{
			name:  "Success - Unassigned expense",
			input: ExpenseRequest{TypeID: "type-1", Amount: decimal.RequireFromString("42.50"), Date: time.Now()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := et.SaveExpense(ctx, "user-1", tt.input)

			if tt.expectedMsg == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if created == nil {
					t.Fatal("Expected created expense, got nil")
				}
				return
			}

			if appErr, ok := err.(appErrors.ErrorResponse); ok {
				if appErr.Message != tt.expectedMsg {
					t.Errorf("Got message %q, want %q", appErr.Message, tt.expectedMsg)
				}
			} else {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestGetTotalExpensesTrend(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	// Mock window: current 100, previous 200. Spending dropped, so the
	// trend is positive for expenses.
	got, err := et.GetTotalExpenses(ctx, "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Total.StringFixed(1) != "100.0" {
		t.Errorf("Total mismatch: got %s", got.Total)
	}
	if got.Trend.Percent.StringFixed(1) != "50.0" {
		t.Errorf("Trend percent mismatch: got %s", got.Trend.Percent)
	}
	if !got.Trend.IsPositive {
		t.Error("Expected a positive expense trend")
	}
}

func TestGetTotalBudgetTrend(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	// Mock window: current 300, previous 200. Budget grew, positive.
	got, err := et.GetTotalBudget(ctx, "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Trend.Percent.StringFixed(1) != "50.0" {
		t.Errorf("Trend percent mismatch: got %s", got.Trend.Percent)
	}
	if !got.Trend.IsPositive {
		t.Error("Expected a positive budget trend")
	}
}

func TestGetRemainingBudgetClampsAtZero(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	got, err := et.GetRemainingBudget(ctx, "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !got.Total.IsZero() {
		t.Errorf("Overspent remaining budget must clamp to zero, got %s", got.Total)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	tests := []struct {
		name           string
		notificationID string
		wantErr        bool
		wantCode       string
	}{
		{
			name:           "empty id rejected",
			notificationID: "",
			wantErr:        true,
			wantCode:       appErrors.ErrValidation,
		},
		{
			name:           "other user's notification stays hidden",
			notificationID: "notif-other-user",
			wantErr:        true,
			wantCode:       appErrors.ErrNotFound,
		},
		{
			name:           "own notification",
			notificationID: "notif-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := et.MarkNotificationRead(ctx, "user-1", tt.notificationID)

			if !tt.wantErr {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if code := appErrors.CodeOf(err); code != tt.wantCode {
				t.Errorf("Error code mismatch: got %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestReconcileBudgetValidation(t *testing.T) {
	et := newTestTracker(nil)
	ctx := context.Background()

	if err := et.ReconcileBudget(ctx, ""); err == nil {
		t.Error("Expected validation error for empty budget id")
	}
	if err := et.ReconcileBudget(ctx, "missing"); err == nil {
		t.Error("Expected not found for unknown budget")
	}
	if err := et.ReconcileBudget(ctx, "budget-1"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
