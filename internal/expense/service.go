package expense

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
	"github.com/aysel-mammadli/expense_tracker/internal/auth"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MAX_NAME_LENGTH        = 255
	MAX_NOTE_LENGTH        = 1000
	MAX_DESCRIPTION_LENGTH = 1000

	RECENT_EXPENSES_LIMIT      = 5
	RECENT_NOTIFICATIONS_LIMIT = 5
)

var MAX_AMOUNT = decimal.RequireFromString("999999999999999999.99")

// Storage is the persistence contract of the tracker. Every expense mutation
// implementation must reconcile the affected budgets inside the same
// transaction as the mutation itself, a committed expense change is never
// visible without the matching budget_spent update.
type Storage interface {
	// identity
	SaveUser(ctx context.Context, user auth.User) error
	GetUserByEmail(ctx context.Context, email string) (auth.User, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	GetAccountInfo(ctx context.Context, userID string) (AccountInfo, error)
	UpdateUserProfile(ctx context.Context, userID string, fields auth.ProfileUpdate) error

	// sessions
	SaveSession(ctx context.Context, session auth.Session) error
	GetSessionByToken(ctx context.Context, token string) (auth.Session, error)
	CheckSession(ctx context.Context, token string) (userID string, err error)
	UpdateSession(ctx context.Context, userID string, expireAt time.Time) error
	LogoutUser(ctx context.Context, userID string, token string) error

	// email otp
	UpsertEmailOTP(ctx context.Context, otp auth.EmailOTP) error
	GetEmailOTP(ctx context.Context, email string) (auth.EmailOTP, error)
	MarkEmailOTPVerified(ctx context.Context, email string) error
	DeleteEmailOTP(ctx context.Context, email string) error

	// expense types
	SaveExpenseType(ctx context.Context, expenseType ExpenseType) error
	ListExpenseTypes(ctx context.Context) ([]ExpenseType, error)

	// budgets
	SaveBudget(ctx context.Context, budget Budget) (*BudgetResponse, error)
	GetBudgets(ctx context.Context, userID string) ([]BudgetResponse, error)
	GetBudgetByID(ctx context.Context, userID string, budgetID string) (*BudgetResponse, error)
	UpdateBudget(ctx context.Context, userID string, fields UpdateBudgetRequest) (*BudgetResponse, error)
	DeleteBudget(ctx context.Context, userID string, budgetID string) error
	ListBudgetNames(ctx context.Context, userID string) ([]BudgetName, error)
	BudgetSummaryByCategory(ctx context.Context, userID string) ([]BudgetCategorySummary, error)

	// expenses
	SaveExpense(ctx context.Context, expense Expense) (*ExpenseResponse, error)
	GetExpenses(ctx context.Context, userID string) ([]ExpenseResponse, error)
	GetExpenseByID(ctx context.Context, userID string, expenseID string) (*ExpenseResponse, error)
	UpdateExpense(ctx context.Context, userID string, fields UpdateExpenseRequest) (*ExpenseResponse, error)
	DeleteExpense(ctx context.Context, userID string, expenseID string) error
	GetRecentExpenses(ctx context.Context, userID string, limit int) ([]ExpenseResponse, error)

	// aggregation
	SumExpensesForBudget(ctx context.Context, budgetID string) (decimal.Decimal, error)
	CategoryTotals(ctx context.Context, userID string) ([]CategoryTotal, error)
	MonthlyTotals(ctx context.Context, userID string) ([]MonthlyTotal, error)
	ExpenseWindow(ctx context.Context, userID string, now time.Time) (current, previous decimal.Decimal, err error)
	BudgetWindow(ctx context.Context, userID string, now time.Time) (current, previous decimal.Decimal, err error)
	RemainingWindow(ctx context.Context, userID string, now time.Time) (current, previous decimal.Decimal, err error)

	// reconciliation + notifications
	ReconcileBudget(ctx context.Context, budgetID string) error
	GetUnreadNotifications(ctx context.Context, userID string) ([]Notification, error)
	GetRecentNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, userID string, notificationID string) error

	GetStorageType() string
}

// OTPMailer delivers one-time codes. The tracker only hands the code over,
// actual dispatch is the collaborator's problem.
type OTPMailer interface {
	SendOTP(ctx context.Context, email string, code string) error
}

type ExpenseTracker struct {
	storage     Storage
	mailer      OTPMailer
	StorageType string
}

func NewExpenseTracker(s Storage, mailer OTPMailer) ExpenseTracker {
	return ExpenseTracker{
		storage:     s,
		mailer:      mailer,
		StorageType: s.GetStorageType(),
	}
}

// --- IDENTITY & OTP --- //

func (et *ExpenseTracker) RequestEmailOTP(ctx context.Context, email string) error {
	if email == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Email is required",
		}
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp for %s: %w", email, err)
	}

	now := time.Now().UTC()
	otp := auth.EmailOTP{
		Email:     strings.ToLower(email),
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(auth.OTP_TTL),
	}

	if err := et.storage.UpsertEmailOTP(ctx, otp); err != nil {
		return fmt.Errorf("failed to save otp: %w", err)
	}

	if err := et.mailer.SendOTP(ctx, otp.Email, otp.Code); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

func (et *ExpenseTracker) VerifyEmailOTP(ctx context.Context, email string, code string) error {
	if email == "" || code == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Email and OTP are required",
		}
	}

	otp, err := et.storage.GetEmailOTP(ctx, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("failed to get otp record: %w", err)
	}

	if otp.Expired(time.Now().UTC()) || otp.Code != code {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Invalid or expired OTP.",
		}
	}

	if err := et.storage.MarkEmailOTPVerified(ctx, otp.Email); err != nil {
		return fmt.Errorf("failed to mark otp verified: %w", err)
	}
	return nil
}

func (et *ExpenseTracker) RegisterUser(ctx context.Context, newUser auth.NewUser) (string, error) {
	if err := newUser.ValidateUserFields(); err != nil {
		return "", err
	}

	email := strings.ToLower(newUser.Email)

	otp, err := et.storage.GetEmailOTP(ctx, email)
	if err != nil || !otp.Verified || otp.Expired(time.Now().UTC()) {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAccessDenied,
			Message: "OTP not verified.",
		}
	}

	isEmailTaken, err := et.storage.IsEmailTaken(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to check email availability: %w", err)
	}
	if isEmailTaken {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrConflict,
			Message: "User already exists.",
		}
	}

	hashedPassword, err := auth.HashPassword(newUser.PasswordPlain)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := auth.User{
		ID:             uuid.New().String(),
		Name:           newUser.Name,
		Email:          email,
		PasswordHashed: hashedPassword,
		Phone:          newUser.Phone,
		Role:           auth.RoleUser,
		CreatedAt:      time.Now().UTC(),
	}

	if err := et.storage.SaveUser(ctx, user); err != nil {
		return "", fmt.Errorf("failed to registration: %w", err)
	}

	// The verification record is single-use.
	if err := et.storage.DeleteEmailOTP(ctx, email); err != nil {
		return "", fmt.Errorf("failed to consume otp record: %w", err)
	}

	credentials := auth.UserCredentialsPure{
		Email:         email,
		PasswordPlain: newUser.PasswordPlain,
	}

	token, err := et.GenerateSession(ctx, credentials)
	if err != nil {
		return "", fmt.Errorf("registration succeeded but failed to generate session: %w | try login", err)
	}
	return token, nil
}

func (et *ExpenseTracker) GenerateSession(ctx context.Context, credentials auth.UserCredentialsPure) (string, error) {
	if credentials.Email == "" || credentials.PasswordPlain == "" {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Email and password are required.",
		}
	}

	user, err := et.storage.GetUserByEmail(ctx, strings.ToLower(credentials.Email))
	if err != nil {
		return "", fmt.Errorf("%w", err)
	}
	if !auth.ComparePasswords(user.PasswordHashed, credentials.PasswordPlain) {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Invalid credentials",
		}
	}

	tokenByte := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, tokenByte); err != nil {
		return "", fmt.Errorf("failed to generate new session: %w", err)
	}
	token := hex.EncodeToString(tokenByte)

	now := time.Now().UTC()
	session := auth.Session{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: now,
		ExpireAt:  now.AddDate(0, 3, 0),
		UserID:    user.ID,
	}

	if err := et.storage.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

func (et *ExpenseTracker) CheckSession(ctx context.Context, token string) (string, error) {
	session, err := et.storage.GetSessionByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to get session by token: %w", err)
	}

	userID, err := et.storage.CheckSession(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to check session: %w", err)
	}

	now := time.Now().UTC()
	daysUntilExpiry := int(session.ExpireAt.Sub(now).Hours() / 24)

	if daysUntilExpiry <= 5 {
		newExpireAt := now.AddDate(0, 1, 0)
		if err := et.storage.UpdateSession(ctx, userID, newExpireAt); err != nil {
			return "", fmt.Errorf("failed to update session: %w", err)
		}
	}

	return userID, nil
}

func (et *ExpenseTracker) LogoutUser(ctx context.Context, userID string, token string) error {
	if err := et.storage.LogoutUser(ctx, userID, token); err != nil {
		return err
	}
	return nil
}

func (et *ExpenseTracker) GetAccountInfo(ctx context.Context, userID string) (AccountInfo, error) {
	info, err := et.storage.GetAccountInfo(ctx, userID)
	if err != nil {
		return AccountInfo{}, fmt.Errorf("failed to get account info: %w", err)
	}
	return info, nil
}

func (et *ExpenseTracker) UpdateProfile(ctx context.Context, userID string, fields auth.ProfileUpdate) error {
	if err := fields.Validate(); err != nil {
		return err
	}
	if fields.NewEmail != "" {
		fields.NewEmail = strings.ToLower(fields.NewEmail)
	}
	if err := et.storage.UpdateUserProfile(ctx, userID, fields); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// --- EXPENSE TYPES --- //

func (et *ExpenseTracker) SaveExpenseType(ctx context.Context, name string) (ExpenseType, error) {
	if name == "" {
		return ExpenseType{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type name is required",
		}
	}
	if len(name) > MAX_NAME_LENGTH {
		return ExpenseType{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Expense type name so long, maximum length is %d", MAX_NAME_LENGTH),
		}
	}

	expenseType := ExpenseType{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := et.storage.SaveExpenseType(ctx, expenseType); err != nil {
		return ExpenseType{}, fmt.Errorf("failed to save expense type: %w", err)
	}
	return expenseType, nil
}

func (et *ExpenseTracker) ListExpenseTypes(ctx context.Context) ([]ExpenseType, error) {
	types, err := et.storage.ListExpenseTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense types: %w", err)
	}
	return types, nil
}

// --- BUDGETS --- //

func validateAmount(amount decimal.Decimal, field string) error {
	if !amount.IsPositive() {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("%s must be greater than 0", field),
		}
	}
	if amount.GreaterThan(MAX_AMOUNT) {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("%s is too large, the limit is: %s", field, MAX_AMOUNT),
		}
	}
	return nil
}

func (et *ExpenseTracker) validateBudgetFields(name string, limit decimal.Decimal, notes string) error {
	if name == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Budget name is required",
		}
	}
	if len(name) > MAX_NAME_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Budget name so long, maximum length is %d", MAX_NAME_LENGTH),
		}
	}
	if err := validateAmount(limit, "Budget limit"); err != nil {
		return err
	}
	if len(notes) > MAX_NOTE_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Note so long, maximum allowed length is: %d", MAX_NOTE_LENGTH),
		}
	}
	return nil
}

func (et *ExpenseTracker) SaveBudget(ctx context.Context, userID string, req BudgetRequest) (*BudgetResponse, error) {
	if err := et.validateBudgetFields(req.Name, req.Limit, req.Notes); err != nil {
		return nil, err
	}
	if req.TypeID == "" {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type is required",
		}
	}

	// Spent is derived; a fresh budget always starts at zero no matter what
	// the client sent.
	budget := Budget{
		ID:        uuid.New().String(),
		UserID:    userID,
		TypeID:    req.TypeID,
		Name:      req.Name,
		Limit:     req.Limit,
		Spent:     decimal.Zero,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	}

	created, err := et.storage.SaveBudget(ctx, budget)
	if err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	return created, nil
}

func (et *ExpenseTracker) GetBudgets(ctx context.Context, userID string) ([]BudgetResponse, error) {
	budgets, err := et.storage.GetBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets: %w", err)
	}
	return budgets, nil
}

func (et *ExpenseTracker) GetBudgetByID(ctx context.Context, userID string, budgetID string) (*BudgetResponse, error) {
	budget, err := et.storage.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget by id: %w", err)
	}
	return budget, nil
}

func (et *ExpenseTracker) UpdateBudget(ctx context.Context, userID string, fields UpdateBudgetRequest) (*BudgetResponse, error) {
	if err := et.validateBudgetFields(fields.NewName, fields.NewLimit, fields.NewNotes); err != nil {
		return nil, err
	}
	if fields.NewTypeID == "" {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type is required",
		}
	}

	fields.UpdateTime = time.Now().UTC()
	budget, err := et.storage.UpdateBudget(ctx, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	return budget, nil
}

// DeleteBudget detaches any expenses still linked to the budget before
// removing it. The expenses survive and keep feeding category and monthly
// aggregates.
func (et *ExpenseTracker) DeleteBudget(ctx context.Context, userID string, budgetID string) error {
	if err := et.storage.DeleteBudget(ctx, userID, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}

func (et *ExpenseTracker) ListBudgetNames(ctx context.Context, userID string) ([]BudgetName, error) {
	names, err := et.storage.ListBudgetNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget names: %w", err)
	}
	return names, nil
}

func (et *ExpenseTracker) GetBudgetSummaryByCategory(ctx context.Context, userID string) ([]BudgetCategorySummary, error) {
	summary, err := et.storage.BudgetSummaryByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget summary: %w", err)
	}
	return summary, nil
}

func (et *ExpenseTracker) GetTotalBudget(ctx context.Context, userID string) (TotalWithTrend, error) {
	current, previous, err := et.storage.BudgetWindow(ctx, userID, time.Now().UTC())
	if err != nil {
		return TotalWithTrend{}, fmt.Errorf("failed to get budget totals: %w", err)
	}
	return TotalWithTrend{
		Total: current,
		Trend: Trend(current, previous, HigherIsPositive),
	}, nil
}

func (et *ExpenseTracker) GetRemainingBudget(ctx context.Context, userID string) (TotalWithTrend, error) {
	current, previous, err := et.storage.RemainingWindow(ctx, userID, time.Now().UTC())
	if err != nil {
		return TotalWithTrend{}, fmt.Errorf("failed to get remaining budget: %w", err)
	}

	remaining := current
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return TotalWithTrend{
		Total: remaining,
		Trend: Trend(current, previous, HigherIsPositive),
	}, nil
}

// --- EXPENSES --- //

func (et *ExpenseTracker) validateExpenseFields(amount decimal.Decimal, typeID string, description string, notes string) error {
	if typeID == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type is required",
		}
	}
	if err := validateAmount(amount, "Expense amount"); err != nil {
		return err
	}
	if len(description) > MAX_DESCRIPTION_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Description so long, maximum allowed length is: %d", MAX_DESCRIPTION_LENGTH),
		}
	}
	if len(notes) > MAX_NOTE_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: fmt.Sprintf("Note so long, maximum allowed length is: %d", MAX_NOTE_LENGTH),
		}
	}
	return nil
}

func (et *ExpenseTracker) SaveExpense(ctx context.Context, userID string, req ExpenseRequest) (*ExpenseResponse, error) {
	if err := et.validateExpenseFields(req.Amount, req.TypeID, req.Description, req.Notes); err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense date is required",
		}
	}

	expense := Expense{
		ID:          uuid.New().String(),
		UserID:      userID,
		TypeID:      req.TypeID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Notes:       req.Notes,
		BudgetID:    req.BudgetID,
	}

	created, err := et.storage.SaveExpense(ctx, expense)
	if err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}
	return created, nil
}

func (et *ExpenseTracker) GetExpenses(ctx context.Context, userID string) ([]ExpenseResponse, error) {
	expenses, err := et.storage.GetExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	return expenses, nil
}

func (et *ExpenseTracker) GetExpenseByID(ctx context.Context, userID string, expenseID string) (*ExpenseResponse, error) {
	expense, err := et.storage.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense by id: %w", err)
	}
	return expense, nil
}

func (et *ExpenseTracker) UpdateExpense(ctx context.Context, userID string, fields UpdateExpenseRequest) (*ExpenseResponse, error) {
	if err := et.validateExpenseFields(fields.NewAmount, fields.NewTypeID, fields.NewDescription, fields.NewNotes); err != nil {
		return nil, err
	}

	fields.UpdateTime = time.Now().UTC()
	expense, err := et.storage.UpdateExpense(ctx, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return expense, nil
}

func (et *ExpenseTracker) DeleteExpense(ctx context.Context, userID string, expenseID string) error {
	if err := et.storage.DeleteExpense(ctx, userID, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func (et *ExpenseTracker) GetRecentExpenses(ctx context.Context, userID string) ([]ExpenseResponse, error) {
	expenses, err := et.storage.GetRecentExpenses(ctx, userID, RECENT_EXPENSES_LIMIT)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent expenses: %w", err)
	}
	return expenses, nil
}

// --- AGGREGATES --- //

func (et *ExpenseTracker) GetCategoryTotals(ctx context.Context, userID string) ([]CategoryTotal, error) {
	totals, err := et.storage.CategoryTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category totals: %w", err)
	}
	return totals, nil
}

func (et *ExpenseTracker) GetMonthlyTotals(ctx context.Context, userID string) ([]MonthlyTotal, error) {
	totals, err := et.storage.MonthlyTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly totals: %w", err)
	}
	return totals, nil
}

func (et *ExpenseTracker) GetTotalExpenses(ctx context.Context, userID string) (TotalWithTrend, error) {
	current, previous, err := et.storage.ExpenseWindow(ctx, userID, time.Now().UTC())
	if err != nil {
		return TotalWithTrend{}, fmt.Errorf("failed to get expense totals: %w", err)
	}
	return TotalWithTrend{
		Total: current,
		Trend: Trend(current, previous, LowerIsPositive),
	}, nil
}

// --- RECONCILIATION & NOTIFICATIONS --- //

// ReconcileBudget recomputes a budget's spent total from its linked expenses
// and evaluates the notification threshold. Expense mutations reconcile
// in-transaction on their own; this entry point exists for repair jobs and
// for callers that changed expense rows out of band.
func (et *ExpenseTracker) ReconcileBudget(ctx context.Context, budgetID string) error {
	if budgetID == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Budget id is required",
		}
	}
	if err := et.storage.ReconcileBudget(ctx, budgetID); err != nil {
		return fmt.Errorf("failed to reconcile budget: %w", err)
	}
	return nil
}

func (et *ExpenseTracker) GetUnreadNotifications(ctx context.Context, userID string) ([]Notification, error) {
	notifications, err := et.storage.GetUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unread notifications: %w", err)
	}
	return notifications, nil
}

func (et *ExpenseTracker) GetRecentNotifications(ctx context.Context, userID string) ([]Notification, error) {
	notifications, err := et.storage.GetRecentNotifications(ctx, userID, RECENT_NOTIFICATIONS_LIMIT)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent notifications: %w", err)
	}
	return notifications, nil
}

func (et *ExpenseTracker) MarkNotificationRead(ctx context.Context, userID string, notificationID string) error {
	if notificationID == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Notification id is required",
		}
	}
	if err := et.storage.MarkNotificationRead(ctx, userID, notificationID); err != nil {
		return err
	}
	return nil
}
