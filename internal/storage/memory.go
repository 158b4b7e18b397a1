package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
	"github.com/aysel-mammadli/expense_tracker/internal/auth"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemoryStorage keeps everything behind one mutex. Mutations hold the lock
// through their reconcile, which gives the same mutation-plus-reconcile
// atomicity the MySQL storage gets from its transactions.
type InMemoryStorage struct {
	mu sync.Mutex

	users         map[string]auth.User
	sessions      map[string]auth.Session
	otps          map[string]auth.EmailOTP
	expenseTypes  map[string]expense.ExpenseType
	budgets       map[string]expense.Budget
	expenses      map[string]expense.Expense
	notifications []expense.Notification

	notifyOnCrossingOnly bool
}

func NewInMemoryStorage(notifyOnCrossingOnly bool) *InMemoryStorage {
	return &InMemoryStorage{
		users:                make(map[string]auth.User),
		sessions:             make(map[string]auth.Session),
		otps:                 make(map[string]auth.EmailOTP),
		expenseTypes:         make(map[string]expense.ExpenseType),
		budgets:              make(map[string]expense.Budget),
		expenses:             make(map[string]expense.Expense),
		notifyOnCrossingOnly: notifyOnCrossingOnly,
	}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

// --- IDENTITY --- //

func (inMem *InMemoryStorage) SaveUser(ctx context.Context, user auth.User) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, existing := range inMem.users {
		if existing.Email == user.Email {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "User already exists.",
			}
		}
	}
	inMem.users[user.ID] = user
	return nil
}

func (inMem *InMemoryStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, user := range inMem.users {
		if user.Email == email {
			return user, nil
		}
	}
	return auth.User{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrAuth,
		Message: "Invalid credentials",
	}
}

func (inMem *InMemoryStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, user := range inMem.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (inMem *InMemoryStorage) GetAccountInfo(ctx context.Context, userID string) (expense.AccountInfo, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	user, ok := inMem.users[userID]
	if !ok {
		return expense.AccountInfo{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "User not found",
		}
	}
	return expense.AccountInfo{
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		Role:     user.Role,
		JoinedAt: user.CreatedAt,
	}, nil
}

func (inMem *InMemoryStorage) UpdateUserProfile(ctx context.Context, userID string, fields auth.ProfileUpdate) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	user, ok := inMem.users[userID]
	if !ok {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "User not found",
		}
	}

	if fields.NewName != "" {
		user.Name = fields.NewName
	}
	if fields.NewEmail != "" {
		user.Email = fields.NewEmail
	}
	if fields.NewPhone != "" {
		user.Phone = fields.NewPhone
	}
	if fields.PasswordPlain != "" {
		hashed, err := auth.HashPassword(fields.PasswordPlain)
		if err != nil {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrInternal,
				Message: "Failed to update profile, try again later.",
			}
		}
		user.PasswordHashed = hashed
	}
	inMem.users[userID] = user
	return nil
}

// --- SESSIONS --- //

func (inMem *InMemoryStorage) SaveSession(ctx context.Context, session auth.Session) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.sessions[session.Token] = session
	return nil
}

func (inMem *InMemoryStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	session, ok := inMem.sessions[strings.TrimSpace(token)]
	if !ok {
		return auth.Session{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	return session, nil
}

func (inMem *InMemoryStorage) CheckSession(ctx context.Context, token string) (string, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	session, ok := inMem.sessions[strings.TrimSpace(token)]
	if !ok {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	if session.ExpireAt.Before(time.Now().UTC()) {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Your session expired, please login again.",
		}
	}
	return session.UserID, nil
}

func (inMem *InMemoryStorage) UpdateSession(ctx context.Context, userID string, expireAt time.Time) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	updated := false
	for token, session := range inMem.sessions {
		if session.UserID == userID {
			session.ExpireAt = expireAt
			inMem.sessions[token] = session
			updated = true
		}
	}
	if !updated {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	return nil
}

func (inMem *InMemoryStorage) LogoutUser(ctx context.Context, userID string, token string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	session, ok := inMem.sessions[token]
	if !ok || session.UserID != userID {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	delete(inMem.sessions, token)
	return nil
}

// --- EMAIL OTP --- //

func (inMem *InMemoryStorage) UpsertEmailOTP(ctx context.Context, otp auth.EmailOTP) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	otp.Verified = false
	inMem.otps[otp.Email] = otp
	return nil
}

func (inMem *InMemoryStorage) GetEmailOTP(ctx context.Context, email string) (auth.EmailOTP, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	otp, ok := inMem.otps[email]
	if !ok {
		return auth.EmailOTP{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "OTP not found",
		}
	}
	return otp, nil
}

func (inMem *InMemoryStorage) MarkEmailOTPVerified(ctx context.Context, email string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	otp, ok := inMem.otps[email]
	if !ok {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "OTP not found",
		}
	}
	otp.Verified = true
	inMem.otps[email] = otp
	return nil
}

func (inMem *InMemoryStorage) DeleteEmailOTP(ctx context.Context, email string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	delete(inMem.otps, email)
	return nil
}

// --- EXPENSE TYPES --- //

func (inMem *InMemoryStorage) SaveExpenseType(ctx context.Context, expenseType expense.ExpenseType) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, existing := range inMem.expenseTypes {
		if strings.EqualFold(existing.Name, expenseType.Name) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "The expense type already exists.",
			}
		}
	}
	inMem.expenseTypes[expenseType.ID] = expenseType
	return nil
}

func (inMem *InMemoryStorage) ListExpenseTypes(ctx context.Context) ([]expense.ExpenseType, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var types []expense.ExpenseType
	for _, t := range inMem.expenseTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (inMem *InMemoryStorage) typeName(typeID string) string {
	if t, ok := inMem.expenseTypes[typeID]; ok {
		return t.Name
	}
	return ""
}

// --- BUDGETS --- //

func (inMem *InMemoryStorage) budgetResponse(b expense.Budget) expense.BudgetResponse {
	return expense.BudgetResponse{
		ID:        b.ID,
		Name:      b.Name,
		Category:  inMem.typeName(b.TypeID),
		Limit:     b.Limit,
		Spent:     b.Spent,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Notes:     b.Notes,
	}
}

func (inMem *InMemoryStorage) SaveBudget(ctx context.Context, budget expense.Budget) (*expense.BudgetResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if _, ok := inMem.expenseTypes[budget.TypeID]; !ok {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type does not exist.",
		}
	}
	inMem.budgets[budget.ID] = budget
	resp := inMem.budgetResponse(budget)
	return &resp, nil
}

func (inMem *InMemoryStorage) GetBudgets(ctx context.Context, userID string) ([]expense.BudgetResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var budgets []expense.BudgetResponse
	for _, b := range inMem.budgets {
		if b.UserID == userID {
			budgets = append(budgets, inMem.budgetResponse(b))
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].StartDate.After(budgets[j].StartDate) })
	return budgets, nil
}

func (inMem *InMemoryStorage) GetBudgetByID(ctx context.Context, userID string, budgetID string) (*expense.BudgetResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	b, ok := inMem.budgets[budgetID]
	if !ok || b.UserID != userID {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found",
		}
	}
	resp := inMem.budgetResponse(b)
	return &resp, nil
}

func (inMem *InMemoryStorage) UpdateBudget(ctx context.Context, userID string, fields expense.UpdateBudgetRequest) (*expense.BudgetResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	b, ok := inMem.budgets[fields.ID]
	if !ok || b.UserID != userID {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found",
		}
	}
	if _, ok := inMem.expenseTypes[fields.NewTypeID]; !ok {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type does not exist.",
		}
	}

	b.TypeID = fields.NewTypeID
	b.Name = fields.NewName
	b.Limit = fields.NewLimit
	b.StartDate = fields.NewStart
	b.EndDate = fields.NewEnd
	b.Notes = fields.NewNotes
	inMem.budgets[fields.ID] = b

	if err := inMem.reconcileBudgetLocked(fields.ID); err != nil {
		return nil, err
	}

	updated := inMem.budgets[fields.ID]
	resp := inMem.budgetResponse(updated)
	return &resp, nil
}

func (inMem *InMemoryStorage) DeleteBudget(ctx context.Context, userID string, budgetID string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	b, ok := inMem.budgets[budgetID]
	if !ok || b.UserID != userID {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found",
		}
	}

	for id, e := range inMem.expenses {
		if e.BudgetID != nil && *e.BudgetID == budgetID {
			e.BudgetID = nil
			inMem.expenses[id] = e
		}
	}
	for i := range inMem.notifications {
		if inMem.notifications[i].BudgetID != nil && *inMem.notifications[i].BudgetID == budgetID {
			inMem.notifications[i].BudgetID = nil
			inMem.notifications[i].BudgetName = nil
		}
	}
	delete(inMem.budgets, budgetID)
	return nil
}

func (inMem *InMemoryStorage) ListBudgetNames(ctx context.Context, userID string) ([]expense.BudgetName, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var names []expense.BudgetName
	for _, b := range inMem.budgets {
		if b.UserID == userID {
			names = append(names, expense.BudgetName{ID: b.ID, Name: b.Name})
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
	return names, nil
}

func (inMem *InMemoryStorage) BudgetSummaryByCategory(ctx context.Context, userID string) ([]expense.BudgetCategorySummary, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	byType := map[string]*expense.BudgetCategorySummary{}
	for _, b := range inMem.budgets {
		if b.UserID != userID {
			continue
		}
		s, ok := byType[b.TypeID]
		if !ok {
			s = &expense.BudgetCategorySummary{
				TypeID: b.TypeID,
				Name:   inMem.typeName(b.TypeID),
			}
			byType[b.TypeID] = s
		}
		s.TotalLimit = s.TotalLimit.Add(b.Limit)
		s.TotalSpent = s.TotalSpent.Add(b.Spent)
	}

	var summary []expense.BudgetCategorySummary
	for _, s := range byType {
		summary = append(summary, *s)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Name < summary[j].Name })
	return summary, nil
}

// --- EXPENSES --- //

func (inMem *InMemoryStorage) expenseResponse(e expense.Expense) expense.ExpenseResponse {
	resp := expense.ExpenseResponse{
		ID:          e.ID,
		Date:        e.Date,
		Category:    inMem.typeName(e.TypeID),
		Description: e.Description,
		Amount:      e.Amount,
		Notes:       e.Notes,
	}
	if e.BudgetID != nil {
		id := *e.BudgetID
		resp.BudgetID = &id
	}
	return resp
}

func (inMem *InMemoryStorage) SaveExpense(ctx context.Context, exp expense.Expense) (*expense.ExpenseResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if _, ok := inMem.expenseTypes[exp.TypeID]; !ok {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type or budget does not exist.",
		}
	}
	if exp.BudgetID != nil {
		// The linked budget must belong to the expense owner, otherwise a
		// client could inflate another user's spent total.
		b, ok := inMem.budgets[*exp.BudgetID]
		if !ok || b.UserID != exp.UserID {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found",
			}
		}
	}

	inMem.expenses[exp.ID] = exp
	if exp.BudgetID != nil {
		if err := inMem.reconcileBudgetLocked(*exp.BudgetID); err != nil {
			delete(inMem.expenses, exp.ID)
			return nil, err
		}
	}
	resp := inMem.expenseResponse(exp)
	return &resp, nil
}

func (inMem *InMemoryStorage) GetExpenses(ctx context.Context, userID string) ([]expense.ExpenseResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var expenses []expense.ExpenseResponse
	for _, e := range inMem.expenses {
		if e.UserID == userID {
			expenses = append(expenses, inMem.expenseResponse(e))
		}
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Date.After(expenses[j].Date) })
	return expenses, nil
}

func (inMem *InMemoryStorage) GetExpenseByID(ctx context.Context, userID string, expenseID string) (*expense.ExpenseResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	e, ok := inMem.expenses[expenseID]
	if !ok || e.UserID != userID {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Expense not found",
		}
	}
	resp := inMem.expenseResponse(e)
	return &resp, nil
}

func (inMem *InMemoryStorage) UpdateExpense(ctx context.Context, userID string, fields expense.UpdateExpenseRequest) (*expense.ExpenseResponse, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	e, ok := inMem.expenses[fields.ID]
	if !ok || e.UserID != userID {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Expense not found",
		}
	}
	if _, ok := inMem.expenseTypes[fields.NewTypeID]; !ok {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrValidation,
			Message: "Expense type or budget does not exist.",
		}
	}
	if fields.NewBudgetID != nil {
		b, ok := inMem.budgets[*fields.NewBudgetID]
		if !ok || b.UserID != userID {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found",
			}
		}
	}

	previousBudgetID := e.BudgetID

	e.TypeID = fields.NewTypeID
	e.Amount = fields.NewAmount
	e.Date = fields.NewDate
	e.Description = fields.NewDescription
	e.Notes = fields.NewNotes
	e.BudgetID = fields.NewBudgetID
	inMem.expenses[fields.ID] = e

	affected := map[string]bool{}
	if previousBudgetID != nil {
		affected[*previousBudgetID] = true
	}
	if fields.NewBudgetID != nil {
		affected[*fields.NewBudgetID] = true
	}
	for budgetID := range affected {
		if err := inMem.reconcileBudgetLocked(budgetID); err != nil {
			return nil, err
		}
	}

	resp := inMem.expenseResponse(e)
	return &resp, nil
}

func (inMem *InMemoryStorage) DeleteExpense(ctx context.Context, userID string, expenseID string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	e, ok := inMem.expenses[expenseID]
	if !ok || e.UserID != userID {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Expense not found",
		}
	}

	delete(inMem.expenses, expenseID)
	if e.BudgetID != nil {
		if err := inMem.reconcileBudgetLocked(*e.BudgetID); err != nil {
			return err
		}
	}
	return nil
}

func (inMem *InMemoryStorage) GetRecentExpenses(ctx context.Context, userID string, limit int) ([]expense.ExpenseResponse, error) {
	expenses, err := inMem.GetExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(expenses) > limit {
		expenses = expenses[:limit]
	}
	return expenses, nil
}

// --- AGGREGATION --- //

func (inMem *InMemoryStorage) SumExpensesForBudget(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	return inMem.sumExpensesLocked(budgetID), nil
}

func (inMem *InMemoryStorage) sumExpensesLocked(budgetID string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range inMem.expenses {
		if e.BudgetID != nil && *e.BudgetID == budgetID {
			total = total.Add(e.Amount)
		}
	}
	return total
}

func (inMem *InMemoryStorage) CategoryTotals(ctx context.Context, userID string) ([]expense.CategoryTotal, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	byType := map[string]decimal.Decimal{}
	for _, e := range inMem.expenses {
		if e.UserID == userID {
			byType[e.TypeID] = byType[e.TypeID].Add(e.Amount)
		}
	}

	var totals []expense.CategoryTotal
	for typeID, total := range byType {
		totals = append(totals, expense.CategoryTotal{Name: inMem.typeName(typeID), Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Total.GreaterThan(totals[j].Total) })
	return totals, nil
}

func (inMem *InMemoryStorage) MonthlyTotals(ctx context.Context, userID string) ([]expense.MonthlyTotal, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	type bucket struct {
		year  int
		month time.Month
	}
	byMonth := map[bucket]decimal.Decimal{}
	for _, e := range inMem.expenses {
		if e.UserID == userID {
			key := bucket{year: e.Date.Year(), month: e.Date.Month()}
			byMonth[key] = byMonth[key].Add(e.Amount)
		}
	}

	var totals []expense.MonthlyTotal
	for key, total := range byMonth {
		totals = append(totals, expense.MonthlyTotal{
			Year:  key.year,
			Month: key.month,
			Label: key.month.String()[:3],
			Total: total,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Year != totals[j].Year {
			return totals[i].Year > totals[j].Year
		}
		return totals[i].Month > totals[j].Month
	})
	return totals, nil
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func (inMem *InMemoryStorage) ExpenseWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	previousMonth := now.AddDate(0, -1, 0)
	current, previous := decimal.Zero, decimal.Zero
	for _, e := range inMem.expenses {
		if e.UserID != userID {
			continue
		}
		if sameMonth(e.Date, now) {
			current = current.Add(e.Amount)
		} else if sameMonth(e.Date, previousMonth) {
			previous = previous.Add(e.Amount)
		}
	}
	return current, previous, nil
}

func (inMem *InMemoryStorage) BudgetWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	previousMonth := now.AddDate(0, -1, 0)
	current, previous := decimal.Zero, decimal.Zero
	for _, b := range inMem.budgets {
		if b.UserID != userID {
			continue
		}
		if sameMonth(b.StartDate, now) {
			current = current.Add(b.Limit)
		} else if sameMonth(b.StartDate, previousMonth) {
			previous = previous.Add(b.Limit)
		}
	}
	return current, previous, nil
}

func (inMem *InMemoryStorage) RemainingWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	previousMonth := now.AddDate(0, -1, 0)
	current, previous := decimal.Zero, decimal.Zero
	for _, b := range inMem.budgets {
		if b.UserID != userID {
			continue
		}
		remaining := b.Limit.Sub(b.Spent)
		if sameMonth(b.StartDate, now) {
			current = current.Add(remaining)
		} else if sameMonth(b.StartDate, previousMonth) {
			previous = previous.Add(remaining)
		}
	}
	return current, previous, nil
}

// --- RECONCILIATION & NOTIFICATIONS --- //

func (inMem *InMemoryStorage) reconcileBudgetLocked(budgetID string) error {
	b, ok := inMem.budgets[budgetID]
	if !ok {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Budget not found",
		}
	}

	oldSpent := b.Spent
	newSpent := inMem.sumExpensesLocked(budgetID)
	b.Spent = newSpent
	inMem.budgets[budgetID] = b

	draft := expense.DecideNotification(b.Name, b.Limit, oldSpent, newSpent, inMem.notifyOnCrossingOnly)
	if draft == nil {
		return nil
	}

	id := budgetID
	name := b.Name
	inMem.notifications = append(inMem.notifications, expense.Notification{
		ID:         uuid.New().String(),
		UserID:     b.UserID,
		BudgetID:   &id,
		BudgetName: &name,
		Message:    draft.Message,
		Kind:       draft.Kind,
		NotifiedAt: time.Now().UTC(),
	})
	return nil
}

func (inMem *InMemoryStorage) ReconcileBudget(ctx context.Context, budgetID string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	return inMem.reconcileBudgetLocked(budgetID)
}

func (inMem *InMemoryStorage) notificationsLocked(userID string, unreadOnly bool) []expense.Notification {
	var notifications []expense.Notification
	// Newest first; insertion order breaks timestamp ties.
	for i := len(inMem.notifications) - 1; i >= 0; i-- {
		n := inMem.notifications[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications
}

func (inMem *InMemoryStorage) GetUnreadNotifications(ctx context.Context, userID string) ([]expense.Notification, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	return inMem.notificationsLocked(userID, true), nil
}

func (inMem *InMemoryStorage) GetRecentNotifications(ctx context.Context, userID string, limit int) ([]expense.Notification, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	notifications := inMem.notificationsLocked(userID, false)
	if len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (inMem *InMemoryStorage) MarkNotificationRead(ctx context.Context, userID string, notificationID string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i := range inMem.notifications {
		if inMem.notifications[i].ID == notificationID && inMem.notifications[i].UserID == userID && !inMem.notifications[i].IsRead {
			inMem.notifications[i].IsRead = true
			return nil
		}
	}
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "Notification not found or user not authorized",
	}
}
