package api

import (
	"encoding/json"
	"fmt"

	"github.com/0xcafe-io/iz"
	"github.com/aysel-mammadli/expense_tracker/internal/auth"
	"github.com/aysel-mammadli/expense_tracker/internal/contextutil"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/aysel-mammadli/expense_tracker/logging"
	"github.com/google/uuid"
)

type Api struct {
	Service *expense.ExpenseTracker
}

func NewApi(service *expense.ExpenseTracker) *Api {
	return &Api{
		Service: service,
	}
}

// authorize resolves the Authorization header into a user ID. The second
// return value is non-nil when the request must be rejected.
func (api *Api) authorize(r *iz.Request) (string, iz.Responder) {
	token := r.Header.Get("Authorization")
	if token == "" {
		msg := "authorization failed: Authorization header is required."
		return "", iz.Respond().Status(401).Text(msg)
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	userID, err := api.Service.CheckSession(ctx, token)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return "", iz.Respond().Status(401).Text(msg)
	}
	return userID, nil
}

// --- USER HANDLERS --- //

func (api *Api) RegisterUserHandler(r *iz.Request) iz.Responder {
	var registerReq RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	newUser := auth.NewUser{
		Name:          registerReq.Name,
		Email:         registerReq.Email,
		PasswordPlain: registerReq.Password,
		Phone:         registerReq.Phone,
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	token, err := api.Service.RegisterUser(ctx, newUser)
	if err != nil {
		msg := fmt.Sprintf("registration failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := TokenResponse{
		Message: "Registration Completed",
		Token:   token,
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) LoginUserHandler(r *iz.Request) iz.Responder {
	var loginRequest UserLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	credentials := auth.UserCredentialsPure{
		Email:         loginRequest.Email,
		PasswordPlain: loginRequest.Password,
	}

	response := TokenResponse{}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	token, err := api.Service.GenerateSession(ctx, credentials)
	if err != nil {
		response.Message = err.Error()
		return iz.Respond().Status(httpStatusFromError(err)).JSON(response)
	}
	response.Message = "You've logged in successfully!"
	response.Token = token
	return iz.Respond().Status(200).JSON(response)
}

func (api *Api) LogoutUserHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	token := r.Header.Get("Authorization")
	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	if err := api.Service.LogoutUser(ctx, userID, token); err != nil {
		msg := fmt.Sprintf("logout failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("Logout successful.")
}

func (api *Api) CheckTokenHandler(r *iz.Request) iz.Responder {
	_, denied := api.authorize(r)
	if denied != nil {
		return denied
	}
	return iz.Respond().Status(200).JSON(MessageResponse{Message: "Token is valid."})
}

func (api *Api) GetAccountInfoHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	info, err := api.Service.GetAccountInfo(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get account info: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}

	resp := AccountInfoResponse{
		Name:     info.Name,
		Email:    info.Email,
		Phone:    info.Phone,
		JoinedAt: info.JoinedAt.Format(dateLayout),
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) UpdateProfileHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var updateReq UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	fields := auth.ProfileUpdate{
		NewName:       updateReq.Name,
		NewEmail:      updateReq.Email,
		NewPhone:      updateReq.Phone,
		PasswordPlain: updateReq.Password,
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	if err := api.Service.UpdateProfile(ctx, userID, fields); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).Text("Profile updated.")
}

func (api *Api) SendOTPHandler(r *iz.Request) iz.Responder {
	var otpReq SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&otpReq); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	if err := api.Service.RequestEmailOTP(ctx, otpReq.Email); err != nil {
		logging.Logger.Errorf("Failed to send OTP: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to send OTP")
	}
	return iz.Respond().Status(200).Text("OTP sent.")
}

func (api *Api) VerifyOTPHandler(r *iz.Request) iz.Responder {
	var verifyReq VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&verifyReq); err != nil {
		return iz.Respond().Status(400).Text("invalid request body")
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	if err := api.Service.VerifyEmailOTP(ctx, verifyReq.Email, verifyReq.OTP); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).Text("OTP verified.")
}

// --- EXPENSE TYPE HANDLERS --- //

func (api *Api) SaveExpenseTypeHandler(r *iz.Request) iz.Responder {
	_, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var typeReq ExpenseTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&typeReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	created, err := api.Service.SaveExpenseType(ctx, typeReq.Name)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(201).JSON(ExpenseTypeItem{ID: created.ID, Name: created.Name})
}

func (api *Api) ListExpenseTypesHandler(r *iz.Request) iz.Responder {
	_, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	types, err := api.Service.ListExpenseTypes(ctx)
	if err != nil {
		logging.Logger.Errorf("Failed to list expense types: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get expense types")
	}

	items := make([]ExpenseTypeItem, 0, len(types))
	for _, t := range types {
		items = append(items, ExpenseTypeItem{ID: t.ID, Name: t.Name})
	}
	return iz.Respond().Status(200).JSON(items)
}

// --- BUDGET HANDLERS --- //

func (api *Api) decodeBudgetRequest(r *iz.Request) (*expense.BudgetRequest, iz.Responder) {
	var budgetReq BudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&budgetReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return nil, iz.Respond().Status(400).Text(msg)
	}

	startDate, err := parseDate(budgetReq.StartDate)
	if err != nil {
		msg := fmt.Sprintf("invalid start date: '%s', expected format: %s", budgetReq.StartDate, dateLayout)
		return nil, iz.Respond().Status(400).Text(msg)
	}
	endDate, err := parseDate(budgetReq.EndDate)
	if err != nil {
		msg := fmt.Sprintf("invalid end date: '%s', expected format: %s", budgetReq.EndDate, dateLayout)
		return nil, iz.Respond().Status(400).Text(msg)
	}
	if endDate.Before(startDate) {
		return nil, iz.Respond().Status(400).Text("end date cannot be before start date")
	}

	return &expense.BudgetRequest{
		TypeID:    budgetReq.TypeID,
		Name:      budgetReq.Name,
		Limit:     budgetReq.Limit,
		StartDate: startDate,
		EndDate:   endDate,
		Notes:     budgetReq.Notes,
	}, nil
}

func (api *Api) SaveBudgetHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	budgetReq, invalid := api.decodeBudgetRequest(r)
	if invalid != nil {
		return invalid
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	created, err := api.Service.SaveBudget(ctx, userID, *budgetReq)
	if err != nil {
		msg := fmt.Sprintf("failed to create budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(201).JSON(BudgetToHttp(*created))
}

func (api *Api) GetBudgetsHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	budgets, err := api.Service.GetBudgets(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get budgets: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get budgets")
	}

	items := make([]BudgetItem, 0, len(budgets))
	for _, b := range budgets {
		items = append(items, BudgetToHttp(b))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) GetBudgetByIDHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	budgetID := r.PathValue("id")
	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	b, err := api.Service.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(BudgetToHttp(*b))
}

func (api *Api) UpdateBudgetHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	budgetReq, invalid := api.decodeBudgetRequest(r)
	if invalid != nil {
		return invalid
	}

	fields := expense.UpdateBudgetRequest{
		ID:        r.PathValue("id"),
		NewTypeID: budgetReq.TypeID,
		NewName:   budgetReq.Name,
		NewLimit:  budgetReq.Limit,
		NewStart:  budgetReq.StartDate,
		NewEnd:    budgetReq.EndDate,
		NewNotes:  budgetReq.Notes,
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	updated, err := api.Service.UpdateBudget(ctx, userID, fields)
	if err != nil {
		msg := fmt.Sprintf("failed to update budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(BudgetToHttp(*updated))
}

func (api *Api) DeleteBudgetHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	budgetID := r.PathValue("id")
	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	if err := api.Service.DeleteBudget(ctx, userID, budgetID); err != nil {
		msg := fmt.Sprintf("failed to delete budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("budget deleted successfully")
}

func (api *Api) ListBudgetNamesHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	names, err := api.Service.ListBudgetNames(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to list budget names: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get budget names")
	}

	items := make([]BudgetNameItem, 0, len(names))
	for _, n := range names {
		items = append(items, BudgetNameItem{ID: n.ID, Name: n.Name})
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) BudgetSummaryHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	summary, err := api.Service.GetBudgetSummaryByCategory(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get budget summary: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get budget summary")
	}

	items := make([]BudgetSummaryItem, 0, len(summary))
	for _, s := range summary {
		items = append(items, BudgetSummaryItem{
			TypeID:     s.TypeID,
			Name:       s.Name,
			TotalLimit: s.TotalLimit,
			TotalSpent: s.TotalSpent,
		})
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) TotalBudgetHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	total, err := api.Service.GetTotalBudget(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get total budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get total budget")
	}
	return iz.Respond().Status(200).JSON(TotalToHttp(total))
}

func (api *Api) RemainingBudgetHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	remaining, err := api.Service.GetRemainingBudget(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get remaining budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get remaining budget")
	}
	return iz.Respond().Status(200).JSON(TotalToHttp(remaining))
}

func (api *Api) ReconcileBudgetHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	budgetID := r.PathValue("id")
	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())

	// Ownership first: reconcile itself works on the raw budget ID.
	if _, err := api.Service.GetBudgetByID(ctx, userID, budgetID); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	if err := api.Service.ReconcileBudget(ctx, budgetID); err != nil {
		msg := fmt.Sprintf("failed to reconcile budget: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("budget reconciled successfully")
}

// --- EXPENSE HANDLERS --- //

func (api *Api) decodeExpenseRequest(r *iz.Request) (*expense.ExpenseRequest, iz.Responder) {
	var expenseReq ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&expenseReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return nil, iz.Respond().Status(400).Text(msg)
	}

	date, err := parseDate(expenseReq.Date)
	if err != nil {
		msg := fmt.Sprintf("invalid expense date: '%s', expected format: %s", expenseReq.Date, dateLayout)
		return nil, iz.Respond().Status(400).Text(msg)
	}

	return &expense.ExpenseRequest{
		TypeID:      expenseReq.TypeID,
		Amount:      expenseReq.Amount,
		Date:        date,
		Description: expenseReq.Description,
		Notes:       expenseReq.Notes,
		BudgetID:    expenseReq.BudgetID,
	}, nil
}

func (api *Api) SaveExpenseHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	expenseReq, invalid := api.decodeExpenseRequest(r)
	if invalid != nil {
		return invalid
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	created, err := api.Service.SaveExpense(ctx, userID, *expenseReq)
	if err != nil {
		msg := fmt.Sprintf("failed to create expense: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(201).JSON(ExpenseToHttp(*created))
}

func (api *Api) GetExpensesHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	expenses, err := api.Service.GetExpenses(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get expenses: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get expenses")
	}

	items := make([]ExpenseItem, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, ExpenseToHttp(e))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) GetExpenseByIDHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	expenseID := r.PathValue("id")
	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	e, err := api.Service.GetExpenseByID(ctx, userID, expenseID)
	if err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).JSON(ExpenseToHttp(*e))
}

func (api *Api) UpdateExpenseHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	expenseReq, invalid := api.decodeExpenseRequest(r)
	if invalid != nil {
		return invalid
	}

	fields := expense.UpdateExpenseRequest{
		ID:             r.PathValue("id"),
		NewTypeID:      expenseReq.TypeID,
		NewAmount:      expenseReq.Amount,
		NewDate:        expenseReq.Date,
		NewDescription: expenseReq.Description,
		NewNotes:       expenseReq.Notes,
		NewBudgetID:    expenseReq.BudgetID,
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	updated, err := api.Service.UpdateExpense(ctx, userID, fields)
	if err != nil {
		msg := fmt.Sprintf("failed to update expense: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(ExpenseToHttp(*updated))
}

func (api *Api) DeleteExpenseHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	expenseID := r.PathValue("id")
	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	if err := api.Service.DeleteExpense(ctx, userID, expenseID); err != nil {
		msg := fmt.Sprintf("failed to delete expense: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("expense deleted successfully")
}

func (api *Api) RecentExpensesHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	expenses, err := api.Service.GetRecentExpenses(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get recent expenses: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get recent expenses")
	}

	items := make([]ExpenseItem, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, ExpenseToHttp(e))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) MonthlyExpensesHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	totals, err := api.Service.GetMonthlyTotals(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get monthly totals: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get monthly totals")
	}

	items := make([]MonthlyTotalItem, 0, len(totals))
	for _, m := range totals {
		items = append(items, MonthlyTotalToHttp(m))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) CategoryTotalsHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	totals, err := api.Service.GetCategoryTotals(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get category totals: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get category totals")
	}

	items := make([]CategoryTotalItem, 0, len(totals))
	for _, t := range totals {
		items = append(items, CategoryTotalItem{Name: t.Name, Total: t.Total})
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) TotalExpensesHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	total, err := api.Service.GetTotalExpenses(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get total expenses: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get total expenses")
	}
	return iz.Respond().Status(200).JSON(TotalToHttp(total))
}

// --- NOTIFICATION HANDLERS --- //

func (api *Api) UnreadNotificationsHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	notifications, err := api.Service.GetUnreadNotifications(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get unread notifications: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get notifications")
	}

	items := make([]NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, NotificationToHttp(n))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) RecentNotificationsHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	notifications, err := api.Service.GetRecentNotifications(ctx, userID)
	if err != nil {
		logging.Logger.Errorf("Failed to get recent notifications: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get notifications")
	}

	items := make([]NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, NotificationToHttp(n))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) MarkNotificationReadHandler(r *iz.Request) iz.Responder {
	userID, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	notificationID := r.PathValue("id")
	ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
	if err := api.Service.MarkNotificationRead(ctx, userID, notificationID); err != nil {
		return iz.Respond().Status(httpStatusFromError(err)).Text(err.Error())
	}
	return iz.Respond().Status(200).Text("notification marked as read")
}
