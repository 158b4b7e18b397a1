package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
	"github.com/aysel-mammadli/expense_tracker/internal/contextutil"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/aysel-mammadli/expense_tracker/logging"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- EXPENSE TYPES --- //

func (mySql *MySQLStorage) SaveExpenseType(ctx context.Context, expenseType expense.ExpenseType) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO expense_type (type_id, type_name) VALUES (?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, expenseType.ID, expenseType.Name)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "The expense type already exists.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save expense type in Storage.SaveExpenseType() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the expense type, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) ListExpenseTypes(ctx context.Context) ([]expense.ExpenseType, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := mySql.db.QueryContext(ctx, "SELECT type_id, type_name FROM expense_type ORDER BY type_name;")
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to list expense types in Storage.ListExpenseTypes() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get expense types, try again later.",
		}
	}
	defer rows.Close()

	var types []expense.ExpenseType
	for rows.Next() {
		var t expense.ExpenseType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// --- BUDGETS --- //

func (mySql *MySQLStorage) SaveBudget(ctx context.Context, budget expense.Budget) (*expense.BudgetResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start transaction in Storage.SaveBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the budget, try again later.",
		}
	}

	query := `INSERT INTO budget (budget_id, user_id, type_id, budget_name, budget_limit, budget_spent, start_date, end_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err = tx.ExecContext(ctx, query, budget.ID, budget.UserID, budget.TypeID, budget.Name, budget.Limit, budget.Spent, budget.StartDate, budget.EndDate, budget.Notes)
	if err != nil {
		tx.Rollback()
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1452 {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrValidation,
				Message: "Expense type does not exist.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save budget in Storage.SaveBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the budget, try again later.",
		}
	}

	// The response row is read inside the transaction so a concurrent
	// writer cannot change it between the write and the read-back.
	b, err := mySql.budgetResponseTx(ctx, tx, budget.UserID, budget.ID)
	if err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to read back budget in Storage.SaveBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the budget, try again later.",
		}
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.SaveBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the budget, try again later.",
		}
	}
	return b, nil
}

const budgetSelect = `SELECT b.budget_id, b.budget_name, t.type_name, b.budget_limit, b.budget_spent, b.start_date, b.end_date, b.notes
	FROM budget b
	JOIN expense_type t ON t.type_id = b.type_id`

func (mySql *MySQLStorage) budgetResponseTx(ctx context.Context, tx *sql.Tx, userID string, budgetID string) (*expense.BudgetResponse, error) {
	row := tx.QueryRowContext(ctx, budgetSelect+" WHERE b.budget_id = ? AND b.user_id = ?;", budgetID, userID)
	return scanBudgetResponse(row)
}

func scanBudgetResponse(row interface{ Scan(...any) error }) (*expense.BudgetResponse, error) {
	var b expense.BudgetResponse
	var notes sql.NullString
	err := row.Scan(&b.ID, &b.Name, &b.Category, &b.Limit, &b.Spent, &b.StartDate, &b.EndDate, &notes)
	if err != nil {
		return nil, err
	}
	b.Notes = notes.String
	return &b, nil
}

func (mySql *MySQLStorage) GetBudgets(ctx context.Context, userID string) ([]expense.BudgetResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := mySql.db.QueryContext(ctx, budgetSelect+" WHERE b.user_id = ? ORDER BY b.start_date DESC;", userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get budgets in Storage.GetBudgets() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get budgets, try again later.",
		}
	}
	defer rows.Close()

	var budgets []expense.BudgetResponse
	for rows.Next() {
		b, err := scanBudgetResponse(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (mySql *MySQLStorage) GetBudgetByID(ctx context.Context, userID string, budgetID string) (*expense.BudgetResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	row := mySql.db.QueryRowContext(ctx, budgetSelect+" WHERE b.budget_id = ? AND b.user_id = ?;", budgetID, userID)
	b, err := scanBudgetResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get budget in Storage.GetBudgetByID() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get the budget, try again later.",
		}
	}
	return b, nil
}

func (mySql *MySQLStorage) UpdateBudget(ctx context.Context, userID string, fields expense.UpdateBudgetRequest) (*expense.BudgetResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start transaction in Storage.UpdateBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the budget, try again later.",
		}
	}

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM budget WHERE budget_id = ? AND user_id = ? FOR UPDATE;", fields.ID, userID).Scan(&one)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to lock budget in Storage.UpdateBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the budget, try again later.",
		}
	}

	query := `UPDATE budget SET type_id = ?, budget_name = ?, budget_limit = ?, start_date = ?, end_date = ?, notes = ?
		WHERE budget_id = ? AND user_id = ?;`
	_, err = tx.ExecContext(ctx, query, fields.NewTypeID, fields.NewName, fields.NewLimit, fields.NewStart, fields.NewEnd, fields.NewNotes, fields.ID, userID)
	if err != nil {
		tx.Rollback()
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1452 {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrValidation,
				Message: "Expense type does not exist.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to update budget in Storage.UpdateBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the budget, try again later.",
		}
	}

	// A new limit moves the threshold bands, so the budget is re-evaluated
	// against its expenses before the change becomes visible.
	if err := mySql.reconcileBudgetTx(ctx, tx, fields.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	b, err := mySql.budgetResponseTx(ctx, tx, userID, fields.ID)
	if err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to read back budget in Storage.UpdateBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the budget, try again later.",
		}
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.UpdateBudget() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the budget, try again later.",
		}
	}
	return b, nil
}

func (mySql *MySQLStorage) DeleteBudget(ctx context.Context, userID string, budgetID string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start transaction in Storage.DeleteBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the budget, try again later.",
		}
	}

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM budget WHERE budget_id = ? AND user_id = ? FOR UPDATE;", budgetID, userID).Scan(&one)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to lock budget in Storage.DeleteBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the budget, try again later.",
		}
	}

	// Expenses outlive their budget. They are detached in the same
	// transaction so they keep feeding category and monthly aggregates.
	if _, err := tx.ExecContext(ctx, "UPDATE expense SET budget_id = NULL WHERE budget_id = ?;", budgetID); err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to detach expenses in Storage.DeleteBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the budget, try again later.",
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE notification SET budget_id = NULL WHERE budget_id = ?;", budgetID); err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to detach notifications in Storage.DeleteBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the budget, try again later.",
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM budget WHERE budget_id = ?;", budgetID); err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to delete budget in Storage.DeleteBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the budget, try again later.",
		}
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.DeleteBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the budget, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) ListBudgetNames(ctx context.Context, userID string) ([]expense.BudgetName, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := mySql.db.QueryContext(ctx, "SELECT budget_id, budget_name FROM budget WHERE user_id = ? ORDER BY budget_name;", userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to list budget names in Storage.ListBudgetNames() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get budget names, try again later.",
		}
	}
	defer rows.Close()

	var names []expense.BudgetName
	for rows.Next() {
		var n expense.BudgetName
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (mySql *MySQLStorage) BudgetSummaryByCategory(ctx context.Context, userID string) ([]expense.BudgetCategorySummary, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `SELECT t.type_id, t.type_name, SUM(b.budget_limit), SUM(b.budget_spent)
		FROM budget b
		JOIN expense_type t ON t.type_id = b.type_id
		WHERE b.user_id = ?
		GROUP BY t.type_id, t.type_name
		ORDER BY t.type_name;`

	rows, err := mySql.db.QueryContext(ctx, query, userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get budget summary in Storage.BudgetSummaryByCategory() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get budget summary, try again later.",
		}
	}
	defer rows.Close()

	var summary []expense.BudgetCategorySummary
	for rows.Next() {
		var s expense.BudgetCategorySummary
		if err := rows.Scan(&s.TypeID, &s.Name, &s.TotalLimit, &s.TotalSpent); err != nil {
			return nil, err
		}
		summary = append(summary, s)
	}
	return summary, rows.Err()
}

// --- EXPENSES --- //

const expenseSelect = `SELECT e.expense_id, e.expense_date, t.type_name, e.description, e.amount, e.notes, e.budget_id
	FROM expense e
	JOIN expense_type t ON t.type_id = e.type_id`

func scanExpenseResponse(row interface{ Scan(...any) error }) (*expense.ExpenseResponse, error) {
	var e expense.ExpenseResponse
	var description, notes, budgetID sql.NullString
	err := row.Scan(&e.ID, &e.Date, &e.Category, &description, &e.Amount, &notes, &budgetID)
	if err != nil {
		return nil, err
	}
	e.Description = description.String
	e.Notes = notes.String
	if budgetID.Valid {
		e.BudgetID = &budgetID.String
	}
	return &e, nil
}

func (mySql *MySQLStorage) expenseResponseTx(ctx context.Context, tx *sql.Tx, userID string, expenseID string) (*expense.ExpenseResponse, error) {
	row := tx.QueryRowContext(ctx, expenseSelect+" WHERE e.expense_id = ? AND e.user_id = ?;", expenseID, userID)
	return scanExpenseResponse(row)
}

// lockOwnedBudgetTx locks the budget row for the rest of the transaction and
// fails with NotFound when the budget does not exist or belongs to another
// user. A budget id is never accepted across user boundaries.
func (mySql *MySQLStorage) lockOwnedBudgetTx(ctx context.Context, tx *sql.Tx, userID string, budgetID string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM budget WHERE budget_id = ? AND user_id = ? FOR UPDATE;", budgetID, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to lock budget in Storage.lockOwnedBudgetTx() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the expense, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) SaveExpense(ctx context.Context, exp expense.Expense) (*expense.ExpenseResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start transaction in Storage.SaveExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the expense, try again later.",
		}
	}

	if exp.BudgetID != nil {
		if err := mySql.lockOwnedBudgetTx(ctx, tx, exp.UserID, *exp.BudgetID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	query := `INSERT INTO expense (expense_id, user_id, type_id, amount, expense_date, description, notes, budget_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	_, err = tx.ExecContext(ctx, query, exp.ID, exp.UserID, exp.TypeID, exp.Amount, exp.Date, exp.Description, exp.Notes, exp.BudgetID)
	if err != nil {
		tx.Rollback()
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1452 {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrValidation,
				Message: "Expense type or budget does not exist.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save expense in Storage.SaveExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the expense, try again later.",
		}
	}

	if exp.BudgetID != nil {
		if err := mySql.reconcileBudgetTx(ctx, tx, *exp.BudgetID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	e, err := mySql.expenseResponseTx(ctx, tx, exp.UserID, exp.ID)
	if err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to read back expense in Storage.SaveExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the expense, try again later.",
		}
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.SaveExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to save the expense, try again later.",
		}
	}
	return e, nil
}

func (mySql *MySQLStorage) GetExpenses(ctx context.Context, userID string) ([]expense.ExpenseResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := mySql.db.QueryContext(ctx, expenseSelect+" WHERE e.user_id = ? ORDER BY e.expense_date DESC;", userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get expenses in Storage.GetExpenses() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get expenses, try again later.",
		}
	}
	defer rows.Close()

	var expenses []expense.ExpenseResponse
	for rows.Next() {
		e, err := scanExpenseResponse(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func (mySql *MySQLStorage) GetExpenseByID(ctx context.Context, userID string, expenseID string) (*expense.ExpenseResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	row := mySql.db.QueryRowContext(ctx, expenseSelect+" WHERE e.expense_id = ? AND e.user_id = ?;", expenseID, userID)
	e, err := scanExpenseResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Expense not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get expense in Storage.GetExpenseByID() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get the expense, try again later.",
		}
	}
	return e, nil
}

func (mySql *MySQLStorage) UpdateExpense(ctx context.Context, userID string, fields expense.UpdateExpenseRequest) (*expense.ExpenseResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start transaction in Storage.UpdateExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the expense, try again later.",
		}
	}

	var previousBudgetID sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT budget_id FROM expense WHERE expense_id = ? AND user_id = ? FOR UPDATE;", fields.ID, userID).Scan(&previousBudgetID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Expense not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to lock expense in Storage.UpdateExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the expense, try again later.",
		}
	}

	if fields.NewBudgetID != nil {
		if err := mySql.lockOwnedBudgetTx(ctx, tx, userID, *fields.NewBudgetID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	query := `UPDATE expense SET type_id = ?, amount = ?, expense_date = ?, description = ?, notes = ?, budget_id = ?
		WHERE expense_id = ? AND user_id = ?;`
	_, err = tx.ExecContext(ctx, query, fields.NewTypeID, fields.NewAmount, fields.NewDate, fields.NewDescription, fields.NewNotes, fields.NewBudgetID, fields.ID, userID)
	if err != nil {
		tx.Rollback()
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1452 {
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrValidation,
				Message: "Expense type or budget does not exist.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to update expense in Storage.UpdateExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the expense, try again later.",
		}
	}

	// Both sides of a reassignment settle in this transaction: the budget
	// that lost the expense and the one that gained it.
	affected := map[string]bool{}
	if previousBudgetID.Valid {
		affected[previousBudgetID.String] = true
	}
	if fields.NewBudgetID != nil {
		affected[*fields.NewBudgetID] = true
	}
	for budgetID := range affected {
		if err := mySql.reconcileBudgetTx(ctx, tx, budgetID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	e, err := mySql.expenseResponseTx(ctx, tx, userID, fields.ID)
	if err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to read back expense in Storage.UpdateExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the expense, try again later.",
		}
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.UpdateExpense() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the expense, try again later.",
		}
	}
	return e, nil
}

func (mySql *MySQLStorage) DeleteExpense(ctx context.Context, userID string, expenseID string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start transaction in Storage.DeleteExpense() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the expense, try again later.",
		}
	}

	var previousBudgetID sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT budget_id FROM expense WHERE expense_id = ? AND user_id = ? FOR UPDATE;", expenseID, userID).Scan(&previousBudgetID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Expense not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to lock expense in Storage.DeleteExpense() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the expense, try again later.",
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense WHERE expense_id = ?;", expenseID); err != nil {
		tx.Rollback()
		logging.Logger.Errorf("[TraceID=%s] | failed to delete expense in Storage.DeleteExpense() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the expense, try again later.",
		}
	}

	if previousBudgetID.Valid {
		if err := mySql.reconcileBudgetTx(ctx, tx, previousBudgetID.String); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.DeleteExpense() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to delete the expense, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) GetRecentExpenses(ctx context.Context, userID string, limit int) ([]expense.ExpenseResponse, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := mySql.db.QueryContext(ctx, expenseSelect+" WHERE e.user_id = ? ORDER BY e.expense_date DESC LIMIT ?;", userID, limit)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get recent expenses in Storage.GetRecentExpenses() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get recent expenses, try again later.",
		}
	}
	defer rows.Close()

	var expenses []expense.ExpenseResponse
	for rows.Next() {
		e, err := scanExpenseResponse(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// --- AGGREGATION --- //

func (mySql *MySQLStorage) SumExpensesForBudget(ctx context.Context, budgetID string) (decimal.Decimal, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var total decimal.Decimal
	err := mySql.db.QueryRowContext(ctx, "SELECT IFNULL(SUM(amount), 0) FROM expense WHERE budget_id = ?;", budgetID).Scan(&total)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to sum expenses in Storage.SumExpensesForBudget() function | Error: %v", traceID, err)
		return decimal.Zero, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to compute spent total, try again later.",
		}
	}
	return total, nil
}

func (mySql *MySQLStorage) CategoryTotals(ctx context.Context, userID string) ([]expense.CategoryTotal, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `SELECT t.type_name, SUM(e.amount) AS total
		FROM expense e
		JOIN expense_type t ON t.type_id = e.type_id
		WHERE e.user_id = ?
		GROUP BY t.type_id, t.type_name
		ORDER BY total DESC;`

	rows, err := mySql.db.QueryContext(ctx, query, userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get category totals in Storage.CategoryTotals() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get category totals, try again later.",
		}
	}
	defer rows.Close()

	var totals []expense.CategoryTotal
	for rows.Next() {
		var t expense.CategoryTotal
		if err := rows.Scan(&t.Name, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (mySql *MySQLStorage) MonthlyTotals(ctx context.Context, userID string) ([]expense.MonthlyTotal, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `SELECT YEAR(expense_date), MONTH(expense_date), DATE_FORMAT(expense_date, '%b'), SUM(amount)
		FROM expense
		WHERE user_id = ?
		GROUP BY YEAR(expense_date), MONTH(expense_date), DATE_FORMAT(expense_date, '%b')
		ORDER BY YEAR(expense_date) DESC, MONTH(expense_date) DESC;`

	rows, err := mySql.db.QueryContext(ctx, query, userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get monthly totals in Storage.MonthlyTotals() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get monthly totals, try again later.",
		}
	}
	defer rows.Close()

	var totals []expense.MonthlyTotal
	for rows.Next() {
		var t expense.MonthlyTotal
		var month int
		if err := rows.Scan(&t.Year, &month, &t.Label, &t.Total); err != nil {
			return nil, err
		}
		t.Month = time.Month(month)
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (mySql *MySQLStorage) ExpenseWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `SELECT
		IFNULL(SUM(CASE WHEN DATE_FORMAT(expense_date, '%Y-%m') = DATE_FORMAT(?, '%Y-%m') THEN amount END), 0),
		IFNULL(SUM(CASE WHEN DATE_FORMAT(expense_date, '%Y-%m') = DATE_FORMAT(DATE_SUB(?, INTERVAL 1 MONTH), '%Y-%m') THEN amount END), 0)
		FROM expense WHERE user_id = ?;`
	return mySql.windowPairUserLast(ctx, query, userID, now)
}

func (mySql *MySQLStorage) BudgetWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `SELECT
		IFNULL(SUM(CASE WHEN DATE_FORMAT(start_date, '%Y-%m') = DATE_FORMAT(?, '%Y-%m') THEN budget_limit END), 0),
		IFNULL(SUM(CASE WHEN DATE_FORMAT(start_date, '%Y-%m') = DATE_FORMAT(DATE_SUB(?, INTERVAL 1 MONTH), '%Y-%m') THEN budget_limit END), 0)
		FROM budget WHERE user_id = ?;`
	return mySql.windowPairUserLast(ctx, query, userID, now)
}

func (mySql *MySQLStorage) RemainingWindow(ctx context.Context, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `SELECT
		IFNULL(SUM(CASE WHEN DATE_FORMAT(start_date, '%Y-%m') = DATE_FORMAT(?, '%Y-%m') THEN budget_limit - budget_spent END), 0),
		IFNULL(SUM(CASE WHEN DATE_FORMAT(start_date, '%Y-%m') = DATE_FORMAT(DATE_SUB(?, INTERVAL 1 MONTH), '%Y-%m') THEN budget_limit - budget_spent END), 0)
		FROM budget WHERE user_id = ?;`
	return mySql.windowPairUserLast(ctx, query, userID, now)
}

func (mySql *MySQLStorage) windowPairUserLast(ctx context.Context, query string, userID string, now time.Time) (decimal.Decimal, decimal.Decimal, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var current, previous decimal.Decimal
	err := mySql.db.QueryRowContext(ctx, query, now, now, userID).Scan(&current, &previous)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to compute month window | Error: %v", traceID, err)
		return decimal.Zero, decimal.Zero, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to compute totals, try again later.",
		}
	}
	return current, previous, nil
}

// --- RECONCILIATION & NOTIFICATIONS --- //

// reconcileBudgetTx locks the budget row, recomputes budget_spent from the
// linked expenses and writes a threshold notification when one is due. It
// must run inside the transaction that mutated the expenses, the lock also
// serializes concurrent reconciles of the same budget.
func (mySql *MySQLStorage) reconcileBudgetTx(ctx context.Context, tx *sql.Tx, budgetID string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	var ownerID, budgetName string
	var limit, oldSpent decimal.Decimal
	err := tx.QueryRowContext(ctx, "SELECT user_id, budget_name, budget_limit, budget_spent FROM budget WHERE budget_id = ? FOR UPDATE;", budgetID).Scan(&ownerID, &budgetName, &limit, &oldSpent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "Budget not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to lock budget in Storage.reconcileBudgetTx() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrConsistency,
			Message: "Failed to reconcile the budget, try again later.",
		}
	}

	var newSpent decimal.Decimal
	err = tx.QueryRowContext(ctx, "SELECT IFNULL(SUM(amount), 0) FROM expense WHERE budget_id = ?;", budgetID).Scan(&newSpent)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to sum expenses in Storage.reconcileBudgetTx() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrConsistency,
			Message: "Failed to reconcile the budget, try again later.",
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE budget SET budget_spent = ? WHERE budget_id = ?;", newSpent, budgetID); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update spent total in Storage.reconcileBudgetTx() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrConsistency,
			Message: "Failed to reconcile the budget, try again later.",
		}
	}

	draft := expense.DecideNotification(budgetName, limit, oldSpent, newSpent, mySql.notifyOnCrossingOnly)
	if draft == nil {
		return nil
	}

	query := "INSERT INTO notification (notification_id, user_id, budget_id, message, notification_type, is_read, notified_at) VALUES (?, ?, ?, ?, ?, 0, ?);"
	if _, err := tx.ExecContext(ctx, query, uuid.New().String(), ownerID, budgetID, draft.Message, draft.Kind, time.Now().UTC()); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save notification in Storage.reconcileBudgetTx() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrConsistency,
			Message: "Failed to reconcile the budget, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) ReconcileBudget(ctx context.Context, budgetID string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to start transaction in Storage.ReconcileBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to reconcile the budget, try again later.",
		}
	}

	if err := mySql.reconcileBudgetTx(ctx, tx, budgetID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit transaction in Storage.ReconcileBudget() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to reconcile the budget, try again later.",
		}
	}
	return nil
}

const notificationSelect = `SELECT n.notification_id, n.user_id, n.budget_id, b.budget_name, n.message, n.notification_type, n.is_read, n.notified_at
	FROM notification n
	LEFT JOIN budget b ON b.budget_id = n.budget_id`

func (mySql *MySQLStorage) queryNotifications(ctx context.Context, query string, args ...any) ([]expense.Notification, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := mySql.db.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get notifications | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get notifications, try again later.",
		}
	}
	defer rows.Close()

	var notifications []expense.Notification
	for rows.Next() {
		var dbN dbNotification
		if err := rows.Scan(&dbN.ID, &dbN.UserID, &dbN.BudgetID, &dbN.BudgetName, &dbN.Message, &dbN.Kind, &dbN.IsRead, &dbN.NotifiedAt); err != nil {
			return nil, err
		}
		n := expense.Notification{
			ID:         dbN.ID,
			UserID:     dbN.UserID,
			Message:    dbN.Message,
			Kind:       expense.NotificationKind(dbN.Kind),
			IsRead:     dbN.IsRead,
			NotifiedAt: dbN.NotifiedAt,
		}
		if dbN.BudgetID.Valid {
			n.BudgetID = &dbN.BudgetID.String
		}
		if dbN.BudgetName.Valid {
			n.BudgetName = &dbN.BudgetName.String
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (mySql *MySQLStorage) GetUnreadNotifications(ctx context.Context, userID string) ([]expense.Notification, error) {
	return mySql.queryNotifications(ctx, notificationSelect+" WHERE n.user_id = ? AND n.is_read = 0 ORDER BY n.notified_at DESC;", userID)
}

func (mySql *MySQLStorage) GetRecentNotifications(ctx context.Context, userID string, limit int) ([]expense.Notification, error) {
	return mySql.queryNotifications(ctx, notificationSelect+" WHERE n.user_id = ? ORDER BY n.notified_at DESC LIMIT ?;", userID, limit)
}

func (mySql *MySQLStorage) MarkNotificationRead(ctx context.Context, userID string, notificationID string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "UPDATE notification SET is_read = 1 WHERE notification_id = ? AND user_id = ? AND is_read = 0;"
	res, err := mySql.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to mark notification read in Storage.MarkNotificationRead() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the notification, try again later.",
		}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.MarkNotificationRead() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update the notification, try again later.",
		}
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "Notification not found or user not authorized",
		}
	}
	return nil
}
