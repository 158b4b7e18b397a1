package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func seedStorage(t *testing.T, notifyOnCrossingOnly bool) (*InMemoryStorage, string, string) {
	t.Helper()
	s := NewInMemoryStorage(notifyOnCrossingOnly)
	ctx := context.Background()

	require.NoError(t, s.SaveExpenseType(ctx, expense.ExpenseType{ID: "type-1", Name: "Groceries"}))

	userID := "user-1"
	budgetID := "budget-1"
	_, err := s.SaveBudget(ctx, expense.Budget{
		ID:        budgetID,
		UserID:    userID,
		TypeID:    "type-1",
		Name:      "Groceries",
		Limit:     decimal.RequireFromString("100"),
		Spent:     decimal.Zero,
		StartDate: time.Now().UTC(),
		EndDate:   time.Now().UTC().AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	return s, userID, budgetID
}

func addExpense(t *testing.T, s *InMemoryStorage, userID, budgetID, id, amount string) {
	t.Helper()
	bid := budgetID
	var link *string
	if budgetID != "" {
		link = &bid
	}
	_, err := s.SaveExpense(context.Background(), expense.Expense{
		ID:       id,
		UserID:   userID,
		TypeID:   "type-1",
		Amount:   decimal.RequireFromString(amount),
		Date:     time.Now().UTC(),
		BudgetID: link,
	})
	require.NoError(t, err)
}

func spentOf(t *testing.T, s *InMemoryStorage, userID, budgetID string) decimal.Decimal {
	t.Helper()
	b, err := s.GetBudgetByID(context.Background(), userID, budgetID)
	require.NoError(t, err)
	return b.Spent
}

func TestSpentTracksExpenseSum(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "30")
	assert.True(t, spentOf(t, s, userID, budgetID).Equal(decimal.RequireFromString("30")))

	addExpense(t, s, userID, budgetID, "e2", "12.55")
	assert.True(t, spentOf(t, s, userID, budgetID).Equal(decimal.RequireFromString("42.55")))

	bid := budgetID
	_, err := s.UpdateExpense(ctx, userID, expense.UpdateExpenseRequest{
		ID:          "e1",
		NewTypeID:   "type-1",
		NewAmount:   decimal.RequireFromString("50"),
		NewDate:     time.Now().UTC(),
		NewBudgetID: &bid,
	})
	require.NoError(t, err)
	assert.True(t, spentOf(t, s, userID, budgetID).Equal(decimal.RequireFromString("62.55")))

	require.NoError(t, s.DeleteExpense(ctx, userID, "e2"))
	assert.True(t, spentOf(t, s, userID, budgetID).Equal(decimal.RequireFromString("50")))
}

func TestThresholdNotifications(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	// 89.99 stays silent.
	addExpense(t, s, userID, budgetID, "e1", "89.99")
	unread, err := s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// Exactly 90 fires an info notification.
	_, err = s.UpdateExpense(ctx, userID, expense.UpdateExpenseRequest{
		ID:          "e1",
		NewTypeID:   "type-1",
		NewAmount:   decimal.RequireFromString("90"),
		NewDate:     time.Now().UTC(),
		NewBudgetID: &budgetID,
	})
	require.NoError(t, err)

	unread, err = s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, expense.NotificationInfo, unread[0].Kind)
	assert.Equal(t, `Budget "Groceries" has reached 90% of the limit (100).`, unread[0].Message)

	// Exactly the limit fires a warning.
	addExpense(t, s, userID, budgetID, "e2", "10")
	unread, err = s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, expense.NotificationWarning, unread[0].Kind)
	assert.Equal(t, `Budget "Groceries" has exceeded the limit of 100.`, unread[0].Message)
}

func TestCrossingOnlySuppressesRepeats(t *testing.T) {
	s, userID, budgetID := seedStorage(t, true)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "95")
	addExpense(t, s, userID, budgetID, "e2", "1")
	addExpense(t, s, userID, budgetID, "e3", "1")

	unread, err := s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	// Only the first crossing into the 90% band fired.
	require.Len(t, unread, 1)
	assert.Equal(t, expense.NotificationInfo, unread[0].Kind)
}

func TestExpenseReassignmentReconcilesBothBudgets(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	otherID := "budget-2"
	_, err := s.SaveBudget(ctx, expense.Budget{
		ID:        otherID,
		UserID:    userID,
		TypeID:    "type-1",
		Name:      "Travel",
		Limit:     decimal.RequireFromString("1000"),
		StartDate: time.Now().UTC(),
		EndDate:   time.Now().UTC().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	addExpense(t, s, userID, budgetID, "e1", "40")
	require.True(t, spentOf(t, s, userID, budgetID).Equal(decimal.RequireFromString("40")))

	_, err = s.UpdateExpense(ctx, userID, expense.UpdateExpenseRequest{
		ID:          "e1",
		NewTypeID:   "type-1",
		NewAmount:   decimal.RequireFromString("40"),
		NewDate:     time.Now().UTC(),
		NewBudgetID: &otherID,
	})
	require.NoError(t, err)

	assert.True(t, spentOf(t, s, userID, budgetID).IsZero(), "source budget must drop to zero")
	assert.True(t, spentOf(t, s, userID, otherID).Equal(decimal.RequireFromString("40")), "target budget must absorb the expense")
}

func TestDetachingExpenseReconciles(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "40")

	// Reassigning to no budget leaves the expense alive but unlinked.
	_, err := s.UpdateExpense(ctx, userID, expense.UpdateExpenseRequest{
		ID:        "e1",
		NewTypeID: "type-1",
		NewAmount: decimal.RequireFromString("40"),
		NewDate:   time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.True(t, spentOf(t, s, userID, budgetID).IsZero())
	got, err := s.GetExpenseByID(ctx, userID, "e1")
	require.NoError(t, err)
	assert.Nil(t, got.BudgetID)
}

func TestDeleteBudgetDetachesExpenses(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "40")
	addExpense(t, s, userID, budgetID, "e2", "60")

	require.NoError(t, s.DeleteBudget(ctx, userID, budgetID))

	_, err := s.GetBudgetByID(ctx, userID, budgetID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))

	expenses, err := s.GetExpenses(ctx, userID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	for _, e := range expenses {
		assert.Nil(t, e.BudgetID)
	}

	totals, err := s.CategoryTotals(ctx, userID)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].Total.Equal(decimal.RequireFromString("100")))
}

func TestConcurrentExpensesSettleExactly(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		id := fmt.Sprintf("e%d", i)
		g.Go(func() error {
			bid := budgetID
			_, err := s.SaveExpense(ctx, expense.Expense{
				ID:       id,
				UserID:   userID,
				TypeID:   "type-1",
				Amount:   decimal.RequireFromString("60"),
				Date:     time.Now().UTC(),
				BudgetID: &bid,
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.True(t, spentOf(t, s, userID, budgetID).Equal(decimal.RequireFromString("120")))

	unread, err := s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, unread)
	assert.Equal(t, expense.NotificationWarning, unread[0].Kind)
}

func TestMarkNotificationReadScopedToOwner(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "100")
	unread, err := s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	err = s.MarkNotificationRead(ctx, "user-2", unread[0].ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
	assert.Contains(t, err.Error(), "Notification not found or user not authorized")

	require.NoError(t, s.MarkNotificationRead(ctx, userID, unread[0].ID))
	unread, err = s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMonthlyTotalsAreYearAware(t *testing.T) {
	s, userID, _ := seedStorage(t, false)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		_, err := s.SaveExpense(ctx, expense.Expense{
			ID:     fmt.Sprintf("e%d", i),
			UserID: userID,
			TypeID: "type-1",
			Amount: decimal.RequireFromString("10"),
			Date:   d,
		})
		require.NoError(t, err)
	}

	totals, err := s.MonthlyTotals(ctx, userID)
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.Equal(t, 2026, totals[0].Year)
	assert.Equal(t, time.January, totals[0].Month)
	assert.Equal(t, "Jan", totals[0].Label)
	assert.True(t, totals[0].Total.Equal(decimal.RequireFromString("20")))

	assert.Equal(t, 2025, totals[1].Year)
	assert.Equal(t, time.December, totals[1].Month)

	assert.Equal(t, 2025, totals[2].Year)
	assert.Equal(t, time.January, totals[2].Month)
	assert.True(t, totals[2].Total.Equal(decimal.RequireFromString("10")))
}

func TestExpenseWindow(t *testing.T) {
	s, userID, _ := seedStorage(t, false)
	ctx := context.Background()

	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	entries := []struct {
		id     string
		date   time.Time
		amount string
	}{
		{"e1", now, "40"},
		{"e2", now.AddDate(0, 0, -10), "60"},
		{"e3", now.AddDate(0, -1, 0), "200"},
		{"e4", now.AddDate(0, -3, 0), "999"},
	}
	for _, entry := range entries {
		_, err := s.SaveExpense(ctx, expense.Expense{
			ID:     entry.id,
			UserID: userID,
			TypeID: "type-1",
			Amount: decimal.RequireFromString(entry.amount),
			Date:   entry.date,
		})
		require.NoError(t, err)
	}

	current, previous, err := s.ExpenseWindow(ctx, userID, now)
	require.NoError(t, err)
	assert.True(t, current.Equal(decimal.RequireFromString("100")))
	assert.True(t, previous.Equal(decimal.RequireFromString("200")))
}

func TestBudgetLimitShrinkFiresNotification(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "50")
	unread, err := s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, unread)

	// Halving the limit puts the existing spending over it.
	_, err = s.UpdateBudget(ctx, userID, expense.UpdateBudgetRequest{
		ID:        budgetID,
		NewTypeID: "type-1",
		NewName:   "Groceries",
		NewLimit:  decimal.RequireFromString("50"),
		NewStart:  time.Now().UTC(),
		NewEnd:    time.Now().UTC().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	unread, err = s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, expense.NotificationWarning, unread[0].Kind)
	assert.Equal(t, `Budget "Groceries" has exceeded the limit of 50.`, unread[0].Message)
}

func TestExpenseCannotLinkForeignBudget(t *testing.T) {
	s, ownerID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	bid := budgetID
	_, err := s.SaveExpense(ctx, expense.Expense{
		ID:       "e1",
		UserID:   "user-2",
		TypeID:   "type-1",
		Amount:   decimal.RequireFromString("95"),
		Date:     time.Now().UTC(),
		BudgetID: &bid,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
	assert.Contains(t, err.Error(), "Budget not found")

	// The owner's derived state must be untouched: no spend, no notification.
	assert.True(t, spentOf(t, s, ownerID, budgetID).IsZero())
	unread, err := s.GetUnreadNotifications(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, unread)

	// The update path is closed the same way.
	addExpense(t, s, "user-2", "", "e2", "95")
	_, err = s.UpdateExpense(ctx, "user-2", expense.UpdateExpenseRequest{
		ID:          "e2",
		NewTypeID:   "type-1",
		NewAmount:   decimal.RequireFromString("95"),
		NewDate:     time.Now().UTC(),
		NewBudgetID: &bid,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
	assert.True(t, spentOf(t, s, ownerID, budgetID).IsZero())
}

func TestMarkNotificationReadIsSingleShot(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "100")
	unread, err := s.GetUnreadNotifications(ctx, userID)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	require.NoError(t, s.MarkNotificationRead(ctx, userID, unread[0].ID))

	err = s.MarkNotificationRead(ctx, userID, unread[0].ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
}

func TestUpdateBudgetResponseCarriesReconciledState(t *testing.T) {
	s, userID, budgetID := seedStorage(t, false)
	ctx := context.Background()

	addExpense(t, s, userID, budgetID, "e1", "30")

	updated, err := s.UpdateBudget(ctx, userID, expense.UpdateBudgetRequest{
		ID:        budgetID,
		NewTypeID: "type-1",
		NewName:   "Groceries",
		NewLimit:  decimal.RequireFromString("80"),
		NewStart:  time.Now().UTC(),
		NewEnd:    time.Now().UTC().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	// The response is the row as written: new limit plus the spent total
	// recomputed in the same critical section, not a later re-read.
	assert.True(t, updated.Limit.Equal(decimal.RequireFromString("80")))
	assert.True(t, updated.Spent.Equal(decimal.RequireFromString("30")))
}
