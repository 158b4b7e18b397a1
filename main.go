package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/0xcafe-io/iz"
	"github.com/aysel-mammadli/expense_tracker/api"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/aysel-mammadli/expense_tracker/internal/mail"
	"github.com/aysel-mammadli/expense_tracker/internal/storage"
	"github.com/aysel-mammadli/expense_tracker/logging"
	"github.com/rs/cors"
)

var et expense.ExpenseTracker // Global

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func main() {
	if err := logging.Init("debug"); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return
	}

	logging.Logger.Info("application starting...")

	notifyOnCrossingOnly := os.Getenv("NOTIFY_ON_CROSSING_ONLY") == "true"

	var storageInstance expense.Storage
	if os.Getenv("STORAGE") == "inmemory" {
		logging.Logger.Warn("using in-memory storage, data will not survive a restart")
		storageInstance = storage.NewInMemoryStorage(notifyOnCrossingOnly)
	} else {
		db, err := storage.Init()
		if err != nil {
			logging.Logger.Errorf("failed to initialize database: %v", err)
			return
		}
		storageInstance = storage.NewMySQLStorage(db, notifyOnCrossingOnly)
	}

	et = expense.NewExpenseTracker(storageInstance, mail.NewMailerFromEnv())

	server := http.NewServeMux()
	api := api.NewApi(&et)

	// USER ENDPOINTS.
	server.HandleFunc("POST /api/register", iz.Bind(api.RegisterUserHandler))  // Create User
	server.HandleFunc("POST /api/login", iz.Bind(api.LoginUserHandler))        // Login User
	server.HandleFunc("GET /api/logout", iz.Bind(api.LogoutUserHandler))       // Logout User
	server.HandleFunc("GET /api/check-token", iz.Bind(api.CheckTokenHandler))  // Check User Token
	server.HandleFunc("GET /api/account", iz.Bind(api.GetAccountInfoHandler))  // Account Info
	server.HandleFunc("PUT /api/account", iz.Bind(api.UpdateProfileHandler))   // Update Profile
	server.HandleFunc("POST /api/send-otp", iz.Bind(api.SendOTPHandler))       // Send Email OTP
	server.HandleFunc("POST /api/verify-otp", iz.Bind(api.VerifyOTPHandler))   // Verify Email OTP

	// EXPENSE TYPE ENDPOINTS.
	server.HandleFunc("POST /api/expense-types", iz.Bind(api.SaveExpenseTypeHandler)) // Create Expense Type
	server.HandleFunc("GET /api/expense-types", iz.Bind(api.ListExpenseTypesHandler)) // List Expense Types

	// BUDGET ENDPOINTS.
	server.HandleFunc("POST /api/budgets", iz.Bind(api.SaveBudgetHandler))                       // Create Budget
	server.HandleFunc("GET /api/budgets", iz.Bind(api.GetBudgetsHandler))                        // List Budgets
	server.HandleFunc("GET /api/budgets/names", iz.Bind(api.ListBudgetNamesHandler))             // Budget Names for pickers
	server.HandleFunc("GET /api/budgets/summary", iz.Bind(api.BudgetSummaryHandler))             // Limits and spending per category
	server.HandleFunc("GET /api/budgets/total", iz.Bind(api.TotalBudgetHandler))                 // Current month total with trend
	server.HandleFunc("GET /api/budgets/remaining", iz.Bind(api.RemainingBudgetHandler))         // Current month remaining with trend
	server.HandleFunc("GET /api/budgets/{id}", iz.Bind(api.GetBudgetByIDHandler))                // Get Budget by ID
	server.HandleFunc("PUT /api/budgets/{id}", iz.Bind(api.UpdateBudgetHandler))                 // Update Budget
	server.HandleFunc("DELETE /api/budgets/{id}", iz.Bind(api.DeleteBudgetHandler))              // Delete Budget
	server.HandleFunc("POST /api/budgets/{id}/reconcile", iz.Bind(api.ReconcileBudgetHandler))   // Recompute spent total

	// EXPENSE ENDPOINTS.
	server.HandleFunc("POST /api/expenses", iz.Bind(api.SaveExpenseHandler))                 // Create Expense
	server.HandleFunc("GET /api/expenses", iz.Bind(api.GetExpensesHandler))                  // List Expenses
	server.HandleFunc("GET /api/expenses/recent", iz.Bind(api.RecentExpensesHandler))        // Most recent expenses
	server.HandleFunc("GET /api/expenses/monthly", iz.Bind(api.MonthlyExpensesHandler))      // Monthly totals
	server.HandleFunc("GET /api/expenses/categories", iz.Bind(api.CategoryTotalsHandler))    // Totals per category
	server.HandleFunc("GET /api/expenses/total", iz.Bind(api.TotalExpensesHandler))          // Current month total with trend
	server.HandleFunc("GET /api/expenses/{id}", iz.Bind(api.GetExpenseByIDHandler))          // Get Expense by ID
	server.HandleFunc("PUT /api/expenses/{id}", iz.Bind(api.UpdateExpenseHandler))           // Update Expense
	server.HandleFunc("DELETE /api/expenses/{id}", iz.Bind(api.DeleteExpenseHandler))        // Delete Expense

	// NOTIFICATION ENDPOINTS.
	server.HandleFunc("GET /api/notifications/unread", iz.Bind(api.UnreadNotificationsHandler))     // Unread notifications
	server.HandleFunc("GET /api/notifications/recent", iz.Bind(api.RecentNotificationsHandler))     // Recent notifications
	server.HandleFunc("PUT /api/notifications/{id}/read", iz.Bind(api.MarkNotificationReadHandler)) // Mark notification read

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(server)
	if err := http.ListenAndServe(":"+port, handlerWithCors); err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}
