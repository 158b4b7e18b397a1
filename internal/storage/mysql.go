package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	appErrors "github.com/aysel-mammadli/expense_tracker/apperrors"
	"github.com/aysel-mammadli/expense_tracker/internal/auth"
	"github.com/aysel-mammadli/expense_tracker/internal/contextutil"
	"github.com/aysel-mammadli/expense_tracker/internal/expense"
	"github.com/aysel-mammadli/expense_tracker/logging"
	"github.com/go-sql-driver/mysql"
)

// --- INIT START --- //

func Init() (*sql.DB, error) {
	var db *sql.DB
	var err error
	var dbname string

	username := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	dbname = os.Getenv("DB_NAME")
	fullDsn := os.Getenv("FULL_DSN")

	if dbname == "" {
		dbname = "expense_tracker"
	}

	var adminDsn string
	if fullDsn != "" {
		parts := strings.Split(fullDsn, "/")
		adminDsn = strings.Join(parts[:len(parts)-1], "/") + "/"
	} else {
		if username == "" || password == "" || host == "" || port == "" {
			return nil, fmt.Errorf("missing required DB environment variables")
		}
		adminDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", username, password, host, port)
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %v", err)
	}
	connected := false
	for i := 0; i < 15; i++ {
		if err := adminDb.Ping(); err == nil {
			connected = true
			break
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/15)", i+1)
		time.Sleep(3 * time.Second)
	}
	if !connected {
		return nil, fmt.Errorf("database unreachable after multiple attempts")
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRow(checkDbnameExistQuery, dbname).Scan(&dbnameExistence)

	if err == sql.ErrNoRows {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.Exec(createDbSql); err != nil {
			adminDb.Close()
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	} else if err != nil {
		adminDb.Close()
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	adminDb.Close()

	var finalDsn string
	if fullDsn != "" {
		finalDsn = fullDsn
	} else {
		finalDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", username, password, host, port, dbname)
	}

	logging.Logger.Info("Connecting to database...")
	db, err = sql.Open("mysql", finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %v", err)
	}

	if _, err := db.Exec("SET GLOBAL time_zone = '+00:00'"); err != nil {
		logging.Logger.Warn("failed to set database timezone(UTC+0)")
	}

	logging.Logger.Info("Connected to database successfully")
	logging.Logger.Info("Running migrations...")

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrationFiles, err := getMigrationFiles("db/migrations")
	if err != nil {
		return fmt.Errorf("failed to get migration files: %v", err)
	}

	lastAppliedMigration, err := getLastAppliedMigration(db)
	if err != nil {
		return fmt.Errorf("failed to get last applied migration name: %v", err)
	}

	newMigrations := filterNewMigrations(migrationFiles, lastAppliedMigration)

	if len(newMigrations) == 0 {
		logging.Logger.Info("no new migration")
		return nil
	}

	for _, migrationFile := range newMigrations {
		logging.Logger.Info("applying migration: ", migrationFile)
		migrationContent, err := os.ReadFile(filepath.Join("db/migrations/", migrationFile))
		if err != nil {
			return fmt.Errorf("failed to read this '%s' migration file, error: %v", migrationFile, err)
		}

		err = applyMigration(db, migrationFile, string(migrationContent))
		if err != nil {
			return fmt.Errorf("failed to apply this '%s' migration file, error: %v", migrationFile, err)
		}
	}

	logging.Logger.Info("all migrations applied successfully")
	return nil
}

func getMigrationFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var migrationFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)
	return migrationFiles, nil
}

func getLastAppliedMigration(db *sql.DB) (string, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migration (
        id INT AUTO_INCREMENT PRIMARY KEY,
        migration_name VARCHAR(255) NOT NULL UNIQUE,
        applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`)

	if err != nil {
		return "", err
	}

	var lastMigration string
	err = db.QueryRow("SELECT migration_name FROM migration ORDER BY migration_name DESC LIMIT 1").Scan(&lastMigration)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return lastMigration, err
}

func filterNewMigrations(all []string, lastApplied string) []string {
	if lastApplied == "" {
		return all
	}

	var result []string
	for _, migration := range all {
		if migration > lastApplied {
			result = append(result, migration)
		}
	}
	return result
}

func applyMigration(db *sql.DB, name, sqlContent string) error {
	txn, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	statements := strings.Split(sqlContent, ";")

	for _, statement := range statements {
		trimmedStmt := strings.TrimSpace(statement)
		if trimmedStmt == "" {
			continue
		}

		if _, err := txn.Exec(trimmedStmt); err != nil {
			txn.Rollback()
			return fmt.Errorf("migration statement failed: %w\nStatement: %s", err, trimmedStmt)
		}
	}

	if _, err := txn.Exec("INSERT INTO migration (migration_name) VALUES (?)", name); err != nil {
		txn.Rollback()
		return fmt.Errorf("failed to record migration name: %w", err)
	}

	return txn.Commit()
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
	// When set, a reconcile only writes a notification if the spent total
	// crossed into a higher threshold band, instead of on every reconcile
	// that lands at or above 90%.
	notifyOnCrossingOnly bool
}

func NewMySQLStorage(db *sql.DB, notifyOnCrossingOnly bool) *MySQLStorage {
	return &MySQLStorage{db: db, notifyOnCrossingOnly: notifyOnCrossingOnly}
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "MySQL"
}

func (mySql *MySQLStorage) SaveUser(ctx context.Context, user auth.User) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO user (user_id, name, email, hashed_password, phone, role, created_at) VALUES (?, ?, ?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHashed, user.Phone, user.Role, user.CreatedAt)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "User already exists.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save user in Storage.SaveUser() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Registration failed, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT user_id, name, email, hashed_password, phone, role, created_at FROM user WHERE email = ?;"

	var user auth.User
	err := mySql.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHashed,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrAuth,
				Message: "Invalid credentials",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get user in Storage.GetUserByEmail() function | Error: %v", traceID, err)
		return auth.User{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to log in, try again later.",
		}
	}
	return user, nil
}

func (mySql *MySQLStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var one int
	err := mySql.db.QueryRowContext(ctx, "SELECT 1 FROM user WHERE email = ?;", email).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to check email in Storage.IsEmailTaken() function | Error: %v", traceID, err)
		return false, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Registration failed, try again later.",
		}
	}
	return true, nil
}

func (mySql *MySQLStorage) GetAccountInfo(ctx context.Context, userID string) (expense.AccountInfo, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT user_id, name, email, phone, role, created_at FROM user WHERE user_id = ?;"

	var info expense.AccountInfo
	var phone sql.NullString
	err := mySql.db.QueryRowContext(ctx, query, userID).Scan(&info.UserID, &info.Name, &info.Email, &phone, &info.Role, &info.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return expense.AccountInfo{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "User not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get account info in Storage.GetAccountInfo() function | Error: %v", traceID, err)
		return expense.AccountInfo{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to get account info, try again later.",
		}
	}
	info.Phone = phone.String
	return info, nil
}

func (mySql *MySQLStorage) UpdateUserProfile(ctx context.Context, userID string, fields auth.ProfileUpdate) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	setClauses := []string{}
	args := []any{}

	if fields.NewName != "" {
		setClauses = append(setClauses, "name = ?")
		args = append(args, fields.NewName)
	}
	if fields.NewEmail != "" {
		setClauses = append(setClauses, "email = ?")
		args = append(args, fields.NewEmail)
	}
	if fields.NewPhone != "" {
		setClauses = append(setClauses, "phone = ?")
		args = append(args, fields.NewPhone)
	}
	if fields.PasswordPlain != "" {
		hashed, err := auth.HashPassword(fields.PasswordPlain)
		if err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to hash password in Storage.UpdateUserProfile() function | Error: %v", traceID, err)
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrInternal,
				Message: "Failed to update profile, try again later.",
			}
		}
		setClauses = append(setClauses, "hashed_password = ?")
		args = append(args, hashed)
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE user SET %s WHERE user_id = ?;", strings.Join(setClauses, ", "))
	args = append(args, userID)

	res, err := mySql.db.ExecContext(ctx, query, args...)
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "Email already in use.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to update profile in Storage.UpdateUserProfile() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update profile, try again later.",
		}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.UpdateUserProfile() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to update profile, try again later.",
		}
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "User not found",
		}
	}
	return nil
}

// --- SESSIONS --- //

func (mySql *MySQLStorage) SaveSession(ctx context.Context, session auth.Session) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO session (session_id, token, created_at, expire_at, user_id) VALUES (?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, session.ID, session.Token, session.CreatedAt, session.ExpireAt, session.UserID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save session in Storage.SaveSession() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to create session, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	query := "SELECT session_id, token, created_at, expire_at, user_id FROM session WHERE token = ?;"
	var dbS dbSession

	err := mySql.db.QueryRowContext(ctx, query, token).Scan(
		&dbS.ID,
		&dbS.Token,
		&dbS.CreatedAt,
		&dbS.ExpireAt,
		&dbS.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Session{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrAuth,
				Message: "Session does not exist, please login.",
			}
		}
		return auth.Session{}, err
	}

	return auth.Session{
		ID:        dbS.ID,
		Token:     dbS.Token,
		CreatedAt: dbS.CreatedAt,
		ExpireAt:  dbS.ExpireAt,
		UserID:    dbS.UserID,
	}, nil
}

func (mySql *MySQLStorage) CheckSession(ctx context.Context, token string) (string, error) {
	query := "SELECT user_id, expire_at FROM session WHERE token = ?;"

	var userID string
	var expireAt time.Time
	traceID := contextutil.TraceIDFromContext(ctx)

	err := mySql.db.QueryRowContext(ctx, query, token).Scan(&userID, &expireAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.ErrorResponse{
				Code:    appErrors.ErrAuth,
				Message: "Session does not exist, please login.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to check session existence in Storage.CheckSession() function | Error: %v", traceID, err)
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to check session, please try again later.",
		}
	}

	now := time.Now().UTC()
	if expireAt.Before(now) {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Your session expired, please login again.",
		}
	}

	return userID, nil
}

func (mySql *MySQLStorage) UpdateSession(ctx context.Context, userID string, newExpireDate time.Time) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "UPDATE session SET expire_at = ? WHERE user_id = ?;"
	res, err := mySql.db.ExecContext(ctx, query, newExpireDate, userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update session in Storage.UpdateSession() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to check session, please try again later.",
		}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.UpdateSession() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to check session, please try again later.",
		}
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) LogoutUser(ctx context.Context, userID string, token string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "DELETE FROM session WHERE user_id = ? AND token = ?;"
	res, err := mySql.db.ExecContext(ctx, query, userID, token)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete session in Storage.LogoutUser() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to log out, try again later.",
		}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.LogoutUser() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to log out, try again later.",
		}
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	return nil
}

// --- EMAIL OTP --- //

func (mySql *MySQLStorage) UpsertEmailOTP(ctx context.Context, otp auth.EmailOTP) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `INSERT INTO email_otp (email, otp_code, verified, created_at, expires_at)
		VALUES (?, ?, 0, ?, ?)
		ON DUPLICATE KEY UPDATE otp_code = VALUES(otp_code), verified = 0, created_at = VALUES(created_at), expires_at = VALUES(expires_at);`
	_, err := mySql.db.ExecContext(ctx, query, otp.Email, otp.Code, otp.CreatedAt, otp.ExpiresAt)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save otp in Storage.UpsertEmailOTP() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to send OTP, try again later.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) GetEmailOTP(ctx context.Context, email string) (auth.EmailOTP, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT email, otp_code, verified, created_at, expires_at FROM email_otp WHERE email = ?;"

	var otp auth.EmailOTP
	err := mySql.db.QueryRowContext(ctx, query, email).Scan(&otp.Email, &otp.Code, &otp.Verified, &otp.CreatedAt, &otp.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.EmailOTP{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "OTP not found",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get otp in Storage.GetEmailOTP() function | Error: %v", traceID, err)
		return auth.EmailOTP{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to verify OTP, try again later.",
		}
	}
	return otp, nil
}

func (mySql *MySQLStorage) MarkEmailOTPVerified(ctx context.Context, email string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	res, err := mySql.db.ExecContext(ctx, "UPDATE email_otp SET verified = 1 WHERE email = ?;", email)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to mark otp verified in Storage.MarkEmailOTPVerified() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to verify OTP, try again later.",
		}
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.MarkEmailOTPVerified() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Failed to verify OTP, try again later.",
		}
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "OTP not found",
		}
	}
	return nil
}

func (mySql *MySQLStorage) DeleteEmailOTP(ctx context.Context, email string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	_, err := mySql.db.ExecContext(ctx, "DELETE FROM email_otp WHERE email = ?;", email)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete otp in Storage.DeleteEmailOTP() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: "Registration failed, try again later.",
		}
	}
	return nil
}
