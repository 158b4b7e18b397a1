package storage

import (
	"database/sql"
	"time"
)

type dbSession struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	UserID    string
}

type dbNotification struct {
	ID         string
	UserID     string
	BudgetID   sql.NullString
	BudgetName sql.NullString
	Message    string
	Kind       string
	IsRead     bool
	NotifiedAt time.Time
}
