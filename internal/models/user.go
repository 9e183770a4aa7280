package models

import (
	"database/sql"
	"time"
)

// User is the database representation of an account.
type User struct {
	UserID       string         `db:"user_id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Role         string         `db:"role"`
	Department   sql.NullString `db:"department"`
	PasswordHash string         `db:"password_hash"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
