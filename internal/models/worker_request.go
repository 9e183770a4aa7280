package models

import (
	"database/sql"
	"time"
)

// WorkerRequest is the database representation of a worker's bid for a
// specific grievance.
type WorkerRequest struct {
	RequestID   string     `db:"request_id"`
	GrievanceID string     `db:"grievance_id"`
	WorkerID    string     `db:"worker_id"`
	Reason      string     `db:"reason"`
	Status      string     `db:"status"`
	RequestedAt time.Time  `db:"requested_at"`
	DecidedBy   *string    `db:"decided_by"`
	DecidedAt   *time.Time `db:"decided_at"`
}

// WorkerSignup is the database representation of a worker signup application.
type WorkerSignup struct {
	SignupID    string         `db:"signup_id"`
	WorkerID    string         `db:"worker_id"`
	Name        string         `db:"name"`
	Email       string         `db:"email"`
	Department  string         `db:"department"`
	Phone       sql.NullString `db:"phone"`
	Status      string         `db:"status"`
	RequestedAt time.Time      `db:"requested_at"`
	DecidedBy   *string        `db:"decided_by"`
	DecidedAt   *time.Time     `db:"decided_at"`
}
