package models

import "time"

// Grievance is the database representation of a grievance. The vote columns
// are text[] arrays of user IDs; the single-statement vote toggle keeps them
// mutually exclusive.
type Grievance struct {
	GrievanceID      string   `db:"grievance_id"`
	Title            string   `db:"title"`
	Description      string   `db:"description"`
	Category         string   `db:"category"`
	Priority         string   `db:"priority"`
	Status           string   `db:"status"`
	AssignedWorkerID *string  `db:"assigned_worker_id"`
	ReporterID       string   `db:"reporter_id"`
	IsPublic         bool     `db:"is_public"`
	Upvotes          []string `db:"upvotes"`
	Downvotes        []string `db:"downvotes"`
	AuditFields
}

// StatusLog is the database representation of one audit trail line.
type StatusLog struct {
	LogID       string    `db:"log_id"`
	GrievanceID string    `db:"grievance_id"`
	Status      string    `db:"status"`
	UpdatedBy   string    `db:"updated_by"`
	Remarks     string    `db:"remarks"`
	CreatedAt   time.Time `db:"created_at"`
}
