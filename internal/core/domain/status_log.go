package domain

import "time"

// StatusLogEntry is one line of the append-only audit trail for a grievance.
// Exactly one entry is written alongside every legal status transition;
// progress notes append entries carrying the unchanged current status.
type StatusLogEntry struct {
	LogID       string          `json:"logID"` // Primary Key (UUID)
	GrievanceID string          `json:"grievanceID"`
	Status      GrievanceStatus `json:"status"`
	UpdatedBy   string          `json:"updatedBy"` // UserID Reference
	Remarks     string          `json:"remarks"`
	CreatedAt   time.Time       `json:"createdAt"`
}
