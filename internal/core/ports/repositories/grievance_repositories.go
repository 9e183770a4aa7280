package repositories

import (
	"context"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// GrievanceReader defines read operations for grievance data
type GrievanceReader interface {
	// FindGrievanceByID retrieves a specific grievance by its unique identifier.
	FindGrievanceByID(ctx context.Context, grievanceID string) (*domain.Grievance, error)

	// ListGrievancesByReporter retrieves all grievances submitted by a citizen.
	ListGrievancesByReporter(ctx context.Context, reporterID string) ([]domain.Grievance, error)

	// ListUnassignedGrievances retrieves grievances with no worker bound.
	ListUnassignedGrievances(ctx context.Context) ([]domain.Grievance, error)

	// ListGrievancesByWorker retrieves grievances assigned to the given worker.
	ListGrievancesByWorker(ctx context.Context, workerID string) ([]domain.Grievance, error)

	// ListPublicGrievances retrieves a paginated list of publicly visible
	// grievances using token-based pagination. It returns the grievances, a
	// token for the next page, and an error.
	ListPublicGrievances(ctx context.Context, limit int, nextToken *string) ([]domain.Grievance, *string, error)

	// CountOpenGrievancesByWorker returns, per worker ID, the number of
	// assigned grievances that are not yet closed.
	CountOpenGrievancesByWorker(ctx context.Context, workerIDs []string) (map[string]int, error)
}

// GrievanceWriter defines write operations for grievance data. Every method
// that changes a status performs the grievance update and the paired status
// log append within a single database transaction.
type GrievanceWriter interface {
	// SaveGrievanceWithLog persists a new grievance together with its initial
	// Submitted log entry.
	SaveGrievanceWithLog(ctx context.Context, grievance domain.Grievance, log domain.StatusLogEntry) error

	// UpdateStatusWithLog moves a grievance from the expected current status to
	// the next one and appends the paired log entry. The update is
	// compare-and-set on the current status; a concurrent move surfaces as
	// apperrors.ErrConflict.
	UpdateStatusWithLog(ctx context.Context, grievanceID string, from, to domain.GrievanceStatus, log domain.StatusLogEntry, updatedBy string, updatedAt time.Time) error

	// AssignGrievanceWithLog binds a worker to an unassigned grievance, sets
	// status Assigned and appends the paired log entry. The bind is
	// compare-and-set on assigned_worker_id IS NULL; losing the race surfaces
	// as apperrors.ErrAlreadyAssigned. When approveRequestID is non-nil the
	// same transaction flips that worker request from Pending to Approved.
	AssignGrievanceWithLog(ctx context.Context, grievanceID, workerID string, log domain.StatusLogEntry, approveRequestID *string, decidedBy string, decidedAt time.Time) error

	// AppendStatusLog appends a log entry without touching the grievance row.
	// Used for progress notes once work is already in progress.
	AppendStatusLog(ctx context.Context, log domain.StatusLogEntry) error

	// ApplyVote toggles the voter's membership in the vote sets as one atomic
	// update and returns the grievance as it stands afterwards.
	ApplyVote(ctx context.Context, grievanceID, voterID string, direction domain.VoteDirection, updatedAt time.Time) (*domain.Grievance, error)

	// DeleteGrievance removes a grievance owned by the given reporter.
	DeleteGrievance(ctx context.Context, grievanceID, reporterID string) error
}

// StatusLogReader defines read operations over the audit trail
type StatusLogReader interface {
	// FindStatusLogsByGrievanceID retrieves the audit trail for a grievance in
	// chronological order.
	FindStatusLogsByGrievanceID(ctx context.Context, grievanceID string) ([]domain.StatusLogEntry, error)
}

// GrievanceRepository combines all grievance-related repository interfaces
type GrievanceRepository interface {
	GrievanceReader
	GrievanceWriter
	StatusLogReader
}
