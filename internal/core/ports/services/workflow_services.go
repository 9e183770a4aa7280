package services

import (
	"context"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// WorkflowSvcFacade owns the legal state graph for a grievance and the
// append-only audit trail of transitions.
type WorkflowSvcFacade interface {
	// ApplyTransition moves a grievance to nextStatus if that edge is legal
	// for the acting user. The status update and the paired log entry are one
	// atomic unit. Illegal edges surface as apperrors.ErrIllegalTransition;
	// actors other than the assigned worker (for work-status changes) or an
	// administrator (for closing) surface as apperrors.ErrForbidden.
	ApplyTransition(ctx context.Context, grievanceID string, nextStatus domain.GrievanceStatus, actorID, remarks string) (*domain.Grievance, error)

	// AddProgressNote appends a worker's free-text note to the audit trail.
	// A note on a grievance still in Assigned performs the explicit
	// Assigned -> In Progress transition carrying the note as remarks.
	AddProgressNote(ctx context.Context, grievanceID, workerID, note string) (*domain.Grievance, error)
}
