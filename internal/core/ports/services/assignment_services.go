package services

import (
	"context"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// AssignmentSvcFacade binds a grievance to exactly one worker, either by
// direct admin assignment or through the request/approve protocol.
type AssignmentSvcFacade interface {
	// AssignWorker binds a worker to an unassigned grievance. A grievance
	// that already has a worker surfaces as apperrors.ErrAlreadyAssigned.
	AssignWorker(ctx context.Context, grievanceID, workerID, adminID string) error

	// RequestAccess files a worker's pending bid for an unassigned grievance.
	RequestAccess(ctx context.Context, grievanceID, workerID, reason string) (*domain.WorkerRequest, error)

	// ApproveRequest approves a pending bid. The unassigned precondition is
	// re-checked at approval time; losing the race surfaces as
	// apperrors.ErrAlreadyAssigned and marks the request Superseded.
	ApproveRequest(ctx context.Context, requestID, adminID string) error

	// DenyRequest rejects a pending bid. The grievance is untouched.
	DenyRequest(ctx context.Context, requestID, adminID string) error

	// ListRequestsByWorker retrieves a worker's request history.
	ListRequestsByWorker(ctx context.Context, workerID string) ([]domain.WorkerRequest, error)

	// ListPendingRequests retrieves all requests awaiting an admin decision.
	ListPendingRequests(ctx context.Context) ([]domain.WorkerRequest, error)
}
