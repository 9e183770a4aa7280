package repositories

import (
	"context"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// WorkerRequestRepository defines operations over worker access requests.
type WorkerRequestRepository interface {
	// SaveWorkerRequest persists a new pending access request.
	SaveWorkerRequest(ctx context.Context, request domain.WorkerRequest) error

	// FindWorkerRequestByID retrieves a specific access request.
	FindWorkerRequestByID(ctx context.Context, requestID string) (*domain.WorkerRequest, error)

	// FindPendingRequest retrieves the pending request a worker holds against a
	// grievance, if any.
	FindPendingRequest(ctx context.Context, grievanceID, workerID string) (*domain.WorkerRequest, error)

	// ListWorkerRequestsByWorker retrieves a worker's request history.
	ListWorkerRequestsByWorker(ctx context.Context, workerID string) ([]domain.WorkerRequest, error)

	// ListWorkerRequestsByStatus retrieves all requests in the given state.
	ListWorkerRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerRequest, error)

	// MarkWorkerRequestDecided moves a request out of Pending. The update is
	// compare-and-set on the Pending status so a request is terminal at most
	// once; a second decision surfaces as apperrors.ErrConflict.
	MarkWorkerRequestDecided(ctx context.Context, requestID string, status domain.RequestStatus, decidedBy string, decidedAt time.Time) error
}

// SignupRepository defines operations over worker signup applications.
type SignupRepository interface {
	// CreateWorkerWithSignup persists the provisional WORKER_PENDING account
	// and its signup application within a single transaction.
	CreateWorkerWithSignup(ctx context.Context, user domain.User, signup domain.WorkerSignupRequest) error

	// FindSignupByID retrieves a specific signup application.
	FindSignupByID(ctx context.Context, signupID string) (*domain.WorkerSignupRequest, error)

	// FindSignupByWorkerID retrieves the signup application for an account.
	FindSignupByWorkerID(ctx context.Context, workerID string) (*domain.WorkerSignupRequest, error)

	// ListSignupsByStatus retrieves all signup applications in the given state.
	ListSignupsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerSignupRequest, error)

	// ApproveSignupAndPromote flips the signup from Pending to Approved and
	// sets the account role to WORKER, both within a single transaction. A
	// signup already decided surfaces as apperrors.ErrConflict.
	ApproveSignupAndPromote(ctx context.Context, signupID, adminID string, decidedAt time.Time) error

	// RejectSignup flips the signup from Pending to Rejected. The account role
	// is left untouched.
	RejectSignup(ctx context.Context, signupID, adminID string, decidedAt time.Time) error
}
