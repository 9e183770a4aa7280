package services

import (
	"context"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
)

// OnboardingSvcFacade turns a signup application into an active WORKER role
// and gates sign-in for accounts that are not there yet.
type OnboardingSvcFacade interface {
	// RegisterWorker creates a WORKER_PENDING account together with its
	// pending signup application.
	RegisterWorker(ctx context.Context, req dto.RegisterWorkerRequest) (*domain.User, error)

	// ApproveSignup promotes the applicant to WORKER and marks the signup
	// Approved, atomically.
	ApproveSignup(ctx context.Context, signupID, adminID string) error

	// RejectSignup marks the signup Rejected; the account keeps WORKER_PENDING.
	RejectSignup(ctx context.Context, signupID, adminID string) error

	// ListSignups retrieves signup applications in the given state.
	ListSignups(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerSignupRequest, error)

	// AuthorizePortal decides whether the user may sign in on the given
	// portal and returns the effective role. For the worker portal this
	// includes the self-healing reconciliation: a WORKER_PENDING account with
	// an Approved signup is promoted before access is granted. A still
	// pending worker surfaces as ErrPendingApproval; a role that does not
	// match the portal surfaces as ErrWrongPortal.
	AuthorizePortal(ctx context.Context, user *domain.User, portal dto.Portal) (domain.Role, error)
}
