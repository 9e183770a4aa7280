package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/civicworks/grievance_redressal_app/internal/apperrors"
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portsrepo "github.com/civicworks/grievance_redressal_app/internal/core/ports/repositories"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
	"github.com/civicworks/grievance_redressal_app/internal/middleware"
	"github.com/civicworks/grievance_redressal_app/internal/realtime"
	"github.com/civicworks/grievance_redressal_app/internal/utils"
)

var (
	// ErrPendingApproval is returned when a worker signs in before their
	// signup application has been approved.
	ErrPendingApproval = errors.New("worker account pending approval")

	// ErrSignupRejected is returned when a worker whose application was
	// rejected attempts to sign in.
	ErrSignupRejected = errors.New("worker signup was rejected")

	// ErrWrongPortal is returned when an account signs in on a portal that
	// does not match its role.
	ErrWrongPortal = errors.New("account role does not match portal")
)

// onboardingService turns signup applications into active WORKER roles and
// gates sign-in until then.
type onboardingService struct {
	userRepo   portsrepo.UserRepository
	signupRepo portsrepo.SignupRepository
	hub        *realtime.Hub
}

// NewOnboardingService creates a new OnboardingService.
func NewOnboardingService(userRepo portsrepo.UserRepository, signupRepo portsrepo.SignupRepository, hub *realtime.Hub) portssvc.OnboardingSvcFacade {
	return &onboardingService{
		userRepo:   userRepo,
		signupRepo: signupRepo,
		hub:        hub,
	}
}

var _ portssvc.OnboardingSvcFacade = (*onboardingService)(nil)

// RegisterWorker creates a WORKER_PENDING account together with its pending
// signup application, in one transaction.
func (s *onboardingService) RegisterWorker(ctx context.Context, req dto.RegisterWorkerRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()

	user := domain.User{
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		Role:         domain.RoleWorkerPending,
		Department:   req.Department,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	signup := domain.WorkerSignupRequest{
		SignupID:    uuid.NewString(),
		WorkerID:    userID,
		Name:        req.Name,
		Email:       req.Email,
		Department:  req.Department,
		Phone:       req.Phone,
		Status:      domain.RequestPending,
		RequestedAt: now,
	}

	if err := s.signupRepo.CreateWorkerWithSignup(ctx, user, signup); err != nil {
		logger.Error("Failed to create worker with signup", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register worker: %w", err)
	}

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Topic:   realtime.TopicWorkerSignups,
			Action:  realtime.ActionCreated,
			Payload: dto.ToSignupResponse(&signup),
		})
	}

	logger.Info("Worker signup filed",
		slog.String("user_id", userID),
		slog.String("signup_id", signup.SignupID))
	return &user, nil
}

// ApproveSignup promotes the applicant to WORKER and marks the signup
// Approved, atomically.
func (s *onboardingService) ApproveSignup(ctx context.Context, signupID, adminID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	if err := s.signupRepo.ApproveSignupAndPromote(ctx, signupID, adminID, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: signup %s already decided", apperrors.ErrConflict, signupID)
		}
		logger.Error("Failed to approve signup", slog.String("error", err.Error()), slog.String("signup_id", signupID))
		return fmt.Errorf("failed to approve signup %s: %w", signupID, err)
	}

	s.publishSignupUpdate(ctx, signupID)

	logger.Info("Worker signup approved", slog.String("signup_id", signupID))
	return nil
}

// RejectSignup marks the signup Rejected; the account keeps WORKER_PENDING.
func (s *onboardingService) RejectSignup(ctx context.Context, signupID, adminID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	if err := s.signupRepo.RejectSignup(ctx, signupID, adminID, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: signup %s already decided", apperrors.ErrConflict, signupID)
		}
		logger.Error("Failed to reject signup", slog.String("error", err.Error()), slog.String("signup_id", signupID))
		return fmt.Errorf("failed to reject signup %s: %w", signupID, err)
	}

	s.publishSignupUpdate(ctx, signupID)

	logger.Info("Worker signup rejected", slog.String("signup_id", signupID))
	return nil
}

// ListSignups retrieves signup applications in the given state.
func (s *onboardingService) ListSignups(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerSignupRequest, error) {
	signups, err := s.signupRepo.ListSignupsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list signups: %w", err)
	}
	return signups, nil
}

// AuthorizePortal decides whether the user may sign in on the given portal
// and returns the effective role after any reconciliation.
func (s *onboardingService) AuthorizePortal(ctx context.Context, user *domain.User, portal dto.Portal) (domain.Role, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch portal {
	case dto.PortalCitizen:
		if user.Role != domain.RoleUser {
			return "", ErrWrongPortal
		}
		return user.Role, nil

	case dto.PortalAdmin:
		if user.Role != domain.RoleAdmin {
			return "", ErrWrongPortal
		}
		return user.Role, nil

	case dto.PortalWorker:
		if user.Role == domain.RoleWorker {
			return user.Role, nil
		}
		if user.Role != domain.RoleWorkerPending {
			return "", ErrWrongPortal
		}
		// The account may lag behind an already-approved signup: repair the
		// role here instead of refusing the sign-in.
		signup, err := s.signupRepo.FindSignupByWorkerID(ctx, user.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", ErrPendingApproval
			}
			return "", fmt.Errorf("failed to look up signup for reconciliation: %w", err)
		}
		switch signup.Status {
		case domain.RequestApproved:
			now := time.Now().UTC()
			if err := s.userRepo.UpdateUserRole(ctx, user.UserID, domain.RoleWorker, user.UserID, now); err != nil {
				logger.Error("Failed to reconcile worker role on sign-in", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
				return "", fmt.Errorf("failed to reconcile worker role: %w", err)
			}
			logger.Info("Worker role reconciled on sign-in", slog.String("user_id", user.UserID))
			user.Role = domain.RoleWorker
			return domain.RoleWorker, nil
		case domain.RequestRejected:
			return "", ErrSignupRejected
		default:
			return "", ErrPendingApproval
		}

	default:
		return "", fmt.Errorf("%w: unknown portal %q", apperrors.ErrValidation, portal)
	}
}

func (s *onboardingService) publishSignupUpdate(ctx context.Context, signupID string) {
	if s.hub == nil {
		return
	}
	signup, err := s.signupRepo.FindSignupByID(ctx, signupID)
	if err != nil {
		return
	}
	s.hub.Publish(realtime.Event{
		Topic:   realtime.TopicWorkerSignups,
		Action:  realtime.ActionUpdated,
		Payload: dto.ToSignupResponse(signup),
	})
}
