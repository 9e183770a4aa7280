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
	"github.com/civicworks/grievance_redressal_app/internal/utils"
)

// userService provides account and role-resolver operations.
type userService struct {
	userRepo      portsrepo.UserRepository
	grievanceRepo portsrepo.GrievanceReader
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepository, grievanceRepo portsrepo.GrievanceReader) portssvc.UserSvcFacade {
	return &userService{
		userRepo:      userRepo,
		grievanceRepo: grievanceRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// CreateUser registers a citizen account with role USER.
func (s *userService) CreateUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
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
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         domain.RoleUser,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "", // Self registration
			LastUpdatedAt: now,
			LastUpdatedBy: "",
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// GetUserByID retrieves an account.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", userID, err)
	}
	return user, nil
}

// GetUserByEmail retrieves an account by email address.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ResolveRole maps an authenticated identifier to its role tag.
func (s *userService) ResolveRole(ctx context.Context, userID string) (domain.Role, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve role for user %s: %w", userID, err)
	}
	return user.Role, nil
}

// ListWorkersWithLoad lists active workers with their open task counts.
func (s *userService) ListWorkersWithLoad(ctx context.Context) ([]dto.WorkerLoadResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	workers, err := s.userRepo.ListUsersByRole(ctx, domain.RoleWorker)
	if err != nil {
		logger.Error("Failed to list workers", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	if len(workers) == 0 {
		return []dto.WorkerLoadResponse{}, nil
	}

	workerIDs := make([]string, len(workers))
	for i, w := range workers {
		workerIDs[i] = w.UserID
	}

	loads, err := s.grievanceRepo.CountOpenGrievancesByWorker(ctx, workerIDs)
	if err != nil {
		logger.Error("Failed to count open grievances per worker", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to count worker task load: %w", err)
	}

	out := make([]dto.WorkerLoadResponse, len(workers))
	for i := range workers {
		out[i] = dto.WorkerLoadResponse{
			UserResponse: dto.ToUserResponse(&workers[i]),
			OpenTasks:    loads[workers[i].UserID],
		}
	}
	return out, nil
}
