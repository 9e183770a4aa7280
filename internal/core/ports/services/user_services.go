package services

import (
	"context"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
)

// UserSvcFacade exposes account and role-resolver operations.
type UserSvcFacade interface {
	// CreateUser registers a citizen account with role USER.
	CreateUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// GetUserByID retrieves an account.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves an account by email address.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// ResolveRole maps an authenticated identifier to its role tag.
	ResolveRole(ctx context.Context, userID string) (domain.Role, error)

	// ListWorkersWithLoad lists active workers with their open task counts.
	ListWorkersWithLoad(ctx context.Context) ([]dto.WorkerLoadResponse, error)
}
