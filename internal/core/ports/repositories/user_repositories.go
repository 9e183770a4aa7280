package repositories

import (
	"context"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// UserReader defines read operations for account data
type UserReader interface {
	// FindUserByID retrieves a specific user by their unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email address.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUsers retrieves a paginated list of users.
	FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)

	// ListUsersByRole retrieves all users holding the given role.
	ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// UserWriter defines write operations for account data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUserRole sets a user's role. Only the onboarding gateway and
	// administrators may call this.
	UpdateUserRole(ctx context.Context, userID string, role domain.Role, updatedBy string, updatedAt time.Time) error
}

// UserRepository combines all account-related repository interfaces
type UserRepository interface {
	UserReader
	UserWriter
}
