package domain

import "time"

// Role tags an account with the portal it may operate from.
type Role string

const (
	RoleUser          Role = "USER"
	RoleWorkerPending Role = "WORKER_PENDING"
	RoleWorker        Role = "WORKER"
	RoleAdmin         Role = "ADMIN"
)

// User represents an authenticated account in the domain.
// The role is mutated only by the onboarding gateway or an administrator.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Department   string `json:"department,omitempty"` // Only meaningful for workers
	PasswordHash string `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// IsWorker reports whether the account holds an active worker role.
func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}
