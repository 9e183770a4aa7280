package dto

import (
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// Portal identifies which client surface a sign-in request comes from.
type Portal string

const (
	PortalCitizen Portal = "citizen"
	PortalWorker  Portal = "worker"
	PortalAdmin   Portal = "admin"
)

// RegisterUserRequest is the payload for citizen account registration.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for sign-in on any portal.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Portal   Portal `json:"portal" binding:"required,oneof=citizen worker admin"`
}

// LoginResponse carries the bearer token and the resolved account.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the externally visible shape of an account.
type UserResponse struct {
	UserID     string      `json:"userID"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department,omitempty"`
}

// ToUserResponse maps a domain user to its response DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:     u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	}
}

// WorkerLoadResponse pairs a worker with the number of open grievances
// currently assigned to them.
type WorkerLoadResponse struct {
	UserResponse
	OpenTasks int `json:"openTasks"`
}
