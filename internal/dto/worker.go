package dto

import (
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// RegisterWorkerRequest is the payload for a worker signup application.
type RegisterWorkerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department" binding:"required"`
	Phone      string `json:"phone"`
}

// AccessRequestRequest is a worker's bid for an unassigned grievance.
type AccessRequestRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AssignRequest is the admin direct-assignment payload.
type AssignRequest struct {
	WorkerID string `json:"workerID" binding:"required"`
}

// WorkerRequestResponse is the externally visible shape of an access request.
type WorkerRequestResponse struct {
	RequestID   string               `json:"requestID"`
	GrievanceID string               `json:"grievanceID"`
	WorkerID    string               `json:"workerID"`
	Reason      string               `json:"reason"`
	Status      domain.RequestStatus `json:"status"`
	RequestedAt time.Time            `json:"requestedAt"`
	DecidedBy   *string              `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time           `json:"decidedAt,omitempty"`
}

// ToWorkerRequestResponse maps a domain access request to its DTO.
func ToWorkerRequestResponse(r *domain.WorkerRequest) WorkerRequestResponse {
	return WorkerRequestResponse{
		RequestID:   r.RequestID,
		GrievanceID: r.GrievanceID,
		WorkerID:    r.WorkerID,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.RequestedAt,
		DecidedBy:   r.DecidedBy,
		DecidedAt:   r.DecidedAt,
	}
}

// ToWorkerRequestResponses maps a slice of access requests.
func ToWorkerRequestResponses(rs []domain.WorkerRequest) []WorkerRequestResponse {
	out := make([]WorkerRequestResponse, len(rs))
	for i := range rs {
		out[i] = ToWorkerRequestResponse(&rs[i])
	}
	return out
}

// SignupResponse is the externally visible shape of a signup application.
type SignupResponse struct {
	SignupID    string               `json:"signupID"`
	WorkerID    string               `json:"workerID"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Department  string               `json:"department"`
	Phone       string               `json:"phone,omitempty"`
	Status      domain.RequestStatus `json:"status"`
	RequestedAt time.Time            `json:"requestedAt"`
	DecidedBy   *string              `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time           `json:"decidedAt,omitempty"`
}

// ToSignupResponse maps a domain signup application to its DTO.
func ToSignupResponse(s *domain.WorkerSignupRequest) SignupResponse {
	return SignupResponse{
		SignupID:    s.SignupID,
		WorkerID:    s.WorkerID,
		Name:        s.Name,
		Email:       s.Email,
		Department:  s.Department,
		Phone:       s.Phone,
		Status:      s.Status,
		RequestedAt: s.RequestedAt,
		DecidedBy:   s.DecidedBy,
		DecidedAt:   s.DecidedAt,
	}
}

// ToSignupResponses maps a slice of signup applications.
func ToSignupResponses(ss []domain.WorkerSignupRequest) []SignupResponse {
	out := make([]SignupResponse, len(ss))
	for i := range ss {
		out[i] = ToSignupResponse(&ss[i])
	}
	return out
}
