package domain

import "time"

// RequestStatus is the review state of a worker's bid or signup application.
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
	// RequestSuperseded marks a pending access request whose grievance was
	// assigned elsewhere before this request could be approved.
	RequestSuperseded RequestStatus = "Superseded"
)

// WorkerRequest is a worker's bid to be assigned to a specific unassigned
// grievance. Terminal once it leaves Pending.
type WorkerRequest struct {
	RequestID   string        `json:"requestID"` // Primary Key (UUID)
	GrievanceID string        `json:"grievanceID"`
	WorkerID    string        `json:"workerID"` // UserID Reference
	Reason      string        `json:"reason"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requestedAt"`
	DecidedBy   *string       `json:"decidedBy,omitempty"` // Admin UserID
	DecidedAt   *time.Time    `json:"decidedAt,omitempty"`
}

// WorkerSignupRequest is an application for a new account to gain the WORKER
// role. The account is created alongside it with role WORKER_PENDING.
type WorkerSignupRequest struct {
	SignupID    string        `json:"signupID"` // Primary Key (UUID)
	WorkerID    string        `json:"workerID"` // UserID Reference
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Department  string        `json:"department"`
	Phone       string        `json:"phone,omitempty"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requestedAt"`
	DecidedBy   *string       `json:"decidedBy,omitempty"` // Admin UserID
	DecidedAt   *time.Time    `json:"decidedAt,omitempty"`
}
