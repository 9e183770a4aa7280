package dto

import (
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
)

// CreateGrievanceRequest is the citizen submission payload.
type CreateGrievanceRequest struct {
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description" binding:"required"`
	Category    domain.GrievanceCategory `json:"category" binding:"required,grievancecategory"`
	Priority    domain.GrievancePriority `json:"priority" binding:"required,grievancepriority"`
	IsPublic    bool                     `json:"isPublic"`
}

// VoteRequest is the community voting payload.
type VoteRequest struct {
	Direction domain.VoteDirection `json:"direction" binding:"required,oneof=up down"`
}

// TransitionRequest asks for an explicit status change on a grievance.
type TransitionRequest struct {
	Status  domain.GrievanceStatus `json:"status" binding:"required"`
	Remarks string                 `json:"remarks"`
}

// ProgressNoteRequest is a worker's free-text progress update.
type ProgressNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

// GrievanceResponse is the externally visible shape of a grievance.
type GrievanceResponse struct {
	GrievanceID      string                   `json:"grievanceID"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	Category         domain.GrievanceCategory `json:"category"`
	Priority         domain.GrievancePriority `json:"priority"`
	Status           domain.GrievanceStatus   `json:"status"`
	AssignedWorkerID *string                  `json:"assignedWorkerID,omitempty"`
	ReporterID       string                   `json:"reporterID"`
	IsPublic         bool                     `json:"isPublic"`
	UpvoteCount      int                      `json:"upvoteCount"`
	DownvoteCount    int                      `json:"downvoteCount"`
	Upvotes          []string                 `json:"upvotes"`
	Downvotes        []string                 `json:"downvotes"`
	CreatedAt        time.Time                `json:"createdAt"`
}

// ToGrievanceResponse maps a domain grievance to its response DTO.
func ToGrievanceResponse(g *domain.Grievance) GrievanceResponse {
	return GrievanceResponse{
		GrievanceID:      g.GrievanceID,
		Title:            g.Title,
		Description:      g.Description,
		Category:         g.Category,
		Priority:         g.Priority,
		Status:           g.Status,
		AssignedWorkerID: g.AssignedWorkerID,
		ReporterID:       g.ReporterID,
		IsPublic:         g.IsPublic,
		UpvoteCount:      len(g.Upvotes),
		DownvoteCount:    len(g.Downvotes),
		Upvotes:          g.Upvotes,
		Downvotes:        g.Downvotes,
		CreatedAt:        g.CreatedAt,
	}
}

// ToGrievanceResponses maps a slice of domain grievances.
func ToGrievanceResponses(gs []domain.Grievance) []GrievanceResponse {
	out := make([]GrievanceResponse, len(gs))
	for i := range gs {
		out[i] = ToGrievanceResponse(&gs[i])
	}
	return out
}

// StatusLogResponse is one audit trail line.
type StatusLogResponse struct {
	LogID       string                 `json:"logID"`
	GrievanceID string                 `json:"grievanceID"`
	Status      domain.GrievanceStatus `json:"status"`
	UpdatedBy   string                 `json:"updatedBy"`
	Remarks     string                 `json:"remarks"`
	Timestamp   time.Time              `json:"timestamp"`
}

// ToStatusLogResponses maps the audit trail of a grievance.
func ToStatusLogResponses(logs []domain.StatusLogEntry) []StatusLogResponse {
	out := make([]StatusLogResponse, len(logs))
	for i, l := range logs {
		out[i] = StatusLogResponse{
			LogID:       l.LogID,
			GrievanceID: l.GrievanceID,
			Status:      l.Status,
			UpdatedBy:   l.UpdatedBy,
			Remarks:     l.Remarks,
			Timestamp:   l.CreatedAt,
		}
	}
	return out
}

// GrievanceTimelineResponse bundles a grievance with its audit trail.
type GrievanceTimelineResponse struct {
	Grievance GrievanceResponse   `json:"grievance"`
	Timeline  []StatusLogResponse `json:"timeline"`
}

// ListCommunityParams holds pagination parameters for the public feed.
type ListCommunityParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListGrievancesResponse is a paginated page of grievances.
type ListGrievancesResponse struct {
	Grievances []GrievanceResponse `json:"grievances"`
	NextToken  *string             `json:"nextToken,omitempty"`
}
