package services

import (
	"context"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
)

// GrievanceSvcFacade exposes grievance submission and query operations.
type GrievanceSvcFacade interface {
	// SubmitGrievance creates a new grievance in status Submitted with its
	// initial audit trail entry.
	SubmitGrievance(ctx context.Context, req dto.CreateGrievanceRequest, reporterID string) (*domain.Grievance, error)

	// GetGrievanceWithTimeline retrieves a grievance and its audit trail.
	// Non-public grievances are visible only to the reporter, the assigned
	// worker and administrators.
	GetGrievanceWithTimeline(ctx context.Context, grievanceID, requestingUserID string) (*domain.Grievance, []domain.StatusLogEntry, error)

	// ListMyGrievances lists the grievances a citizen reported.
	ListMyGrievances(ctx context.Context, reporterID string) ([]domain.Grievance, error)

	// ListCommunityGrievances lists public grievances, token-paginated.
	ListCommunityGrievances(ctx context.Context, params dto.ListCommunityParams) (*dto.ListGrievancesResponse, error)

	// ListUnassignedGrievances lists grievances with no worker bound.
	ListUnassignedGrievances(ctx context.Context) ([]domain.Grievance, error)

	// ListAssignedGrievances lists grievances bound to the given worker.
	ListAssignedGrievances(ctx context.Context, workerID string) ([]domain.Grievance, error)

	// DeleteGrievance removes a grievance owned by the reporter.
	DeleteGrievance(ctx context.Context, grievanceID, reporterID string) error
}

// VotingSvcFacade exposes the community voting ledger.
type VotingSvcFacade interface {
	// Vote toggles the voter's up/down vote on a grievance and returns the
	// grievance as it stands afterwards.
	Vote(ctx context.Context, grievanceID, voterID string, direction domain.VoteDirection) (*domain.Grievance, error)
}
