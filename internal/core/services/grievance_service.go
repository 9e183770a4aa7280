package services

import (
	"context"
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
)

const defaultCommunityPageSize = 20

// grievanceService provides grievance submission and query operations.
type grievanceService struct {
	grievanceRepo portsrepo.GrievanceRepository
	userSvc       portssvc.UserSvcFacade
	hub           *realtime.Hub
}

// NewGrievanceService creates a new GrievanceService.
func NewGrievanceService(grievanceRepo portsrepo.GrievanceRepository, userSvc portssvc.UserSvcFacade, hub *realtime.Hub) portssvc.GrievanceSvcFacade {
	return &grievanceService{
		grievanceRepo: grievanceRepo,
		userSvc:       userSvc,
		hub:           hub,
	}
}

var _ portssvc.GrievanceSvcFacade = (*grievanceService)(nil)

// SubmitGrievance creates a new grievance in status Submitted together with
// its initial audit trail entry.
func (s *grievanceService) SubmitGrievance(ctx context.Context, req dto.CreateGrievanceRequest, reporterID string) (*domain.Grievance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Title == "" || req.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	grievance := domain.Grievance{
		GrievanceID: uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      domain.StatusSubmitted,
		ReporterID:  reporterID,
		IsPublic:    req.IsPublic,
		Upvotes:     []string{},
		Downvotes:   []string{},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     reporterID,
			LastUpdatedAt: now,
			LastUpdatedBy: reporterID,
		},
	}

	logEntry := domain.StatusLogEntry{
		LogID:       uuid.NewString(),
		GrievanceID: grievance.GrievanceID,
		Status:      domain.StatusSubmitted,
		UpdatedBy:   reporterID,
		Remarks:     "Grievance submitted",
		CreatedAt:   now,
	}

	if err := s.grievanceRepo.SaveGrievanceWithLog(ctx, grievance, logEntry); err != nil {
		logger.Error("Failed to save grievance", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save grievance: %w", err)
	}

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Topic:   realtime.TopicGrievances,
			Action:  realtime.ActionCreated,
			Payload: dto.ToGrievanceResponse(&grievance),
		})
	}

	logger.Info("Grievance submitted", slog.String("grievance_id", grievance.GrievanceID))
	return &grievance, nil
}

// GetGrievanceWithTimeline retrieves a grievance and its audit trail,
// enforcing visibility.
func (s *grievanceService) GetGrievanceWithTimeline(ctx context.Context, grievanceID, requestingUserID string) (*domain.Grievance, []domain.StatusLogEntry, error) {
	grievance, err := s.grievanceRepo.FindGrievanceByID(ctx, grievanceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find grievance %s: %w", grievanceID, err)
	}

	if err := s.authorizeView(ctx, grievance, requestingUserID); err != nil {
		return nil, nil, err
	}

	logs, err := s.grievanceRepo.FindStatusLogsByGrievanceID(ctx, grievanceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve timeline for grievance %s: %w", grievanceID, err)
	}

	return grievance, logs, nil
}

// ListMyGrievances lists the grievances a citizen reported.
func (s *grievanceService) ListMyGrievances(ctx context.Context, reporterID string) ([]domain.Grievance, error) {
	grievances, err := s.grievanceRepo.ListGrievancesByReporter(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances for reporter %s: %w", reporterID, err)
	}
	return grievances, nil
}

// ListCommunityGrievances lists public grievances, token-paginated.
func (s *grievanceService) ListCommunityGrievances(ctx context.Context, params dto.ListCommunityParams) (*dto.ListGrievancesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultCommunityPageSize
	}

	grievances, nextToken, err := s.grievanceRepo.ListPublicGrievances(ctx, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list community grievances: %w", err)
	}

	return &dto.ListGrievancesResponse{
		Grievances: dto.ToGrievanceResponses(grievances),
		NextToken:  nextToken,
	}, nil
}

// ListUnassignedGrievances lists grievances with no worker bound.
func (s *grievanceService) ListUnassignedGrievances(ctx context.Context) ([]domain.Grievance, error) {
	grievances, err := s.grievanceRepo.ListUnassignedGrievances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned grievances: %w", err)
	}
	return grievances, nil
}

// ListAssignedGrievances lists grievances bound to the given worker.
func (s *grievanceService) ListAssignedGrievances(ctx context.Context, workerID string) ([]domain.Grievance, error) {
	grievances, err := s.grievanceRepo.ListGrievancesByWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grievances for worker %s: %w", workerID, err)
	}
	return grievances, nil
}

// DeleteGrievance removes a grievance owned by the reporter. A plain delete
// with no workflow implication.
func (s *grievanceService) DeleteGrievance(ctx context.Context, grievanceID, reporterID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.grievanceRepo.DeleteGrievance(ctx, grievanceID, reporterID); err != nil {
		return fmt.Errorf("failed to delete grievance %s: %w", grievanceID, err)
	}

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Topic:   realtime.TopicGrievances,
			Action:  realtime.ActionDeleted,
			Payload: deletedGrievancePayload{GrievanceID: grievanceID},
		})
	}

	logger.Info("Grievance deleted", slog.String("grievance_id", grievanceID))
	return nil
}

// authorizeView enforces who may read a grievance: the public, the reporter,
// the assigned worker, administrators, and workers browsing unassigned work.
func (s *grievanceService) authorizeView(ctx context.Context, grievance *domain.Grievance, requestingUserID string) error {
	if grievance.IsPublic || grievance.ReporterID == requestingUserID {
		return nil
	}
	if grievance.AssignedWorkerID != nil && *grievance.AssignedWorkerID == requestingUserID {
		return nil
	}

	role, err := s.userSvc.ResolveRole(ctx, requestingUserID)
	if err != nil {
		return fmt.Errorf("failed to resolve requester role: %w", err)
	}
	if role == domain.RoleAdmin {
		return nil
	}
	if role == domain.RoleWorker && grievance.AssignedWorkerID == nil {
		return nil
	}

	return apperrors.ErrForbidden
}

type deletedGrievancePayload struct {
	GrievanceID string `json:"grievanceID"`
}
