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
	"github.com/civicworks/grievance_redressal_app/internal/platform/metrics"
	"github.com/civicworks/grievance_redressal_app/internal/realtime"
)

var (
	// ErrNoteAfterResolution is returned when a worker posts a progress note
	// on a grievance that work has already finished on.
	ErrNoteAfterResolution = errors.New("cannot add progress note after work has finished")
)

// workflowService owns the legal state graph for grievances and writes the
// append-only audit trail alongside every transition.
type workflowService struct {
	grievanceRepo portsrepo.GrievanceRepository
	userSvc       portssvc.UserSvcFacade
	hub           *realtime.Hub
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(grievanceRepo portsrepo.GrievanceRepository, userSvc portssvc.UserSvcFacade, hub *realtime.Hub) portssvc.WorkflowSvcFacade {
	return &workflowService{
		grievanceRepo: grievanceRepo,
		userSvc:       userSvc,
		hub:           hub,
	}
}

var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// ApplyTransition moves a grievance to nextStatus and appends the paired log
// entry as one atomic unit.
func (s *workflowService) ApplyTransition(ctx context.Context, grievanceID string, nextStatus domain.GrievanceStatus, actorID, remarks string) (*domain.Grievance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	grievance, err := s.grievanceRepo.FindGrievanceByID(ctx, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find grievance %s: %w", grievanceID, err)
	}

	// The Submitted -> Assigned edge carries the worker binding and belongs
	// to the assignment coordinator.
	if nextStatus == domain.StatusAssigned {
		return nil, fmt.Errorf("%w: assignment must go through the assignment coordinator", apperrors.ErrIllegalTransition)
	}

	if !grievance.Status.CanTransition(nextStatus) {
		logger.Warn("Illegal transition attempted",
			slog.String("grievance_id", grievanceID),
			slog.String("from", string(grievance.Status)),
			slog.String("to", string(nextStatus)))
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrIllegalTransition, grievance.Status, nextStatus)
	}

	if err := s.authorizeTransition(ctx, grievance, nextStatus, actorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	logEntry := domain.StatusLogEntry{
		LogID:       uuid.NewString(),
		GrievanceID: grievanceID,
		Status:      nextStatus,
		UpdatedBy:   actorID,
		Remarks:     remarks,
		CreatedAt:   now,
	}

	err = s.grievanceRepo.UpdateStatusWithLog(ctx, grievanceID, grievance.Status, nextStatus, logEntry, actorID, now)
	if err != nil {
		logger.Error("Failed to apply transition", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
		return nil, fmt.Errorf("failed to apply transition on grievance %s: %w", grievanceID, err)
	}

	grievance.Status = nextStatus
	grievance.LastUpdatedAt = now
	grievance.LastUpdatedBy = actorID

	metrics.StatusTransitionsTotal.WithLabelValues(string(nextStatus)).Inc()
	s.publishGrievanceUpdate(grievance)

	logger.Info("Status transition applied",
		slog.String("grievance_id", grievanceID),
		slog.String("to", string(nextStatus)))
	return grievance, nil
}

// AddProgressNote appends a worker's note; the first note on an Assigned
// grievance performs the explicit Assigned -> In Progress transition.
func (s *workflowService) AddProgressNote(ctx context.Context, grievanceID, workerID, note string) (*domain.Grievance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if note == "" {
		return nil, fmt.Errorf("%w: progress note must not be empty", apperrors.ErrValidation)
	}

	grievance, err := s.grievanceRepo.FindGrievanceByID(ctx, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find grievance %s: %w", grievanceID, err)
	}

	if grievance.AssignedWorkerID == nil || *grievance.AssignedWorkerID != workerID {
		return nil, fmt.Errorf("%w: only the assigned worker may post progress", apperrors.ErrForbidden)
	}

	switch grievance.Status {
	case domain.StatusAssigned:
		// First progress starts the clock: an explicit named transition, not
		// a side effect buried in the note write.
		return s.ApplyTransition(ctx, grievanceID, domain.StatusInProgress, workerID, note)
	case domain.StatusInProgress:
		logEntry := domain.StatusLogEntry{
			LogID:       uuid.NewString(),
			GrievanceID: grievanceID,
			Status:      domain.StatusInProgress,
			UpdatedBy:   workerID,
			Remarks:     note,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.grievanceRepo.AppendStatusLog(ctx, logEntry); err != nil {
			logger.Error("Failed to append progress note", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
			return nil, fmt.Errorf("failed to append progress note: %w", err)
		}
		s.publishGrievanceUpdate(grievance)
		return grievance, nil
	default:
		return nil, fmt.Errorf("%w: status is %s", ErrNoteAfterResolution, grievance.Status)
	}
}

// authorizeTransition enforces who may move a grievance along each edge:
// work-status changes belong to the assigned worker, closing to admins.
func (s *workflowService) authorizeTransition(ctx context.Context, grievance *domain.Grievance, nextStatus domain.GrievanceStatus, actorID string) error {
	switch nextStatus {
	case domain.StatusInProgress, domain.StatusResolved:
		if grievance.AssignedWorkerID == nil || *grievance.AssignedWorkerID != actorID {
			return fmt.Errorf("%w: only the assigned worker may perform this transition", apperrors.ErrForbidden)
		}
	case domain.StatusClosed:
		role, err := s.userSvc.ResolveRole(ctx, actorID)
		if err != nil {
			return fmt.Errorf("failed to resolve actor role: %w", err)
		}
		if role != domain.RoleAdmin {
			return fmt.Errorf("%w: only an administrator may close a grievance", apperrors.ErrForbidden)
		}
	}
	return nil
}

func (s *workflowService) publishGrievanceUpdate(grievance *domain.Grievance) {
	if s.hub == nil {
		return
	}
	payload := dto.ToGrievanceResponse(grievance)
	s.hub.Publish(realtime.Event{Topic: realtime.TopicGrievances, Action: realtime.ActionUpdated, Payload: payload})
	s.hub.Publish(realtime.Event{Topic: realtime.GrievanceTopic(grievance.GrievanceID), Action: realtime.ActionUpdated, Payload: payload})
}
