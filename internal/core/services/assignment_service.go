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
	// ErrNotAWorker is returned when the target of an assignment does not
	// hold an active worker role.
	ErrNotAWorker = errors.New("user is not an active worker")

	// ErrRequestAlreadyDecided is returned when an admin acts on a request
	// that already left the Pending state.
	ErrRequestAlreadyDecided = errors.New("worker request already decided")
)

// assignmentService binds a grievance to exactly one worker. Both entry
// paths converge on the repository's compare-and-set bind, so the unassigned
// precondition is enforced in exactly one place.
type assignmentService struct {
	grievanceRepo portsrepo.GrievanceRepository
	requestRepo   portsrepo.WorkerRequestRepository
	userRepo      portsrepo.UserReader
	hub           *realtime.Hub
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(grievanceRepo portsrepo.GrievanceRepository, requestRepo portsrepo.WorkerRequestRepository, userRepo portsrepo.UserReader, hub *realtime.Hub) portssvc.AssignmentSvcFacade {
	return &assignmentService{
		grievanceRepo: grievanceRepo,
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		hub:           hub,
	}
}

var _ portssvc.AssignmentSvcFacade = (*assignmentService)(nil)

// AssignWorker binds a worker to an unassigned grievance directly.
func (s *assignmentService) AssignWorker(ctx context.Context, grievanceID, workerID, adminID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	grievance, err := s.grievanceRepo.FindGrievanceByID(ctx, grievanceID)
	if err != nil {
		return fmt.Errorf("failed to find grievance %s: %w", grievanceID, err)
	}
	if grievance.AssignedWorkerID != nil {
		return apperrors.ErrAlreadyAssigned
	}

	if err := s.requireActiveWorker(ctx, workerID); err != nil {
		return err
	}

	now := time.Now().UTC()
	logEntry := domain.StatusLogEntry{
		LogID:       uuid.NewString(),
		GrievanceID: grievanceID,
		Status:      domain.StatusAssigned,
		UpdatedBy:   adminID,
		Remarks:     "Assigned by administrator",
		CreatedAt:   now,
	}

	err = s.grievanceRepo.AssignGrievanceWithLog(ctx, grievanceID, workerID, logEntry, nil, adminID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyAssigned) {
			// Lost the race against a concurrent assignment.
			metrics.AssignmentConflictsTotal.Inc()
			return apperrors.ErrAlreadyAssigned
		}
		logger.Error("Failed to assign grievance", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
		return fmt.Errorf("failed to assign grievance %s: %w", grievanceID, err)
	}

	metrics.AssignmentsTotal.WithLabelValues("direct").Inc()
	s.publishAssignment(grievance, workerID, adminID, now)

	logger.Info("Grievance assigned directly",
		slog.String("grievance_id", grievanceID),
		slog.String("worker_id", workerID))
	return nil
}

// RequestAccess files a worker's pending bid for an unassigned grievance.
func (s *assignmentService) RequestAccess(ctx context.Context, grievanceID, workerID, reason string) (*domain.WorkerRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if reason == "" {
		return nil, fmt.Errorf("%w: request reason must not be empty", apperrors.ErrValidation)
	}

	grievance, err := s.grievanceRepo.FindGrievanceByID(ctx, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find grievance %s: %w", grievanceID, err)
	}
	if grievance.AssignedWorkerID != nil {
		return nil, apperrors.ErrAlreadyAssigned
	}

	if err := s.requireActiveWorker(ctx, workerID); err != nil {
		return nil, err
	}

	existing, err := s.requestRepo.FindPendingRequest(ctx, grievanceID, workerID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing request: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a pending request already exists for this grievance", apperrors.ErrDuplicate)
	}

	request := domain.WorkerRequest{
		RequestID:   uuid.NewString(),
		GrievanceID: grievanceID,
		WorkerID:    workerID,
		Reason:      reason,
		Status:      domain.RequestPending,
		RequestedAt: time.Now().UTC(),
	}

	if err := s.requestRepo.SaveWorkerRequest(ctx, request); err != nil {
		logger.Error("Failed to save worker request", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save worker request: %w", err)
	}

	if s.hub != nil {
		s.hub.Publish(realtime.Event{
			Topic:   realtime.TopicWorkerReqs,
			Action:  realtime.ActionCreated,
			Payload: dto.ToWorkerRequestResponse(&request),
		})
	}

	logger.Info("Access requested",
		slog.String("grievance_id", grievanceID),
		slog.String("worker_id", workerID),
		slog.String("request_id", request.RequestID))
	return &request, nil
}

// ApproveRequest approves a pending bid. The unassigned precondition is
// re-checked at approval time inside the repository transaction; a request
// losing that re-check is marked Superseded, never silently Approved.
func (s *assignmentService) ApproveRequest(ctx context.Context, requestID, adminID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	request, err := s.requestRepo.FindWorkerRequestByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to find worker request %s: %w", requestID, err)
	}
	if request.Status != domain.RequestPending {
		return fmt.Errorf("%w: status is %s", ErrRequestAlreadyDecided, request.Status)
	}

	if err := s.requireActiveWorker(ctx, request.WorkerID); err != nil {
		return err
	}

	now := time.Now().UTC()
	logEntry := domain.StatusLogEntry{
		LogID:       uuid.NewString(),
		GrievanceID: request.GrievanceID,
		Status:      domain.StatusAssigned,
		UpdatedBy:   adminID,
		Remarks:     "Access request approved",
		CreatedAt:   now,
	}

	err = s.grievanceRepo.AssignGrievanceWithLog(ctx, request.GrievanceID, request.WorkerID, logEntry, &requestID, adminID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyAssigned) {
			metrics.AssignmentConflictsTotal.Inc()
			// Another request won; record that this one was overtaken so the
			// worker can tell "someone else got it" apart from "denied".
			if markErr := s.requestRepo.MarkWorkerRequestDecided(ctx, requestID, domain.RequestSuperseded, adminID, now); markErr != nil {
				logger.Error("Failed to mark superseded request", slog.String("error", markErr.Error()), slog.String("request_id", requestID))
			}
			return apperrors.ErrAlreadyAssigned
		}
		logger.Error("Failed to approve worker request", slog.String("error", err.Error()), slog.String("request_id", requestID))
		return fmt.Errorf("failed to approve worker request %s: %w", requestID, err)
	}

	metrics.AssignmentsTotal.WithLabelValues("approval").Inc()

	if s.hub != nil {
		decided := *request
		decided.Status = domain.RequestApproved
		decided.DecidedBy = &adminID
		decided.DecidedAt = &now
		s.hub.Publish(realtime.Event{
			Topic:   realtime.TopicWorkerReqs,
			Action:  realtime.ActionUpdated,
			Payload: dto.ToWorkerRequestResponse(&decided),
		})
	}
	if grievance, findErr := s.grievanceRepo.FindGrievanceByID(ctx, request.GrievanceID); findErr == nil {
		s.publishAssignment(grievance, request.WorkerID, adminID, now)
	}

	logger.Info("Worker request approved",
		slog.String("request_id", requestID),
		slog.String("grievance_id", request.GrievanceID),
		slog.String("worker_id", request.WorkerID))
	return nil
}

// DenyRequest rejects a pending bid; the grievance is untouched.
func (s *assignmentService) DenyRequest(ctx context.Context, requestID, adminID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	err := s.requestRepo.MarkWorkerRequestDecided(ctx, requestID, domain.RequestRejected, adminID, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: %s", ErrRequestAlreadyDecided, requestID)
		}
		logger.Error("Failed to deny worker request", slog.String("error", err.Error()), slog.String("request_id", requestID))
		return fmt.Errorf("failed to deny worker request %s: %w", requestID, err)
	}

	if s.hub != nil {
		if request, findErr := s.requestRepo.FindWorkerRequestByID(ctx, requestID); findErr == nil {
			s.hub.Publish(realtime.Event{
				Topic:   realtime.TopicWorkerReqs,
				Action:  realtime.ActionUpdated,
				Payload: dto.ToWorkerRequestResponse(request),
			})
		}
	}

	logger.Info("Worker request denied", slog.String("request_id", requestID))
	return nil
}

// ListRequestsByWorker retrieves a worker's request history.
func (s *assignmentService) ListRequestsByWorker(ctx context.Context, workerID string) ([]domain.WorkerRequest, error) {
	requests, err := s.requestRepo.ListWorkerRequestsByWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests for worker %s: %w", workerID, err)
	}
	return requests, nil
}

// ListPendingRequests retrieves all requests awaiting an admin decision.
func (s *assignmentService) ListPendingRequests(ctx context.Context) ([]domain.WorkerRequest, error) {
	requests, err := s.requestRepo.ListWorkerRequestsByStatus(ctx, domain.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

// requireActiveWorker guards the invariant that assignedWorkerID only ever
// points at an account with role WORKER.
func (s *assignmentService) requireActiveWorker(ctx context.Context, workerID string) error {
	worker, err := s.userRepo.FindUserByID(ctx, workerID)
	if err != nil {
		return fmt.Errorf("failed to find worker %s: %w", workerID, err)
	}
	if !worker.IsWorker() {
		return fmt.Errorf("%w: %s has role %s", ErrNotAWorker, workerID, worker.Role)
	}
	return nil
}

func (s *assignmentService) publishAssignment(grievance *domain.Grievance, workerID, adminID string, at time.Time) {
	if s.hub == nil {
		return
	}
	updated := *grievance
	updated.AssignedWorkerID = &workerID
	updated.Status = domain.StatusAssigned
	updated.LastUpdatedAt = at
	updated.LastUpdatedBy = adminID
	payload := dto.ToGrievanceResponse(&updated)
	s.hub.Publish(realtime.Event{Topic: realtime.TopicGrievances, Action: realtime.ActionUpdated, Payload: payload})
	s.hub.Publish(realtime.Event{Topic: realtime.GrievanceTopic(grievance.GrievanceID), Action: realtime.ActionUpdated, Payload: payload})
}
