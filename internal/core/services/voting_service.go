package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/apperrors"
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portsrepo "github.com/civicworks/grievance_redressal_app/internal/core/ports/repositories"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
	"github.com/civicworks/grievance_redressal_app/internal/middleware"
	"github.com/civicworks/grievance_redressal_app/internal/platform/metrics"
	"github.com/civicworks/grievance_redressal_app/internal/realtime"
)

// votingService provides the community voting ledger. The toggle itself is a
// single atomic repository update so mutual exclusivity of the vote sets
// holds at every observation.
type votingService struct {
	grievanceRepo portsrepo.GrievanceRepository
	hub           *realtime.Hub
}

// NewVotingService creates a new VotingService.
func NewVotingService(grievanceRepo portsrepo.GrievanceRepository, hub *realtime.Hub) portssvc.VotingSvcFacade {
	return &votingService{
		grievanceRepo: grievanceRepo,
		hub:           hub,
	}
}

var _ portssvc.VotingSvcFacade = (*votingService)(nil)

// Vote toggles the voter's up/down vote on a grievance.
func (s *votingService) Vote(ctx context.Context, grievanceID, voterID string, direction domain.VoteDirection) (*domain.Grievance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if direction != domain.VoteUp && direction != domain.VoteDown {
		return nil, fmt.Errorf("%w: unknown vote direction %q", apperrors.ErrValidation, direction)
	}

	grievance, err := s.grievanceRepo.ApplyVote(ctx, grievanceID, voterID, direction, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to apply vote", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
		return nil, fmt.Errorf("failed to apply vote on grievance %s: %w", grievanceID, err)
	}

	metrics.VotesTotal.WithLabelValues(string(direction)).Inc()

	if s.hub != nil {
		payload := dto.ToGrievanceResponse(grievance)
		s.hub.Publish(realtime.Event{Topic: realtime.TopicGrievances, Action: realtime.ActionUpdated, Payload: payload})
		s.hub.Publish(realtime.Event{Topic: realtime.GrievanceTopic(grievanceID), Action: realtime.ActionUpdated, Payload: payload})
	}

	logger.Debug("Vote applied",
		slog.String("grievance_id", grievanceID),
		slog.String("direction", string(direction)))
	return grievance, nil
}
