package services

import (
	portsrepo "github.com/civicworks/grievance_redressal_app/internal/core/ports/repositories"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/realtime"
)

// NewServiceContainer wires all services over the repository provider and the
// realtime hub.
func NewServiceContainer(repos portsrepo.RepositoryProvider, hub *realtime.Hub) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo, repos.GrievanceRepo)

	return &portssvc.ServiceContainer{
		User:       userSvc,
		Grievance:  NewGrievanceService(repos.GrievanceRepo, userSvc, hub),
		Workflow:   NewWorkflowService(repos.GrievanceRepo, userSvc, hub),
		Assignment: NewAssignmentService(repos.GrievanceRepo, repos.WorkerRequestRepo, repos.UserRepo, hub),
		Onboarding: NewOnboardingService(repos.UserRepo, repos.SignupRepo, hub),
		Voting:     NewVotingService(repos.GrievanceRepo, hub),
	}
}
