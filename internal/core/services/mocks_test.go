package services_test

import (
	"context"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portsrepo "github.com/civicworks/grievance_redressal_app/internal/core/ports/repositories"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock GrievanceRepository ---

type MockGrievanceRepository struct {
	mock.Mock
}

var _ portsrepo.GrievanceRepository = (*MockGrievanceRepository)(nil)

func (m *MockGrievanceRepository) FindGrievanceByID(ctx context.Context, grievanceID string) (*domain.Grievance, error) {
	args := m.Called(ctx, grievanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Grievance), args.Error(1)
}

func (m *MockGrievanceRepository) ListGrievancesByReporter(ctx context.Context, reporterID string) ([]domain.Grievance, error) {
	args := m.Called(ctx, reporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Grievance), args.Error(1)
}

func (m *MockGrievanceRepository) ListUnassignedGrievances(ctx context.Context) ([]domain.Grievance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Grievance), args.Error(1)
}

func (m *MockGrievanceRepository) ListGrievancesByWorker(ctx context.Context, workerID string) ([]domain.Grievance, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Grievance), args.Error(1)
}

func (m *MockGrievanceRepository) ListPublicGrievances(ctx context.Context, limit int, nextToken *string) ([]domain.Grievance, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Grievance), returnedNextToken, args.Error(2)
}

func (m *MockGrievanceRepository) CountOpenGrievancesByWorker(ctx context.Context, workerIDs []string) (map[string]int, error) {
	args := m.Called(ctx, workerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockGrievanceRepository) SaveGrievanceWithLog(ctx context.Context, grievance domain.Grievance, log domain.StatusLogEntry) error {
	args := m.Called(ctx, grievance, log)
	return args.Error(0)
}

func (m *MockGrievanceRepository) UpdateStatusWithLog(ctx context.Context, grievanceID string, from, to domain.GrievanceStatus, log domain.StatusLogEntry, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, grievanceID, from, to, log, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockGrievanceRepository) AssignGrievanceWithLog(ctx context.Context, grievanceID, workerID string, log domain.StatusLogEntry, approveRequestID *string, decidedBy string, decidedAt time.Time) error {
	args := m.Called(ctx, grievanceID, workerID, log, approveRequestID, decidedBy, decidedAt)
	return args.Error(0)
}

func (m *MockGrievanceRepository) AppendStatusLog(ctx context.Context, log domain.StatusLogEntry) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockGrievanceRepository) ApplyVote(ctx context.Context, grievanceID, voterID string, direction domain.VoteDirection, updatedAt time.Time) (*domain.Grievance, error) {
	args := m.Called(ctx, grievanceID, voterID, direction, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Grievance), args.Error(1)
}

func (m *MockGrievanceRepository) DeleteGrievance(ctx context.Context, grievanceID, reporterID string) error {
	args := m.Called(ctx, grievanceID, reporterID)
	return args.Error(0)
}

func (m *MockGrievanceRepository) FindStatusLogsByGrievanceID(ctx context.Context, grievanceID string) ([]domain.StatusLogEntry, error) {
	args := m.Called(ctx, grievanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusLogEntry), args.Error(1)
}

// --- Mock WorkerRequestRepository ---

type MockWorkerRequestRepository struct {
	mock.Mock
}

var _ portsrepo.WorkerRequestRepository = (*MockWorkerRequestRepository)(nil)

func (m *MockWorkerRequestRepository) SaveWorkerRequest(ctx context.Context, request domain.WorkerRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWorkerRequestRepository) FindWorkerRequestByID(ctx context.Context, requestID string) (*domain.WorkerRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkerRequest), args.Error(1)
}

func (m *MockWorkerRequestRepository) FindPendingRequest(ctx context.Context, grievanceID, workerID string) (*domain.WorkerRequest, error) {
	args := m.Called(ctx, grievanceID, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkerRequest), args.Error(1)
}

func (m *MockWorkerRequestRepository) ListWorkerRequestsByWorker(ctx context.Context, workerID string) ([]domain.WorkerRequest, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkerRequest), args.Error(1)
}

func (m *MockWorkerRequestRepository) ListWorkerRequestsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkerRequest), args.Error(1)
}

func (m *MockWorkerRequestRepository) MarkWorkerRequestDecided(ctx context.Context, requestID string, status domain.RequestStatus, decidedBy string, decidedAt time.Time) error {
	args := m.Called(ctx, requestID, status, decidedBy, decidedAt)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserRole(ctx context.Context, userID string, role domain.Role, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, userID, role, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock SignupRepository ---

type MockSignupRepository struct {
	mock.Mock
}

var _ portsrepo.SignupRepository = (*MockSignupRepository)(nil)

func (m *MockSignupRepository) CreateWorkerWithSignup(ctx context.Context, user domain.User, signup domain.WorkerSignupRequest) error {
	args := m.Called(ctx, user, signup)
	return args.Error(0)
}

func (m *MockSignupRepository) FindSignupByID(ctx context.Context, signupID string) (*domain.WorkerSignupRequest, error) {
	args := m.Called(ctx, signupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkerSignupRequest), args.Error(1)
}

func (m *MockSignupRepository) FindSignupByWorkerID(ctx context.Context, workerID string) (*domain.WorkerSignupRequest, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkerSignupRequest), args.Error(1)
}

func (m *MockSignupRepository) ListSignupsByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.WorkerSignupRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkerSignupRequest), args.Error(1)
}

func (m *MockSignupRepository) ApproveSignupAndPromote(ctx context.Context, signupID, adminID string, decidedAt time.Time) error {
	args := m.Called(ctx, signupID, adminID, decidedAt)
	return args.Error(0)
}

func (m *MockSignupRepository) RejectSignup(ctx context.Context, signupID, adminID string, decidedAt time.Time) error {
	args := m.Called(ctx, signupID, adminID, decidedAt)
	return args.Error(0)
}

// --- Mock UserSvcFacade ---

type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) CreateUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ResolveRole(ctx context.Context, userID string) (domain.Role, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *MockUserService) ListWorkersWithLoad(ctx context.Context) ([]dto.WorkerLoadResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.WorkerLoadResponse), args.Error(1)
}
