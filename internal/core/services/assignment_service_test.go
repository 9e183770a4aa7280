package services_test

import (
	"context"
	"testing"

	"github.com/civicworks/grievance_redressal_app/internal/apperrors"
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/core/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AssignmentServiceTestSuite struct {
	suite.Suite
	mockGrievanceRepo *MockGrievanceRepository
	mockRequestRepo   *MockWorkerRequestRepository
	mockUserRepo      *MockUserRepository
	service           portssvc.AssignmentSvcFacade
	ctx               context.Context
}

func (suite *AssignmentServiceTestSuite) SetupTest() {
	suite.mockGrievanceRepo = new(MockGrievanceRepository)
	suite.mockRequestRepo = new(MockWorkerRequestRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewAssignmentService(suite.mockGrievanceRepo, suite.mockRequestRepo, suite.mockUserRepo, nil)
	suite.ctx = context.Background()
}

func (suite *AssignmentServiceTestSuite) unassignedGrievance() *domain.Grievance {
	return &domain.Grievance{
		GrievanceID: uuid.NewString(),
		Title:       "Burst water main near the market",
		Category:    domain.CategoryWater,
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusSubmitted,
		ReporterID:  uuid.NewString(),
		IsPublic:    true,
		Upvotes:     []string{},
		Downvotes:   []string{},
	}
}

func (suite *AssignmentServiceTestSuite) activeWorker() *domain.User {
	return &domain.User{
		UserID: uuid.NewString(),
		Name:   "Field Worker",
		Email:  "worker@example.com",
		Role:   domain.RoleWorker,
	}
}

func (suite *AssignmentServiceTestSuite) pendingRequest(grievanceID, workerID string) *domain.WorkerRequest {
	return &domain.WorkerRequest{
		RequestID:   uuid.NewString(),
		GrievanceID: grievanceID,
		WorkerID:    workerID,
		Reason:      "I cover this ward",
		Status:      domain.RequestPending,
	}
}

func (suite *AssignmentServiceTestSuite) TestAssignWorker_Success() {
	grievance := suite.unassignedGrievance()
	worker := suite.activeWorker()
	adminID := uuid.NewString()

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, worker.UserID).Return(worker, nil).Once()
	suite.mockGrievanceRepo.On("AssignGrievanceWithLog", suite.ctx, grievance.GrievanceID, worker.UserID,
		mock.MatchedBy(func(log domain.StatusLogEntry) bool {
			return log.Status == domain.StatusAssigned && log.UpdatedBy == adminID
		}), (*string)(nil), adminID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.AssignWorker(suite.ctx, grievance.GrievanceID, worker.UserID, adminID)

	suite.Require().NoError(err)
	suite.mockGrievanceRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AssignmentServiceTestSuite) TestAssignWorker_AlreadyAssignedFastPath() {
	grievance := suite.unassignedGrievance()
	boundWorker := uuid.NewString()
	grievance.AssignedWorkerID = &boundWorker
	grievance.Status = domain.StatusAssigned

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()

	err := suite.service.AssignWorker(suite.ctx, grievance.GrievanceID, uuid.NewString(), uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyAssigned)
	suite.mockGrievanceRepo.AssertNotCalled(suite.T(), "AssignGrievanceWithLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestAssignWorker_LosesConcurrentBind() {
	grievance := suite.unassignedGrievance()
	worker := suite.activeWorker()
	adminID := uuid.NewString()

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, worker.UserID).Return(worker, nil).Once()
	// Another admin won the compare-and-set between the read and the bind.
	suite.mockGrievanceRepo.On("AssignGrievanceWithLog", suite.ctx, grievance.GrievanceID, worker.UserID,
		mock.AnythingOfType("domain.StatusLogEntry"), (*string)(nil), adminID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrAlreadyAssigned).Once()

	err := suite.service.AssignWorker(suite.ctx, grievance.GrievanceID, worker.UserID, adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyAssigned)
}

func (suite *AssignmentServiceTestSuite) TestAssignWorker_TargetNotAWorker() {
	grievance := suite.unassignedGrievance()
	citizen := suite.activeWorker()
	citizen.Role = domain.RoleUser

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, citizen.UserID).Return(citizen, nil).Once()

	err := suite.service.AssignWorker(suite.ctx, grievance.GrievanceID, citizen.UserID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotAWorker)
	suite.mockGrievanceRepo.AssertNotCalled(suite.T(), "AssignGrievanceWithLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestAssignWorker_PendingWorkerRejected() {
	grievance := suite.unassignedGrievance()
	pending := suite.activeWorker()
	pending.Role = domain.RoleWorkerPending

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, pending.UserID).Return(pending, nil).Once()

	err := suite.service.AssignWorker(suite.ctx, grievance.GrievanceID, pending.UserID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotAWorker)
}

func (suite *AssignmentServiceTestSuite) TestRequestAccess_Success() {
	grievance := suite.unassignedGrievance()
	worker := suite.activeWorker()

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, worker.UserID).Return(worker, nil).Once()
	suite.mockRequestRepo.On("FindPendingRequest", suite.ctx, grievance.GrievanceID, worker.UserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRequestRepo.On("SaveWorkerRequest", suite.ctx, mock.MatchedBy(func(req domain.WorkerRequest) bool {
		return req.GrievanceID == grievance.GrievanceID &&
			req.WorkerID == worker.UserID &&
			req.Status == domain.RequestPending &&
			req.Reason == "I cover this ward"
	})).Return(nil).Once()

	request, err := suite.service.RequestAccess(suite.ctx, grievance.GrievanceID, worker.UserID, "I cover this ward")

	suite.Require().NoError(err)
	suite.Require().NotNil(request)
	suite.Equal(domain.RequestPending, request.Status)
	suite.NotEmpty(request.RequestID)
	suite.mockRequestRepo.AssertExpectations(suite.T())
}

func (suite *AssignmentServiceTestSuite) TestRequestAccess_EmptyReasonRejected() {
	_, err := suite.service.RequestAccess(suite.ctx, uuid.NewString(), uuid.NewString(), "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockGrievanceRepo.AssertNotCalled(suite.T(), "FindGrievanceByID", mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestRequestAccess_GrievanceAlreadyAssigned() {
	grievance := suite.unassignedGrievance()
	boundWorker := uuid.NewString()
	grievance.AssignedWorkerID = &boundWorker

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()

	_, err := suite.service.RequestAccess(suite.ctx, grievance.GrievanceID, uuid.NewString(), "let me take it")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyAssigned)
	suite.mockRequestRepo.AssertNotCalled(suite.T(), "SaveWorkerRequest", mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestRequestAccess_DuplicatePendingRequest() {
	grievance := suite.unassignedGrievance()
	worker := suite.activeWorker()
	existing := suite.pendingRequest(grievance.GrievanceID, worker.UserID)

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, worker.UserID).Return(worker, nil).Once()
	suite.mockRequestRepo.On("FindPendingRequest", suite.ctx, grievance.GrievanceID, worker.UserID).Return(existing, nil).Once()

	_, err := suite.service.RequestAccess(suite.ctx, grievance.GrievanceID, worker.UserID, "second bid")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockRequestRepo.AssertNotCalled(suite.T(), "SaveWorkerRequest", mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestApproveRequest_Success() {
	worker := suite.activeWorker()
	grievance := suite.unassignedGrievance()
	request := suite.pendingRequest(grievance.GrievanceID, worker.UserID)
	adminID := uuid.NewString()

	suite.mockRequestRepo.On("FindWorkerRequestByID", suite.ctx, request.RequestID).Return(request, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, worker.UserID).Return(worker, nil).Once()
	suite.mockGrievanceRepo.On("AssignGrievanceWithLog", suite.ctx, grievance.GrievanceID, worker.UserID,
		mock.AnythingOfType("domain.StatusLogEntry"), &request.RequestID, adminID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	// A successful approval re-reads the grievance to broadcast its new shape.
	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()

	err := suite.service.ApproveRequest(suite.ctx, request.RequestID, adminID)

	suite.Require().NoError(err)
	suite.mockGrievanceRepo.AssertExpectations(suite.T())
	suite.mockRequestRepo.AssertExpectations(suite.T())
}

func (suite *AssignmentServiceTestSuite) TestApproveRequest_AlreadyDecided() {
	worker := suite.activeWorker()
	request := suite.pendingRequest(uuid.NewString(), worker.UserID)
	request.Status = domain.RequestRejected

	suite.mockRequestRepo.On("FindWorkerRequestByID", suite.ctx, request.RequestID).Return(request, nil).Once()

	err := suite.service.ApproveRequest(suite.ctx, request.RequestID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRequestAlreadyDecided)
	suite.mockGrievanceRepo.AssertNotCalled(suite.T(), "AssignGrievanceWithLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestApproveRequest_RaceLossMarksSuperseded() {
	worker := suite.activeWorker()
	grievance := suite.unassignedGrievance()
	request := suite.pendingRequest(grievance.GrievanceID, worker.UserID)
	adminID := uuid.NewString()

	suite.mockRequestRepo.On("FindWorkerRequestByID", suite.ctx, request.RequestID).Return(request, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, worker.UserID).Return(worker, nil).Once()
	suite.mockGrievanceRepo.On("AssignGrievanceWithLog", suite.ctx, grievance.GrievanceID, worker.UserID,
		mock.AnythingOfType("domain.StatusLogEntry"), &request.RequestID, adminID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrAlreadyAssigned).Once()
	suite.mockRequestRepo.On("MarkWorkerRequestDecided", suite.ctx, request.RequestID,
		domain.RequestSuperseded, adminID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.ApproveRequest(suite.ctx, request.RequestID, adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyAssigned)
	suite.mockRequestRepo.AssertExpectations(suite.T())
}

func (suite *AssignmentServiceTestSuite) TestApproveRequest_RequestNotFound() {
	requestID := uuid.NewString()

	suite.mockRequestRepo.On("FindWorkerRequestByID", suite.ctx, requestID).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ApproveRequest(suite.ctx, requestID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AssignmentServiceTestSuite) TestDenyRequest_Success() {
	requestID := uuid.NewString()
	adminID := uuid.NewString()

	suite.mockRequestRepo.On("MarkWorkerRequestDecided", suite.ctx, requestID,
		domain.RequestRejected, adminID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.DenyRequest(suite.ctx, requestID, adminID)

	suite.Require().NoError(err)
	suite.mockRequestRepo.AssertExpectations(suite.T())
	suite.mockGrievanceRepo.AssertNotCalled(suite.T(), "AssignGrievanceWithLog", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AssignmentServiceTestSuite) TestDenyRequest_AlreadyDecided() {
	requestID := uuid.NewString()

	suite.mockRequestRepo.On("MarkWorkerRequestDecided", suite.ctx, requestID,
		domain.RequestRejected, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrConflict).Once()

	err := suite.service.DenyRequest(suite.ctx, requestID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrRequestAlreadyDecided)
}

func (suite *AssignmentServiceTestSuite) TestListRequestsByWorker() {
	workerID := uuid.NewString()
	history := []domain.WorkerRequest{*suite.pendingRequest(uuid.NewString(), workerID)}

	suite.mockRequestRepo.On("ListWorkerRequestsByWorker", suite.ctx, workerID).Return(history, nil).Once()

	requests, err := suite.service.ListRequestsByWorker(suite.ctx, workerID)

	suite.Require().NoError(err)
	suite.Len(requests, 1)
}

func (suite *AssignmentServiceTestSuite) TestListPendingRequests_RepoError() {
	suite.mockRequestRepo.On("ListWorkerRequestsByStatus", suite.ctx, domain.RequestPending).Return(nil, assert.AnError).Once()

	_, err := suite.service.ListPendingRequests(suite.ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
}

func TestAssignmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentServiceTestSuite))
}
