package services_test

import (
	"context"
	"testing"

	"github.com/civicworks/grievance_redressal_app/internal/apperrors"
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/core/services"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type GrievanceServiceTestSuite struct {
	suite.Suite
	mockGrievanceRepo *MockGrievanceRepository
	mockUserSvc       *MockUserService
	service           portssvc.GrievanceSvcFacade
	ctx               context.Context
}

func (suite *GrievanceServiceTestSuite) SetupTest() {
	suite.mockGrievanceRepo = new(MockGrievanceRepository)
	suite.mockUserSvc = new(MockUserService)
	suite.service = services.NewGrievanceService(suite.mockGrievanceRepo, suite.mockUserSvc, nil)
	suite.ctx = context.Background()
}

func (suite *GrievanceServiceTestSuite) privateGrievance(reporterID string) *domain.Grievance {
	return &domain.Grievance{
		GrievanceID: uuid.NewString(),
		Title:       "Blocked drain behind the school",
		Description: "Standing water for a week",
		Category:    domain.CategorySanitation,
		Priority:    domain.PriorityMedium,
		Status:      domain.StatusSubmitted,
		ReporterID:  reporterID,
		IsPublic:    false,
		Upvotes:     []string{},
		Downvotes:   []string{},
	}
}

func (suite *GrievanceServiceTestSuite) TestSubmitGrievance_Success() {
	reporterID := uuid.NewString()
	req := dto.CreateGrievanceRequest{
		Title:       "Pothole on main street",
		Description: "Deep pothole damaging vehicles",
		Category:    domain.CategoryRoad,
		Priority:    domain.PriorityHigh,
		IsPublic:    true,
	}

	suite.mockGrievanceRepo.On("SaveGrievanceWithLog", suite.ctx,
		mock.MatchedBy(func(g domain.Grievance) bool {
			return g.Status == domain.StatusSubmitted &&
				g.ReporterID == reporterID &&
				g.AssignedWorkerID == nil &&
				len(g.Upvotes) == 0 && len(g.Downvotes) == 0
		}),
		mock.MatchedBy(func(log domain.StatusLogEntry) bool {
			return log.Status == domain.StatusSubmitted && log.UpdatedBy == reporterID
		})).Return(nil).Once()

	grievance, err := suite.service.SubmitGrievance(suite.ctx, req, reporterID)

	suite.Require().NoError(err)
	suite.Require().NotNil(grievance)
	suite.Equal(domain.StatusSubmitted, grievance.Status)
	suite.NotEmpty(grievance.GrievanceID)
	suite.mockGrievanceRepo.AssertExpectations(suite.T())
}

func (suite *GrievanceServiceTestSuite) TestSubmitGrievance_MissingTitle() {
	req := dto.CreateGrievanceRequest{Description: "no title"}

	_, err := suite.service.SubmitGrievance(suite.ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockGrievanceRepo.AssertNotCalled(suite.T(), "SaveGrievanceWithLog", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GrievanceServiceTestSuite) TestGetGrievanceWithTimeline_PublicVisibleToAnyone() {
	grievance := suite.privateGrievance(uuid.NewString())
	grievance.IsPublic = true
	logs := []domain.StatusLogEntry{{LogID: uuid.NewString(), GrievanceID: grievance.GrievanceID, Status: domain.StatusSubmitted}}

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockGrievanceRepo.On("FindStatusLogsByGrievanceID", suite.ctx, grievance.GrievanceID).Return(logs, nil).Once()

	result, timeline, err := suite.service.GetGrievanceWithTimeline(suite.ctx, grievance.GrievanceID, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(grievance.GrievanceID, result.GrievanceID)
	suite.Len(timeline, 1)
	suite.mockUserSvc.AssertNotCalled(suite.T(), "ResolveRole", mock.Anything, mock.Anything)
}

func (suite *GrievanceServiceTestSuite) TestGetGrievanceWithTimeline_PrivateVisibleToReporter() {
	reporterID := uuid.NewString()
	grievance := suite.privateGrievance(reporterID)

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockGrievanceRepo.On("FindStatusLogsByGrievanceID", suite.ctx, grievance.GrievanceID).Return([]domain.StatusLogEntry{}, nil).Once()

	_, _, err := suite.service.GetGrievanceWithTimeline(suite.ctx, grievance.GrievanceID, reporterID)

	suite.Require().NoError(err)
	suite.mockUserSvc.AssertNotCalled(suite.T(), "ResolveRole", mock.Anything, mock.Anything)
}

func (suite *GrievanceServiceTestSuite) TestGetGrievanceWithTimeline_PrivateVisibleToAssignedWorker() {
	workerID := uuid.NewString()
	grievance := suite.privateGrievance(uuid.NewString())
	grievance.Status = domain.StatusAssigned
	grievance.AssignedWorkerID = &workerID

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockGrievanceRepo.On("FindStatusLogsByGrievanceID", suite.ctx, grievance.GrievanceID).Return([]domain.StatusLogEntry{}, nil).Once()

	_, _, err := suite.service.GetGrievanceWithTimeline(suite.ctx, grievance.GrievanceID, workerID)

	suite.Require().NoError(err)
}

func (suite *GrievanceServiceTestSuite) TestGetGrievanceWithTimeline_PrivateVisibleToAdmin() {
	adminID := uuid.NewString()
	otherWorker := uuid.NewString()
	grievance := suite.privateGrievance(uuid.NewString())
	grievance.AssignedWorkerID = &otherWorker

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserSvc.On("ResolveRole", suite.ctx, adminID).Return(domain.RoleAdmin, nil).Once()
	suite.mockGrievanceRepo.On("FindStatusLogsByGrievanceID", suite.ctx, grievance.GrievanceID).Return([]domain.StatusLogEntry{}, nil).Once()

	_, _, err := suite.service.GetGrievanceWithTimeline(suite.ctx, grievance.GrievanceID, adminID)

	suite.Require().NoError(err)
	suite.mockUserSvc.AssertExpectations(suite.T())
}

func (suite *GrievanceServiceTestSuite) TestGetGrievanceWithTimeline_UnassignedVisibleToBrowsingWorker() {
	workerID := uuid.NewString()
	grievance := suite.privateGrievance(uuid.NewString())

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserSvc.On("ResolveRole", suite.ctx, workerID).Return(domain.RoleWorker, nil).Once()
	suite.mockGrievanceRepo.On("FindStatusLogsByGrievanceID", suite.ctx, grievance.GrievanceID).Return([]domain.StatusLogEntry{}, nil).Once()

	_, _, err := suite.service.GetGrievanceWithTimeline(suite.ctx, grievance.GrievanceID, workerID)

	suite.Require().NoError(err)
}

func (suite *GrievanceServiceTestSuite) TestGetGrievanceWithTimeline_PrivateHiddenFromOtherCitizen() {
	strangerID := uuid.NewString()
	grievance := suite.privateGrievance(uuid.NewString())

	suite.mockGrievanceRepo.On("FindGrievanceByID", suite.ctx, grievance.GrievanceID).Return(grievance, nil).Once()
	suite.mockUserSvc.On("ResolveRole", suite.ctx, strangerID).Return(domain.RoleUser, nil).Once()

	_, _, err := suite.service.GetGrievanceWithTimeline(suite.ctx, grievance.GrievanceID, strangerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGrievanceRepo.AssertNotCalled(suite.T(), "FindStatusLogsByGrievanceID", mock.Anything, mock.Anything)
}

func (suite *GrievanceServiceTestSuite) TestListCommunityGrievances_DefaultsPageSize() {
	grievances := []domain.Grievance{*suite.privateGrievance(uuid.NewString())}
	token := "next-page-token"

	suite.mockGrievanceRepo.On("ListPublicGrievances", suite.ctx, 20, (*string)(nil)).Return(grievances, token, nil).Once()

	result, err := suite.service.ListCommunityGrievances(suite.ctx, dto.ListCommunityParams{})

	suite.Require().NoError(err)
	suite.Len(result.Grievances, 1)
	suite.Require().NotNil(result.NextToken)
	suite.Equal(token, *result.NextToken)
	suite.mockGrievanceRepo.AssertExpectations(suite.T())
}

func (suite *GrievanceServiceTestSuite) TestListCommunityGrievances_PassesTokenThrough() {
	token := "opaque-cursor"

	suite.mockGrievanceRepo.On("ListPublicGrievances", suite.ctx, 5, &token).Return([]domain.Grievance{}, nil, nil).Once()

	result, err := suite.service.ListCommunityGrievances(suite.ctx, dto.ListCommunityParams{Limit: 5, NextToken: &token})

	suite.Require().NoError(err)
	suite.Empty(result.Grievances)
	suite.Nil(result.NextToken)
}

func (suite *GrievanceServiceTestSuite) TestListMyGrievances() {
	reporterID := uuid.NewString()
	grievances := []domain.Grievance{*suite.privateGrievance(reporterID)}

	suite.mockGrievanceRepo.On("ListGrievancesByReporter", suite.ctx, reporterID).Return(grievances, nil).Once()

	result, err := suite.service.ListMyGrievances(suite.ctx, reporterID)

	suite.Require().NoError(err)
	suite.Len(result, 1)
}

func (suite *GrievanceServiceTestSuite) TestDeleteGrievance_Success() {
	grievanceID := uuid.NewString()
	reporterID := uuid.NewString()

	suite.mockGrievanceRepo.On("DeleteGrievance", suite.ctx, grievanceID, reporterID).Return(nil).Once()

	err := suite.service.DeleteGrievance(suite.ctx, grievanceID, reporterID)

	suite.Require().NoError(err)
	suite.mockGrievanceRepo.AssertExpectations(suite.T())
}

func (suite *GrievanceServiceTestSuite) TestDeleteGrievance_NotOwner() {
	grievanceID := uuid.NewString()

	suite.mockGrievanceRepo.On("DeleteGrievance", suite.ctx, grievanceID, mock.AnythingOfType("string")).Return(apperrors.ErrForbidden).Once()

	err := suite.service.DeleteGrievance(suite.ctx, grievanceID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func TestGrievanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GrievanceServiceTestSuite))
}
