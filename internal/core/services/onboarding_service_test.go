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

type OnboardingServiceTestSuite struct {
	suite.Suite
	mockUserRepo   *MockUserRepository
	mockSignupRepo *MockSignupRepository
	service        portssvc.OnboardingSvcFacade
	ctx            context.Context
}

func (suite *OnboardingServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockSignupRepo = new(MockSignupRepository)
	suite.service = services.NewOnboardingService(suite.mockUserRepo, suite.mockSignupRepo, nil)
	suite.ctx = context.Background()
}

func (suite *OnboardingServiceTestSuite) signupRequest() dto.RegisterWorkerRequest {
	return dto.RegisterWorkerRequest{
		Name:       "New Worker",
		Email:      "new.worker@example.com",
		Password:   "a-long-password",
		Department: "Sanitation",
		Phone:      "555-0100",
	}
}

func (suite *OnboardingServiceTestSuite) TestRegisterWorker_CreatesPendingAccountWithSignup() {
	req := suite.signupRequest()

	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, req.Email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockSignupRepo.On("CreateWorkerWithSignup", suite.ctx,
		mock.MatchedBy(func(user domain.User) bool {
			return user.Role == domain.RoleWorkerPending &&
				user.Email == req.Email &&
				user.Department == req.Department &&
				user.PasswordHash != "" &&
				user.PasswordHash != req.Password
		}),
		mock.MatchedBy(func(signup domain.WorkerSignupRequest) bool {
			return signup.Status == domain.RequestPending &&
				signup.Email == req.Email &&
				signup.WorkerID != ""
		})).Return(nil).Once()

	user, err := suite.service.RegisterWorker(suite.ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(domain.RoleWorkerPending, user.Role)
	suite.mockSignupRepo.AssertExpectations(suite.T())
}

func (suite *OnboardingServiceTestSuite) TestRegisterWorker_DuplicateEmail() {
	req := suite.signupRequest()
	existing := &domain.User{UserID: uuid.NewString(), Email: req.Email, Role: domain.RoleUser}

	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, req.Email).Return(existing, nil).Once()

	_, err := suite.service.RegisterWorker(suite.ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockSignupRepo.AssertNotCalled(suite.T(), "CreateWorkerWithSignup", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestApproveSignup_Success() {
	signupID := uuid.NewString()
	adminID := uuid.NewString()

	suite.mockSignupRepo.On("ApproveSignupAndPromote", suite.ctx, signupID, adminID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.ApproveSignup(suite.ctx, signupID, adminID)

	suite.Require().NoError(err)
	suite.mockSignupRepo.AssertExpectations(suite.T())
}

func (suite *OnboardingServiceTestSuite) TestApproveSignup_AlreadyDecided() {
	signupID := uuid.NewString()

	suite.mockSignupRepo.On("ApproveSignupAndPromote", suite.ctx, signupID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrConflict).Once()

	err := suite.service.ApproveSignup(suite.ctx, signupID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *OnboardingServiceTestSuite) TestRejectSignup_LeavesRoleUntouched() {
	signupID := uuid.NewString()
	adminID := uuid.NewString()

	suite.mockSignupRepo.On("RejectSignup", suite.ctx, signupID, adminID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.RejectSignup(suite.ctx, signupID, adminID)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockSignupRepo.AssertExpectations(suite.T())
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_CitizenOnCitizenPortal() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleUser}

	role, err := suite.service.AuthorizePortal(suite.ctx, user, dto.PortalCitizen)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleUser, role)
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_WorkerOnCitizenPortal() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleWorker}

	_, err := suite.service.AuthorizePortal(suite.ctx, user, dto.PortalCitizen)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrWrongPortal)
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_ActiveWorker() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleWorker}

	role, err := suite.service.AuthorizePortal(suite.ctx, user, dto.PortalWorker)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleWorker, role)
	suite.mockSignupRepo.AssertNotCalled(suite.T(), "FindSignupByWorkerID", mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_PendingWorkerReconciledOnSignIn() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleWorkerPending}
	signup := &domain.WorkerSignupRequest{
		SignupID: uuid.NewString(),
		WorkerID: user.UserID,
		Status:   domain.RequestApproved,
	}

	suite.mockSignupRepo.On("FindSignupByWorkerID", suite.ctx, user.UserID).Return(signup, nil).Once()
	suite.mockUserRepo.On("UpdateUserRole", suite.ctx, user.UserID, domain.RoleWorker, user.UserID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	role, err := suite.service.AuthorizePortal(suite.ctx, user, dto.PortalWorker)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleWorker, role)
	suite.Equal(domain.RoleWorker, user.Role)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_PendingWorkerStillPending() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleWorkerPending}
	signup := &domain.WorkerSignupRequest{
		SignupID: uuid.NewString(),
		WorkerID: user.UserID,
		Status:   domain.RequestPending,
	}

	suite.mockSignupRepo.On("FindSignupByWorkerID", suite.ctx, user.UserID).Return(signup, nil).Once()

	_, err := suite.service.AuthorizePortal(suite.ctx, user, dto.PortalWorker)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrPendingApproval)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_RejectedWorker() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleWorkerPending}
	signup := &domain.WorkerSignupRequest{
		SignupID: uuid.NewString(),
		WorkerID: user.UserID,
		Status:   domain.RequestRejected,
	}

	suite.mockSignupRepo.On("FindSignupByWorkerID", suite.ctx, user.UserID).Return(signup, nil).Once()

	_, err := suite.service.AuthorizePortal(suite.ctx, user, dto.PortalWorker)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSignupRejected)
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_CitizenOnWorkerPortal() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleUser}

	_, err := suite.service.AuthorizePortal(suite.ctx, user, dto.PortalWorker)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrWrongPortal)
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_AdminPortal() {
	admin := &domain.User{UserID: uuid.NewString(), Role: domain.RoleAdmin}
	citizen := &domain.User{UserID: uuid.NewString(), Role: domain.RoleUser}

	role, err := suite.service.AuthorizePortal(suite.ctx, admin, dto.PortalAdmin)
	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, role)

	_, err = suite.service.AuthorizePortal(suite.ctx, citizen, dto.PortalAdmin)
	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrWrongPortal)
}

func (suite *OnboardingServiceTestSuite) TestAuthorizePortal_UnknownPortal() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleUser}

	_, err := suite.service.AuthorizePortal(suite.ctx, user, dto.Portal("kiosk"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestOnboardingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OnboardingServiceTestSuite))
}
