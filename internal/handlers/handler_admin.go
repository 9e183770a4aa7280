package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/civicworks/grievance_redressal_app/internal/apperrors"
	"github.com/civicworks/grievance_redressal_app/internal/core/domain"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/core/services"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
	"github.com/civicworks/grievance_redressal_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles the admin surface: assignment decisions, onboarding
// decisions and the worker roster.
type AdminHandler struct {
	assignmentService portssvc.AssignmentSvcFacade
	onboardingService portssvc.OnboardingSvcFacade
	workflowService   portssvc.WorkflowSvcFacade
	userService       portssvc.UserSvcFacade
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as portssvc.AssignmentSvcFacade, os portssvc.OnboardingSvcFacade, ws portssvc.WorkflowSvcFacade, us portssvc.UserSvcFacade) *AdminHandler {
	return &AdminHandler{
		assignmentService: as,
		onboardingService: os,
		workflowService:   ws,
		userService:       us,
	}
}

// registerAdminRoutes sets up the admin routes. The whole group requires the
// ADMIN role.
func registerAdminRoutes(rg *gin.RouterGroup, svcs *portssvc.ServiceContainer) {
	h := NewAdminHandler(svcs.Assignment, svcs.Onboarding, svcs.Workflow, svcs.User)

	admin := rg.Group("/admin", middleware.RequireRole(svcs.User, domain.RoleAdmin))
	{
		admin.POST("/grievances/:grievanceID/assign", h.AssignWorker)
		admin.POST("/grievances/:grievanceID/status", h.Transition)
		admin.GET("/requests", h.ListPendingRequests)
		admin.POST("/requests/:requestID/approve", h.ApproveRequest)
		admin.POST("/requests/:requestID/deny", h.DenyRequest)
		admin.GET("/signups", h.ListSignups)
		admin.POST("/signups/:signupID/approve", h.ApproveSignup)
		admin.POST("/signups/:signupID/reject", h.RejectSignup)
		admin.GET("/workers", h.ListWorkers)
	}
}

// AssignWorker godoc
// @Summary Assign a worker to a grievance
// @Description Binds a worker directly to an unassigned grievance and moves it to Assigned. A grievance that already has a worker is refused.
// @Tags admin
// @Accept json
// @Produce json
// @Param grievanceID path string true "Grievance ID"
// @Param assignment body dto.AssignRequest true "Worker to bind"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already assigned"
// @Failure 422 {object} ErrorResponse "Target is not an active worker"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/grievances/{grievanceID}/assign [post]
func (h *AdminHandler) AssignWorker(c *gin.Context) {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	grievanceID := c.Param("grievanceID")

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	err := h.assignmentService.AssignWorker(c.Request.Context(), grievanceID, req.WorkerID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Grievance or worker not found"})
		case errors.Is(err, apperrors.ErrAlreadyAssigned):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Grievance is already assigned"})
		case errors.Is(err, services.ErrNotAWorker):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Target user is not an active worker"})
		default:
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Failed to assign worker", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to assign worker"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Transition godoc
// @Summary Change grievance status as admin
// @Description Applies a workflow transition with admin authority. Closing a resolved grievance happens here.
// @Tags admin
// @Accept json
// @Produce json
// @Param grievanceID path string true "Grievance ID"
// @Param transition body dto.TransitionRequest true "Target status"
// @Success 200 {object} dto.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/grievances/{grievanceID}/status [post]
func (h *AdminHandler) Transition(c *gin.Context) {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	grievanceID := c.Param("grievanceID")

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	grievance, err := h.workflowService.ApplyTransition(c.Request.Context(), grievanceID, req.Status, adminID, req.Remarks)
	if err != nil {
		respondTransitionError(c, err, grievanceID)
		return
	}

	c.JSON(http.StatusOK, dto.ToGrievanceResponse(grievance))
}

// ListPendingRequests godoc
// @Summary List pending access requests
// @Description Lists every worker bid awaiting a decision, oldest first.
// @Tags admin
// @Produce json
// @Success 200 {array} dto.WorkerRequestResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/requests [get]
func (h *AdminHandler) ListPendingRequests(c *gin.Context) {
	requests, err := h.assignmentService.ListPendingRequests(c.Request.Context())
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list pending requests", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list requests"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkerRequestResponses(requests))
}

// ApproveRequest godoc
// @Summary Approve an access request
// @Description Approves a pending worker bid, binding the worker to the grievance. If the grievance was assigned elsewhere in the meantime the request is marked Superseded and the approval fails.
// @Tags admin
// @Param requestID path string true "Request ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Request already decided or grievance assigned elsewhere"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/requests/{requestID}/approve [post]
func (h *AdminHandler) ApproveRequest(c *gin.Context) {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	requestID := c.Param("requestID")

	err := h.assignmentService.ApproveRequest(c.Request.Context(), requestID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Request not found"})
		case errors.Is(err, services.ErrRequestAlreadyDecided):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Request was already decided"})
		case errors.Is(err, apperrors.ErrAlreadyAssigned):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Grievance was assigned to another worker"})
		default:
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Failed to approve request", slog.String("error", err.Error()), slog.String("request_id", requestID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to approve request"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DenyRequest godoc
// @Summary Deny an access request
// @Description Rejects a pending worker bid. The grievance stays unassigned.
// @Tags admin
// @Param requestID path string true "Request ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Request already decided"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/requests/{requestID}/deny [post]
func (h *AdminHandler) DenyRequest(c *gin.Context) {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	requestID := c.Param("requestID")

	err := h.assignmentService.DenyRequest(c.Request.Context(), requestID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Request not found"})
		case errors.Is(err, services.ErrRequestAlreadyDecided):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Request was already decided"})
		default:
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Failed to deny request", slog.String("error", err.Error()), slog.String("request_id", requestID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to deny request"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSignups godoc
// @Summary List worker signup applications
// @Description Lists signup applications by state. Defaults to Pending.
// @Tags admin
// @Produce json
// @Param status query string false "Request status" Enums(Pending, Approved, Rejected)
// @Success 200 {array} dto.SignupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/signups [get]
func (h *AdminHandler) ListSignups(c *gin.Context) {
	status := domain.RequestStatus(c.DefaultQuery("status", string(domain.RequestPending)))
	switch status {
	case domain.RequestPending, domain.RequestApproved, domain.RequestRejected:
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid status filter"})
		return
	}

	signups, err := h.onboardingService.ListSignups(c.Request.Context(), status)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list signups", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list signups"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSignupResponses(signups))
}

// ApproveSignup godoc
// @Summary Approve a worker signup
// @Description Promotes the applicant to the WORKER role and marks the signup Approved, atomically.
// @Tags admin
// @Param signupID path string true "Signup ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Signup already decided"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/signups/{signupID}/approve [post]
func (h *AdminHandler) ApproveSignup(c *gin.Context) {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	signupID := c.Param("signupID")

	if err := h.onboardingService.ApproveSignup(c.Request.Context(), signupID, adminID); err != nil {
		respondSignupDecisionError(c, err, signupID)
		return
	}

	c.Status(http.StatusNoContent)
}

// RejectSignup godoc
// @Summary Reject a worker signup
// @Description Marks the signup Rejected. The applicant's account keeps its provisional role and cannot sign in on the worker portal.
// @Tags admin
// @Param signupID path string true "Signup ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Signup already decided"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/signups/{signupID}/reject [post]
func (h *AdminHandler) RejectSignup(c *gin.Context) {
	adminID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	signupID := c.Param("signupID")

	if err := h.onboardingService.RejectSignup(c.Request.Context(), signupID, adminID); err != nil {
		respondSignupDecisionError(c, err, signupID)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListWorkers godoc
// @Summary List workers with load
// @Description Lists active workers with the number of open grievances each currently carries.
// @Tags admin
// @Produce json
// @Success 200 {array} dto.WorkerLoadResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /admin/workers [get]
func (h *AdminHandler) ListWorkers(c *gin.Context) {
	workers, err := h.userService.ListWorkersWithLoad(c.Request.Context())
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list workers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list workers"})
		return
	}

	c.JSON(http.StatusOK, workers)
}

func respondSignupDecisionError(c *gin.Context, err error, signupID string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Signup not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Signup was already decided"})
	default:
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to decide signup", slog.String("error", err.Error()), slog.String("signup_id", signupID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to decide signup"})
	}
}
