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

// WorkerHandler handles the worker-facing surface: browsing unassigned
// grievances, bidding for them and driving the work statuses.
type WorkerHandler struct {
	grievanceService  portssvc.GrievanceSvcFacade
	workflowService   portssvc.WorkflowSvcFacade
	assignmentService portssvc.AssignmentSvcFacade
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(gs portssvc.GrievanceSvcFacade, ws portssvc.WorkflowSvcFacade, as portssvc.AssignmentSvcFacade) *WorkerHandler {
	return &WorkerHandler{
		grievanceService:  gs,
		workflowService:   ws,
		assignmentService: as,
	}
}

// registerWorkerRoutes sets up the worker routes. The whole group requires
// the active WORKER role.
func registerWorkerRoutes(rg *gin.RouterGroup, userSvc portssvc.UserSvcFacade, gs portssvc.GrievanceSvcFacade, ws portssvc.WorkflowSvcFacade, as portssvc.AssignmentSvcFacade) {
	h := NewWorkerHandler(gs, ws, as)

	worker := rg.Group("/worker", middleware.RequireRole(userSvc, domain.RoleWorker))
	{
		worker.GET("/grievances/unassigned", h.ListUnassigned)
		worker.GET("/grievances/assigned", h.ListAssigned)
		worker.POST("/grievances/:grievanceID/request", h.RequestAccess)
		worker.POST("/grievances/:grievanceID/status", h.Transition)
		worker.POST("/grievances/:grievanceID/notes", h.AddProgressNote)
		worker.GET("/requests", h.ListMyRequests)
	}
}

// ListUnassigned godoc
// @Summary List unassigned grievances
// @Description Lists grievances with no worker bound, highest priority first.
// @Tags worker
// @Produce json
// @Success 200 {array} dto.GrievanceResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /worker/grievances/unassigned [get]
func (h *WorkerHandler) ListUnassigned(c *gin.Context) {
	grievances, err := h.grievanceService.ListUnassignedGrievances(c.Request.Context())
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list unassigned grievances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list grievances"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGrievanceResponses(grievances))
}

// ListAssigned godoc
// @Summary List my assigned grievances
// @Description Lists grievances currently bound to the authenticated worker.
// @Tags worker
// @Produce json
// @Success 200 {array} dto.GrievanceResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /worker/grievances/assigned [get]
func (h *WorkerHandler) ListAssigned(c *gin.Context) {
	workerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	grievances, err := h.grievanceService.ListAssignedGrievances(c.Request.Context(), workerID)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list assigned grievances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list grievances"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGrievanceResponses(grievances))
}

// RequestAccess godoc
// @Summary Request assignment to a grievance
// @Description Files a pending bid for an unassigned grievance. At most one pending bid per worker per grievance.
// @Tags worker
// @Accept json
// @Produce json
// @Param grievanceID path string true "Grievance ID"
// @Param request body dto.AccessRequestRequest true "Reason for the request"
// @Success 201 {object} dto.WorkerRequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Grievance already assigned or duplicate bid"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /worker/grievances/{grievanceID}/request [post]
func (h *WorkerHandler) RequestAccess(c *gin.Context) {
	workerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	grievanceID := c.Param("grievanceID")

	var req dto.AccessRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	request, err := h.assignmentService.RequestAccess(c.Request.Context(), grievanceID, workerID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Grievance not found"})
		case errors.Is(err, apperrors.ErrAlreadyAssigned):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Grievance is already assigned"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "A pending request for this grievance already exists"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			logger := middleware.GetLoggerFromCtx(c.Request.Context())
			logger.Error("Failed to file access request", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to file request"})
		}
		return
	}

	resp := dto.ToWorkerRequestResponse(request)
	c.JSON(http.StatusCreated, resp)
}

// Transition godoc
// @Summary Change grievance status
// @Description Applies an explicit workflow transition. Only the assigned worker may move work forward; backward or skipping moves are refused.
// @Tags worker
// @Accept json
// @Produce json
// @Param grievanceID path string true "Grievance ID"
// @Param transition body dto.TransitionRequest true "Target status"
// @Success 200 {object} dto.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Illegal transition or concurrent update"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /worker/grievances/{grievanceID}/status [post]
func (h *WorkerHandler) Transition(c *gin.Context) {
	workerID, ok := middleware.GetUserIDFromContext(c)
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

	grievance, err := h.workflowService.ApplyTransition(c.Request.Context(), grievanceID, req.Status, workerID, req.Remarks)
	if err != nil {
		respondTransitionError(c, err, grievanceID)
		return
	}

	c.JSON(http.StatusOK, dto.ToGrievanceResponse(grievance))
}

// AddProgressNote godoc
// @Summary Add a progress note
// @Description Appends a free-text note to the audit trail. A note on a grievance still in Assigned moves it to In Progress.
// @Tags worker
// @Accept json
// @Produce json
// @Param grievanceID path string true "Grievance ID"
// @Param note body dto.ProgressNoteRequest true "Note text"
// @Success 200 {object} dto.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Work already resolved or closed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /worker/grievances/{grievanceID}/notes [post]
func (h *WorkerHandler) AddProgressNote(c *gin.Context) {
	workerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	grievanceID := c.Param("grievanceID")

	var req dto.ProgressNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	grievance, err := h.workflowService.AddProgressNote(c.Request.Context(), grievanceID, workerID, req.Note)
	if err != nil {
		if errors.Is(err, services.ErrNoteAfterResolution) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Cannot add notes after work has finished"})
			return
		}
		respondTransitionError(c, err, grievanceID)
		return
	}

	c.JSON(http.StatusOK, dto.ToGrievanceResponse(grievance))
}

// ListMyRequests godoc
// @Summary List my access requests
// @Description Lists the authenticated worker's bid history, newest first.
// @Tags worker
// @Produce json
// @Success 200 {array} dto.WorkerRequestResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /worker/requests [get]
func (h *WorkerHandler) ListMyRequests(c *gin.Context) {
	workerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	requests, err := h.assignmentService.ListRequestsByWorker(c.Request.Context(), workerID)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list worker requests", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list requests"})
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkerRequestResponses(requests))
}

// respondTransitionError maps workflow errors to responses.
func respondTransitionError(c *gin.Context, err error, grievanceID string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Grievance not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Not allowed to change this grievance"})
	case errors.Is(err, apperrors.ErrIllegalTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Illegal status transition"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Grievance was updated concurrently, retry"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Workflow operation failed", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update grievance"})
	}
}
