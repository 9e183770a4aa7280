package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/civicworks/grievance_redressal_app/internal/apperrors"
	portssvc "github.com/civicworks/grievance_redressal_app/internal/core/ports/services"
	"github.com/civicworks/grievance_redressal_app/internal/dto"
	"github.com/civicworks/grievance_redressal_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// GrievanceHandler handles the citizen-facing grievance surface.
type GrievanceHandler struct {
	grievanceService portssvc.GrievanceSvcFacade
	votingService    portssvc.VotingSvcFacade
}

// NewGrievanceHandler creates a new GrievanceHandler.
func NewGrievanceHandler(gs portssvc.GrievanceSvcFacade, vs portssvc.VotingSvcFacade) *GrievanceHandler {
	return &GrievanceHandler{
		grievanceService: gs,
		votingService:    vs,
	}
}

// RegisterGrievanceRoutes sets up the citizen grievance routes.
func RegisterGrievanceRoutes(rg *gin.RouterGroup, gs portssvc.GrievanceSvcFacade, vs portssvc.VotingSvcFacade) {
	h := NewGrievanceHandler(gs, vs)

	grievances := rg.Group("/grievances")
	{
		grievances.POST("", h.Submit)
		grievances.GET("/mine", h.ListMine)
		grievances.GET("/community", h.ListCommunity)
		grievances.GET("/:grievanceID", h.GetWithTimeline)
		grievances.DELETE("/:grievanceID", h.Delete)
		grievances.POST("/:grievanceID/vote", h.Vote)
	}
}

// Submit godoc
// @Summary Submit a grievance
// @Description Creates a new grievance in status Submitted together with its first audit trail entry.
// @Tags grievances
// @Accept json
// @Produce json
// @Param grievance body dto.CreateGrievanceRequest true "Grievance details"
// @Success 201 {object} dto.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /grievances [post]
func (h *GrievanceHandler) Submit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	reporterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.CreateGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	grievance, err := h.grievanceService.SubmitGrievance(c.Request.Context(), req, reporterID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("Failed to submit grievance", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit grievance"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToGrievanceResponse(grievance))
}

// ListMine godoc
// @Summary List my grievances
// @Description Lists every grievance the authenticated citizen has reported.
// @Tags grievances
// @Produce json
// @Success 200 {array} dto.GrievanceResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /grievances/mine [get]
func (h *GrievanceHandler) ListMine(c *gin.Context) {
	reporterID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	grievances, err := h.grievanceService.ListMyGrievances(c.Request.Context(), reporterID)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list grievances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list grievances"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGrievanceResponses(grievances))
}

// ListCommunity godoc
// @Summary List public grievances
// @Description Lists publicly visible grievances, newest first, token-paginated.
// @Tags grievances
// @Produce json
// @Param limit query int false "Page size (default 20)"
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListGrievancesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /grievances/community [get]
func (h *GrievanceHandler) ListCommunity(c *gin.Context) {
	var params dto.ListCommunityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	page, err := h.grievanceService.ListCommunityGrievances(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid pagination token"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to list community grievances", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list grievances"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetWithTimeline godoc
// @Summary Get a grievance with its audit trail
// @Description Returns a grievance and its chronological status log. Private grievances are visible only to the reporter, the assigned worker and administrators.
// @Tags grievances
// @Produce json
// @Param grievanceID path string true "Grievance ID"
// @Success 200 {object} dto.GrievanceTimelineResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /grievances/{grievanceID} [get]
func (h *GrievanceHandler) GetWithTimeline(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	grievanceID := c.Param("grievanceID")

	grievance, logs, err := h.grievanceService.GetGrievanceWithTimeline(c.Request.Context(), grievanceID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Grievance not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Not allowed to view this grievance"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to get grievance", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get grievance"})
		return
	}

	c.JSON(http.StatusOK, dto.GrievanceTimelineResponse{
		Grievance: dto.ToGrievanceResponse(grievance),
		Timeline:  dto.ToStatusLogResponses(logs),
	})
}

// Delete godoc
// @Summary Delete my grievance
// @Description Removes a grievance owned by the authenticated citizen, along with its audit trail.
// @Tags grievances
// @Param grievanceID path string true "Grievance ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /grievances/{grievanceID} [delete]
func (h *GrievanceHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	grievanceID := c.Param("grievanceID")

	err := h.grievanceService.DeleteGrievance(c.Request.Context(), grievanceID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Grievance not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Only the reporter may delete a grievance"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to delete grievance", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete grievance"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Vote godoc
// @Summary Vote on a grievance
// @Description Toggles the caller's up or down vote. Voting the same direction twice removes the vote; voting the opposite direction moves it.
// @Tags grievances
// @Accept json
// @Produce json
// @Param grievanceID path string true "Grievance ID"
// @Param vote body dto.VoteRequest true "Vote direction"
// @Success 200 {object} dto.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /grievances/{grievanceID}/vote [post]
func (h *GrievanceHandler) Vote(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	grievanceID := c.Param("grievanceID")

	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	grievance, err := h.votingService.Vote(c.Request.Context(), grievanceID, userID, req.Direction)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Grievance not found"})
			return
		}
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid vote direction"})
			return
		}
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to apply vote", slog.String("error", err.Error()), slog.String("grievance_id", grievanceID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to apply vote"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGrievanceResponse(grievance))
}
