package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devpulse/tracker-api/internal/models"
	"github.com/devpulse/tracker-api/internal/service"
	appErrors "github.com/devpulse/tracker-api/pkg/errors"
	"github.com/devpulse/tracker-api/pkg/response"
)

// IssueHandler exposes issue operations scoped to the projects the caller owns.
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler creates a new handler.
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

// Create godoc
// @Summary Open issue
// @Tags Issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateIssueRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid issue payload"))
		return
	}

	issue, err := h.issues.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, issue, nil)
}

// ListByProject godoc
// @Summary List issues in a project
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Param status query string false "Filter by status"
// @Param search query string false "Substring match on title"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id}/issues [get]
func (h *IssueHandler) ListByProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	filter := models.IssueFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	issues, err := h.issues.ListByProject(c.Request.Context(), userID, projectID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issues, nil)
}

// Get godoc
// @Summary Get issue
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	issue, err := h.issues.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issue, nil)
}

// Update godoc
// @Summary Update issue
// @Tags Issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Param payload body models.UpdateIssueRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id} [patch]
func (h *IssueHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	var req models.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid issue payload"))
		return
	}

	issue, err := h.issues.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issue, nil)
}

// Delete godoc
// @Summary Delete issue
// @Tags Issues
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	if err := h.issues.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
