package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devpulse/tracker-api/internal/models"
	"github.com/devpulse/tracker-api/internal/service"
	appErrors "github.com/devpulse/tracker-api/pkg/errors"
	"github.com/devpulse/tracker-api/pkg/response"
)

// CommentHandler exposes comment operations on issues the caller owns.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler creates a new handler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Create godoc
// @Summary Add comment
// @Tags Comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Param payload body models.CreateCommentRequest true "Comment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	issueID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), userID, issueID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, comment, nil)
}

// ListByIssue godoc
// @Summary List comments on an issue
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Issue ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /issues/{id}/comments [get]
func (h *CommentHandler) ListByIssue(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	issueID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.ErrNotFound)
		return
	}

	comments, err := h.comments.ListByIssue(c.Request.Context(), userID, issueID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, comments, nil)
}

// Delete godoc
// @Summary Delete comment
// @Tags Comments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
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

	if err := h.comments.Delete(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
