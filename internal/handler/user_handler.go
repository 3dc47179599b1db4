package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devpulse/tracker-api/internal/service"
	appErrors "github.com/devpulse/tracker-api/pkg/errors"
	"github.com/devpulse/tracker-api/pkg/response"
)

// UserHandler exposes the authenticated user's profile and account deletion.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me godoc
// @Summary Get current user
// @Description Returns the authenticated user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, info, nil)
}

// DeleteAccount godoc
// @Summary Delete current account
// @Description Removes the user and everything they own
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/account [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
