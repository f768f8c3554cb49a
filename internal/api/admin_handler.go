package api

import (
	"log/slog"
	"net/http"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves account and invite management. Every route is mounted
// behind the admin policy.
type AdminHandler struct {
	userService   service.UserService
	inviteService service.InviteService
	logger        *slog.Logger
}

func NewAdminHandler(userService service.UserService, inviteService service.InviteService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{userService: userService, inviteService: inviteService, logger: logger}
}

type SetRoleRequest struct {
	Role domain.Role `json:"role"`
}

// GET /api/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// PUT /api/users/:id/role
func (h *AdminHandler) SetRole(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Not logged in")
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.SetRole(c.Request.Context(), c.Param("id"), req.Role, actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DELETE /api/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Not logged in")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/invites
func (h *AdminHandler) ListInvites(c *gin.Context) {
	invites, err := h.inviteService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}

// POST /api/invites
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Not logged in")
		return
	}

	invite, err := h.inviteService.Create(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, invite)
}

// DELETE /api/invites/:id
func (h *AdminHandler) DeleteInvite(c *gin.Context) {
	if err := h.inviteService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
