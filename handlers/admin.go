package handlers

import (
	"net/http"

	"restaurant-api/middleware"
	"restaurant-api/models"
	"restaurant-api/services"

	"github.com/gin-gonic/gin"
)

// ListUsers returns staff accounts, optionally ?role=
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.Users.List(c.Request.Context(), models.UserRole(c.Query("role")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(users))
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if !h.bind(c, &req) {
		return
	}
	user, err := h.svc.Users.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser is open to any signed-in user; the service limits non-admins
// to their own online flag.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req services.UpdateUserInput
	if !h.bind(c, &req) {
		return
	}
	user, err := h.svc.Users.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.Users.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
