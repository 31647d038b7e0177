package handlers

import (
	"net/http"

	"restaurant-api/middleware"

	"github.com/gin-gonic/gin"
)

// ClaimOrder marks the caller as the staff member handling the order.
// A claim held by someone else answers 409 with claimedBy.
func (h *Handler) ClaimOrder(c *gin.Context) {
	order, err := h.svc.Claims.ClaimOrder(c.Request.Context(), c.Param("id"), staffID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ReleaseOrder(c *gin.Context) {
	order, err := h.svc.Claims.ReleaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ClaimCall(c *gin.Context) {
	call, err := h.svc.Claims.ClaimCall(c.Request.Context(), c.Param("id"), staffID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (h *Handler) ReleaseCall(c *gin.Context) {
	call, err := h.svc.Claims.ReleaseCall(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (h *Handler) CompleteCall(c *gin.Context) {
	call, err := h.svc.Claims.CompleteCall(c.Request.Context(), c.Param("id"), staffID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func staffID(c *gin.Context) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}
