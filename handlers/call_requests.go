package handlers

import (
	"net/http"

	"restaurant-api/models"
	"restaurant-api/services"

	"github.com/gin-gonic/gin"
)

// CreateCallRequest lets a guest ask for the bill, napkins or cleaning
func (h *Handler) CreateCallRequest(c *gin.Context) {
	var req services.CreateCallInput
	if !h.bind(c, &req) {
		return
	}
	call, err := h.svc.Calls.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, call)
}

func (h *Handler) ListCallRequests(c *gin.Context) {
	calls, err := h.svc.Calls.List(c.Request.Context(), models.CallStatus(c.Query("status")), c.Query("tableId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(calls))
}
