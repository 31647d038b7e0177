package handlers

import (
	"net/http"

	"restaurant-api/models"
	"restaurant-api/services"
	"restaurant-api/statemachine"

	"github.com/gin-gonic/gin"
)

type UpdateOrderStatusRequest struct {
	Status        string `json:"status"`
	QueuePosition *int   `json:"queuePosition"`
}

// UpdateOrderStatus moves an order to the requested status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if !h.bind(c, &req) {
		return
	}

	order, err := h.svc.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.QueuePosition)
	if err != nil {
		if e, ok := services.AsError(err); ok && e.Kind == services.KindConflict {
			current := models.OrderStatus(e.Fields["currentStatus"])
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":           "Invalid state transition",
				"currentStatus":   current,
				"requested":       req.Status,
				"reason":          e.Message,
				"validNextStates": statemachine.ValidTransitionsFrom(current),
			})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetStateMachineInfo documents the recommended kitchen flow
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stateMachine":      statemachine.GetAllTransitions(),
		"settableStatuses":  statemachine.SettableStatuses(),
		"timestamps":        statemachine.Stamps(),
		"terminalStates":    []models.OrderStatus{models.StatusCompleted},
		"strictTransitions": h.svc.Orders.Strict(),
		"description":       "Table order lifecycle",
	})
}
