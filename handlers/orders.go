package handlers

import (
	"net/http"

	"restaurant-api/services"

	"github.com/gin-gonic/gin"
)

// SubmitOrder places a table order (public, rate limited)
func (h *Handler) SubmitOrder(c *gin.Context) {
	var req services.SubmitOrderInput
	if !h.bind(c, &req) {
		return
	}
	order, err := h.svc.Orders.Submit(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders supports ?status=pending,confirmed and ?tableId=
func (h *Handler) ListOrders(c *gin.Context) {
	statuses, err := services.ParseStatuses(c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	orders, err := h.svc.Orders.List(c.Request.Context(), services.OrderFilter{
		Statuses: statuses,
		TableID:  c.Query("tableId"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.svc.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AddOrderItems appends items to an open order from the customer's table
func (h *Handler) AddOrderItems(c *gin.Context) {
	var req services.AddItemsInput
	if !h.bind(c, &req) {
		return
	}
	order, err := h.svc.Orders.AddItems(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
