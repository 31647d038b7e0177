package handlers

import (
	"net/http"
	"strconv"

	"restaurant-api/services"

	"github.com/gin-gonic/gin"
)

// UpsertCustomer registers a guest visit by email (public)
func (h *Handler) UpsertCustomer(c *gin.Context) {
	var req services.UpsertCustomerInput
	if !h.bind(c, &req) {
		return
	}
	customer, created, err := h.svc.Customers.Upsert(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, customer)
}

// ListCustomers supports ?search=&sortBy=&order=&page=&limit=
func (h *Handler) ListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	result, err := h.svc.Customers.List(c.Request.Context(), services.CustomerQuery{
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.svc.Customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
