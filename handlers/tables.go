package handlers

import (
	"net/http"

	"restaurant-api/models"
	"restaurant-api/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.svc.Tables.List(c.Request.Context(), models.TableStatus(c.Query("status")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(tables))
}

func (h *Handler) GetTable(c *gin.Context) {
	table, err := h.svc.Tables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// GetTableLocator returns the URL the table's QR code should encode
func (h *Handler) GetTableLocator(c *gin.Context) {
	table, err := h.svc.Tables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tableId":   table.ID,
		"tableName": table.Name,
		"url":       table.QRCodeURL,
	})
}

func (h *Handler) CreateTable(c *gin.Context) {
	var req services.CreateTableInput
	if !h.bind(c, &req) {
		return
	}
	table, err := h.svc.Tables.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *Handler) UpdateTable(c *gin.Context) {
	var req services.UpdateTableInput
	if !h.bind(c, &req) {
		return
	}
	table, err := h.svc.Tables.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *Handler) DeleteTable(c *gin.Context) {
	if err := h.svc.Tables.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
}

// RegenerateLocators rewrites every table URL after the menu base URL changed
func (h *Handler) RegenerateLocators(c *gin.Context) {
	tables, err := h.svc.Tables.RegenerateLocators(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "QR codes regenerated", "data": tables})
}
