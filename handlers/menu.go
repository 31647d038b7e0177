package handlers

import (
	"net/http"
	"strconv"

	"restaurant-api/services"

	"github.com/gin-gonic/gin"
)

// ListMenu returns the menu; filters: ?category=, ?isActive=, ?isPopular=
func (h *Handler) ListMenu(c *gin.Context) {
	f := services.MenuFilter{Category: c.Query("category")}
	var ok bool
	if f.IsActive, ok = queryBool(c, "isActive"); !ok {
		return
	}
	if f.IsPopular, ok = queryBool(c, "isPopular"); !ok {
		return
	}

	items, err := h.svc.Menu.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(items))
}

func (h *Handler) GetMenuItem(c *gin.Context) {
	item, err := h.svc.Menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req services.MenuItemInput
	if !h.bind(c, &req) {
		return
	}
	item, err := h.svc.Menu.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var req services.MenuItemPatch
	if !h.bind(c, &req) {
		return
	}
	item, err := h.svc.Menu.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	if err := h.svc.Menu.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

type CreateCustomizationRequest struct {
	MenuItemID string `json:"menuItemId"`
	services.CustomizationInput
}

// ListCustomizations requires ?menuItemId=
func (h *Handler) ListCustomizations(c *gin.Context) {
	menuItemID := c.Query("menuItemId")
	if menuItemID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "menuItemId is required"})
		return
	}
	out, err := h.svc.Menu.ListCustomizations(c.Request.Context(), menuItemID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(out))
}

func (h *Handler) CreateCustomization(c *gin.Context) {
	var req CreateCustomizationRequest
	if !h.bind(c, &req) {
		return
	}
	if req.MenuItemID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "menuItemId is required"})
		return
	}
	out, err := h.svc.Menu.CreateCustomization(c.Request.Context(), req.MenuItemID, req.CustomizationInput)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) UpdateCustomization(c *gin.Context) {
	var req services.CustomizationInput
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.Menu.UpdateCustomization(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeleteCustomization(c *gin.Context) {
	if err := h.svc.Menu.DeleteCustomization(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customization deleted successfully"})
}

type ReplaceCustomizationsRequest struct {
	Customizations []services.CustomizationInput `json:"customizations"`
}

// ReplaceCustomizations swaps the full customization set of one menu item
func (h *Handler) ReplaceCustomizations(c *gin.Context) {
	var req ReplaceCustomizationsRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.svc.Menu.ReplaceCustomizations(c.Request.Context(), c.Param("menuItemId"), req.Customizations)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(out))
}

// queryBool parses an optional boolean query parameter
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be true or false"})
		return nil, false
	}
	return &v, true
}
