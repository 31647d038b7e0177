package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and database reachability
func (h *Handler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.log.WithError(err).Warn("health check failed")
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"service": "QR Restaurant Ordering API",
		"version": "1.0.0",
	})
}

// Welcome lists the entry points
func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the QR Restaurant Ordering API",
		"docs":    "/api/state-machine",
		"events":  "/api/events",
		"health":  "/health",
		"roles":   []string{"admin", "waiter", "chef"},
	})
}
