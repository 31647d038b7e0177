package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// keepAlive stops proxies from closing an idle stream
const keepAlive = 25 * time.Second

// Events streams lifecycle events to a staff or customer client as
// Server-Sent Events. Events published while the client is slow are dropped.
func (h *Handler) Events(c *gin.Context) {
	if h.hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Event stream unavailable"})
		return
	}

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	log := h.log.WithField("client", c.ClientIP())
	log.Debug("event stream opened")

	c.SSEvent("connected", gin.H{"subscribers": h.hub.Subscribers()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(event.Name, event)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})

	log.WithField("dropped", sub.Dropped()).Debug("event stream closed")
}
