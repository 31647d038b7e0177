package handlers

import (
	"net/http"

	"restaurant-api/middleware"
	"restaurant-api/notifier"
	"restaurant-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler translates HTTP requests into service calls
type Handler struct {
	svc  *services.Services
	auth *middleware.Auth
	hub  *notifier.Hub
	log  logrus.FieldLogger

	// SecureCookies marks the access token cookie Secure
	SecureCookies bool
}

func New(svc *services.Services, auth *middleware.Auth, hub *notifier.Hub, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{svc: svc, auth: auth, hub: hub, log: log}
}

// respondError maps a service error onto its HTTP status
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": "Internal server error"}

	if e, ok := services.AsError(err); ok {
		switch e.Kind {
		case services.KindNotFound:
			status = http.StatusNotFound
		case services.KindConflict:
			status = http.StatusConflict
		case services.KindValidation:
			status = http.StatusBadRequest
		case services.KindUnauthorized:
			status = http.StatusUnauthorized
		case services.KindForbidden:
			status = http.StatusForbidden
		}
		if status != http.StatusInternalServerError {
			body["error"] = e.Message
			if e.Kind == services.KindValidation {
				if len(e.Fields) > 0 {
					body["details"] = e.Fields
				}
			} else {
				for k, v := range e.Fields {
					body[k] = v
				}
			}
		}
	}

	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// bind decodes the JSON body; a malformed body answers 400
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return false
	}
	return true
}

func list(data interface{}) gin.H {
	return gin.H{"data": data}
}
