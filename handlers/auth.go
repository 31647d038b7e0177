package handlers

import (
	"net/http"

	"restaurant-api/middleware"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a staff member and returns a JWT, also set as a cookie
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.svc.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	token, err := h.auth.GenerateToken(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.auth.TTL().Seconds()), "/", "", h.SecureCookies, true)
	h.log.WithField("user_id", user.ID).Info("staff signed in")
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout marks the user offline and clears the cookie
func (h *Handler) Logout(c *gin.Context) {
	if claims, err := h.auth.RequestClaims(c); err == nil {
		if err := h.svc.Users.SetOnline(c.Request.Context(), claims.UserID, false); err != nil {
			h.log.WithError(err).WithField("user_id", claims.UserID).Warn("failed to mark user offline")
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user's profile
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}
