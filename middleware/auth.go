package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"restaurant-api/models"
	"restaurant-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenCookie is the cookie the staff app sends the access token in
const TokenCookie = "accessToken"

const userKey = "user"

type Claims struct {
	UserID string          `json:"id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserLookup loads the current state of an account on every request
type UserLookup interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

type Auth struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
	now    func() time.Time
}

func NewAuth(secret string, ttl time.Duration, users UserLookup) *Auth {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{secret: []byte(secret), ttl: ttl, users: users, now: time.Now}
}

// TTL is how long issued tokens stay valid
func (a *Auth) TTL() time.Duration { return a.ttl }

// GenerateToken creates a signed JWT for a given user
func (a *Auth) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	return signed, errors.Wrap(err, "failed to sign token")
}

// ParseToken verifies signature and expiry
func (a *Auth) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

var errNoToken = errors.New("no access token")

// RequestClaims reads the token from the Authorization header or the cookie
func (a *Auth) RequestClaims(c *gin.Context) (*Claims, error) {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		return nil, errNoToken
	}
	return a.ParseToken(tokenStr)
}

// AuthRequired validates the JWT, loads the account and injects it into the context
func (a *Auth) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := a.RequestClaims(c)
		if errors.Is(err, errNoToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		user, err := a.users.Get(c.Request.Context(), claims.UserID)
		if services.KindOf(err) == services.KindNotFound || (err == nil && user == nil) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// Allow admits admins, any of roles, or a user holding permission
func Allow(permission string, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !user.Can(permission, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":         "Insufficient permissions",
				"userRole":      user.Role,
				"requiredRoles": roles,
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil on public routes
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := val.(*models.User)
	return user
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}
