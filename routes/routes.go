package routes

import (
	"time"

	"restaurant-api/config"
	"restaurant-api/handlers"
	"restaurant-api/middleware"
	"restaurant-api/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	admin  = models.RoleAdmin
	waiter = models.RoleWaiter
	chef   = models.RoleChef
)

// NewRouter builds the engine with recovery, request logging, CORS and all routes
func NewRouter(cfg *config.Config, h *handlers.Handler, auth *middleware.Auth, log logrus.FieldLogger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limit, err := middleware.RateLimit(cfg.PublicRateLimit)
	if err != nil {
		return nil, err
	}

	r.GET("/health", h.Health)
	r.GET("/", h.Welcome)
	SetupRoutes(r, h, auth, limit)
	return r, nil
}

// SetupRoutes registers the API. limit throttles anonymous writes.
func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth, limit gin.HandlerFunc) {
	signedIn := auth.AuthRequired()
	api := r.Group("/api")

	// ── Public routes ──────────────────────────────────────────────
	{
		api.GET("/state-machine", h.GetStateMachineInfo)
		api.GET("/events", h.Events)
	}

	// ── Auth ───────────────────────────────────────────────────────
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", limit, h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", signedIn, h.Me)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := api.Group("/orders")
	{
		orders.POST("", limit, h.SubmitOrder)
		orders.GET("", signedIn, h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/items", limit, h.AddOrderItems)
		orders.PUT("/:id/status", signedIn, middleware.Allow("orders:update", admin, waiter, chef), h.UpdateOrderStatus)
		orders.POST("/:id/claim", signedIn, middleware.Allow("orders:claim", admin, waiter), h.ClaimOrder)
		orders.POST("/:id/release", signedIn, middleware.Allow("orders:claim", admin, waiter), h.ReleaseOrder)
	}

	// ── Call requests ──────────────────────────────────────────────
	calls := api.Group("/call-requests")
	{
		calls.POST("", limit, h.CreateCallRequest)
		calls.GET("", signedIn, h.ListCallRequests)
		calls.POST("/:id/claim", signedIn, middleware.Allow("calls:update", admin, waiter), h.ClaimCall)
		calls.POST("/:id/release", signedIn, middleware.Allow("calls:update", admin, waiter), h.ReleaseCall)
		calls.PUT("/:id/complete", signedIn, middleware.Allow("calls:update", admin, waiter), h.CompleteCall)
	}

	// ── Tables ─────────────────────────────────────────────────────
	tables := api.Group("/tables")
	{
		tables.GET("", h.ListTables)
		tables.GET("/:id", h.GetTable)
		tables.GET("/:id/qr", h.GetTableLocator)
		tables.POST("", signedIn, middleware.Allow("", admin), h.CreateTable)
		tables.PUT("/:id", signedIn, middleware.Allow("tables:update", admin, waiter), h.UpdateTable)
		tables.DELETE("/:id", signedIn, middleware.Allow("", admin), h.DeleteTable)
		tables.POST("/regenerate-qr-codes", signedIn, middleware.Allow("", admin), h.RegenerateLocators)
	}

	// ── Menu ───────────────────────────────────────────────────────
	menu := api.Group("/menu-items")
	{
		menu.GET("", h.ListMenu)
		menu.GET("/:id", h.GetMenuItem)
		menu.POST("", signedIn, middleware.Allow("menu:write", admin), h.CreateMenuItem)
		menu.PUT("/:id", signedIn, middleware.Allow("menu:write", admin), h.UpdateMenuItem)
		menu.DELETE("/:id", signedIn, middleware.Allow("menu:write", admin), h.DeleteMenuItem)
	}

	customizations := api.Group("/customizations")
	{
		customizations.GET("", h.ListCustomizations)
		customizations.POST("", signedIn, middleware.Allow("menu:write", admin), h.CreateCustomization)
		customizations.PUT("/:id", signedIn, middleware.Allow("menu:write", admin), h.UpdateCustomization)
		customizations.PUT("/menu-item/:menuItemId", signedIn, middleware.Allow("menu:write", admin), h.ReplaceCustomizations)
		customizations.DELETE("/:id", signedIn, middleware.Allow("menu:write", admin), h.DeleteCustomization)
	}

	// ── Staff accounts ─────────────────────────────────────────────
	users := api.Group("/users", signedIn)
	{
		users.GET("", middleware.Allow("users:write", admin), h.ListUsers)
		users.POST("", middleware.Allow("users:write", admin), h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", middleware.Allow("users:write", admin), h.DeleteUser)
	}

	// ── Customers ──────────────────────────────────────────────────
	customers := api.Group("/customers")
	{
		customers.POST("", limit, h.UpsertCustomer)
		customers.GET("", signedIn, middleware.Allow("customers:read", admin), h.ListCustomers)
		customers.GET("/:id", signedIn, middleware.Allow("customers:read", admin), h.GetCustomer)
	}

	// ── Branding ───────────────────────────────────────────────────
	settings := api.Group("/settings")
	{
		settings.GET("", h.GetSettings)
		settings.PUT("", signedIn, middleware.Allow("settings:write", admin), h.UpdateSettings)
	}
}
