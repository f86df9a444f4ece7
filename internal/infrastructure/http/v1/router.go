// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appctx "retailpos/internal/core/context"
	"retailpos/internal/domain/adjustments"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/movements"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/domain/sales"
	"retailpos/internal/domain/settings"
	"retailpos/internal/infrastructure/http/v1/handlers"
	"retailpos/internal/infrastructure/http/v1/middleware"
	"retailpos/pkg/logger"
)

// Services are the domain services the API exposes.
type Services struct {
	Sales       *sales.Service
	Purchases   *purchases.Service
	Adjustments *adjustments.Service
	Ledger      *ledger.Service
	Movements   *movements.Service
	Settings    *settings.Service

	// Audit is optional; the audit routes are skipped when nil.
	Audit audit.Reader
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator
	Services     Services

	// Idempotency enables X-Idempotency-Key handling when non-nil.
	Idempotency middleware.IdempotencyStore

	// CORSAllowedOrigins: empty disables CORS, "*" allows any origin.
	CORSAllowedOrigins []string

	HealthChecks map[string]handlers.Pinger
	Version      string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if c, ok := corsConfig(cfg.CORSAllowedOrigins); ok {
		router.Use(cors.New(c))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	api.Use(middleware.UserContext())
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	registerLedgerRoutes(api, cfg.Services)
	registerSettingsRoutes(api, cfg.Services)
	registerAuditRoutes(api, cfg.Services)

	return router
}

func registerLedgerRoutes(rg *gin.RouterGroup, svc Services) {
	base := handlers.NewBaseHandler()
	managers := []string{appctx.RoleAdmin, appctx.RoleManager}

	// --- SALES ---
	{
		h := handlers.NewSaleHandler(base, svc.Sales)
		group := rg.Group("/sales")
		RegisterDocumentRoutes(group, DocumentRoutes{List: h.List, Get: h.Get, Create: h.Settle})
		group.POST("/:id/void", withRoles(managers, h.Void)...)
	}

	// --- PURCHASES ---
	{
		h := handlers.NewPurchaseHandler(base, svc.Purchases)
		RegisterDocumentRoutes(rg.Group("/purchases"), DocumentRoutes{List: h.List, Get: h.Get, Create: h.Receive})
	}

	// --- STOCK ADJUSTMENTS ---
	{
		h := handlers.NewAdjustmentHandler(base, svc.Adjustments)
		RegisterDocumentRoutes(rg.Group("/stock-adjustments"), DocumentRoutes{
			List:        h.List,
			Get:         h.Get,
			Create:      h.Adjust,
			CreateRoles: managers,
		})
	}

	// --- VARIANTS (read side of the ledger) ---
	{
		h := handlers.NewVariantHandler(base, svc.Ledger, svc.Movements)
		group := rg.Group("/variants")
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.GET("/:id/movements", h.Movements)
	}
}

func registerSettingsRoutes(rg *gin.RouterGroup, svc Services) {
	h := handlers.NewSettingsHandler(handlers.NewBaseHandler(), svc.Settings)
	rg.GET("/settings", h.Get)
	rg.PUT("/settings", middleware.RequireRole(appctx.RoleAdmin), h.Update)
}

func registerAuditRoutes(rg *gin.RouterGroup, svc Services) {
	if svc.Audit == nil {
		return
	}
	h := handlers.NewAuditHandler(handlers.NewBaseHandler(), svc.Audit)
	rg.GET("/audit/:entityType/:id", middleware.RequireRole(appctx.RoleAdmin), h.History)
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	c.AddAllowHeaders("Authorization", middleware.HeaderIdempotencyKey, middleware.HeaderRequestID)
	c.AddExposeHeaders(middleware.HeaderRequestID, middleware.HeaderTraceID)
	c.MaxAge = 12 * time.Hour
	return c, true
}
