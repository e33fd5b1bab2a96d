// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"kamesan/internal/domain/auth"
	"kamesan/internal/domain/numbering"
	"kamesan/internal/domain/orders"
	"kamesan/internal/domain/promotions"
	"kamesan/internal/domain/purchases"
	"kamesan/internal/domain/stock"
	"kamesan/internal/infrastructure/http/v1/handlers"
	"kamesan/internal/infrastructure/http/v1/middleware"
	"kamesan/internal/infrastructure/storage/postgres"
	"kamesan/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// AuditService backs audit history endpoints.
	AuditService *postgres.AuditService

	// Domain services.
	AuthService      *auth.Service
	NumberingService *numbering.Service
	OrderService     *orders.Service
	PurchaseService  *purchases.Service
	StockService     *stock.Service
	PromotionService *promotions.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerNumberingRoutes(protected, cfg)
		registerOrderRoutes(protected, cfg)
		registerPurchaseRoutes(protected, cfg)
		registerStockRoutes(protected, cfg)
		registerPromotionRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	handler := handlers.NewAuthHandler(cfg.AuthService)

	public := rg.Group("/auth")
	public.POST("/login", handler.Login)

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	protected.GET("/me", handler.Me)
	// Account creation is restricted to administrators.
	protected.POST("/register", middleware.RequireRole(string(auth.RoleAdmin)), handler.Register)
}

// registerNumberingRoutes registers numbering rule administration and
// preview endpoints. Rule management is admin-only; previews are open to
// any authenticated user.
func registerNumberingRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewNumberingHandler(cfg.NumberingService, cfg.AuditService)

	numberingGroup := rg.Group("/numbering")
	numberingGroup.GET("/preview/:documentType", handler.Preview)

	rules := numberingGroup.Group("/rules")
	rules.Use(middleware.RequireRole(string(auth.RoleAdmin)))
	{
		rules.POST("", handler.CreateRule)
		rules.GET("", handler.ListRules)
		rules.GET("/:id", handler.GetRule)
		rules.GET("/:id/history", handler.RuleHistory)
		rules.PATCH("/:id", handler.UpdateRule)
		rules.DELETE("/:id", handler.DeleteRule)
		rules.POST("/init-defaults", handler.InitDefaults)
	}
}

// registerOrderRoutes registers sales order and sales return endpoints.
func registerOrderRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewOrderHandler(cfg.OrderService)

	ordersGroup := rg.Group("/orders")
	{
		ordersGroup.POST("", handler.Create)
		ordersGroup.GET("", handler.List)
		ordersGroup.GET("/:id", handler.Get)
		ordersGroup.POST("/:id/status", handler.SetStatus)
		ordersGroup.GET("/:id/returns", handler.ListReturns)
	}

	returns := rg.Group("/returns")
	{
		returns.POST("", handler.CreateReturn)
		returns.POST("/:id/status", handler.SetReturnStatus)
	}
}

// registerPurchaseRoutes registers purchase order, goods receipt and
// purchase return endpoints.
func registerPurchaseRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewPurchaseHandler(cfg.PurchaseService)

	po := rg.Group("/purchase-orders")
	{
		po.POST("", handler.Create)
		po.GET("", handler.List)
		po.POST("/convert-suggestions", handler.ConvertSuggestions)
		po.GET("/:id", handler.Get)
		po.POST("/:id/status", handler.SetStatus)
		po.POST("/:id/receipts", handler.ReceiveGoods)
		po.GET("/:id/receipts", handler.ListReceipts)
	}

	rg.POST("/purchase-returns", handler.CreateReturn)
}

// registerStockRoutes registers stock count and stock transfer endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewStockHandler(cfg.StockService)

	counts := rg.Group("/stock-counts")
	{
		counts.POST("", handler.CreateCount)
		counts.GET("/:id", handler.GetCount)
		counts.POST("/:id/start", handler.StartCount)
		counts.POST("/:id/record", handler.RecordCounted)
		counts.POST("/:id/complete", handler.CompleteCount)
		counts.POST("/:id/cancel", handler.CancelCount)
	}

	transfers := rg.Group("/stock-transfers")
	{
		transfers.POST("", handler.CreateTransfer)
		transfers.GET("/:id", handler.GetTransfer)
		transfers.POST("/:id/status", handler.SetTransferStatus)
	}

	warehouses := rg.Group("/warehouses")
	{
		warehouses.GET("/:id/stock-counts", handler.ListCounts)
		warehouses.GET("/:id/stock-transfers", handler.ListTransfers)
	}
}

// registerPromotionRoutes registers promotion management endpoints.
// Mutations are restricted to administrators and managers.
func registerPromotionRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewPromotionHandler(cfg.PromotionService)

	promos := rg.Group("/promotions")
	promos.GET("", handler.List)
	promos.GET("/:id", handler.Get)

	manage := promos.Group("")
	manage.Use(middleware.RequireRole(string(auth.RoleAdmin), string(auth.RoleManager)))
	{
		manage.POST("", handler.Create)
		manage.PATCH("/:id", handler.Update)
		manage.DELETE("/:id", handler.Delete)
	}
}
