// Package main is the entry point for the Kamesan API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kamesan/internal/domain/auth"
	"kamesan/internal/domain/numbering"
	"kamesan/internal/domain/orders"
	"kamesan/internal/domain/promotions"
	"kamesan/internal/domain/purchases"
	"kamesan/internal/domain/stock"
	v1 "kamesan/internal/infrastructure/http/v1"
	"kamesan/internal/infrastructure/storage/postgres"
	"kamesan/internal/infrastructure/storage/postgres/auth_repo"
	"kamesan/internal/infrastructure/storage/postgres/numbering_repo"
	"kamesan/internal/infrastructure/storage/postgres/order_repo"
	"kamesan/internal/infrastructure/storage/postgres/promo_repo"
	"kamesan/internal/infrastructure/storage/postgres/purchase_repo"
	"kamesan/internal/infrastructure/storage/postgres/stock_repo"
	"kamesan/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting kamesan server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// Periodic pool stats for operators
	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, pool.Unwrap())
			}
		}
	}()

	txManager := postgres.NewTxManager(pool)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Numbering ---
	numberingService := numbering.NewService(
		numbering_repo.NewRuleRepo(txManager),
		numbering_repo.NewSequenceRepo(txManager),
		nil,
		auditService,
	)

	// --- Auth ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(auth_repo.NewUserRepo(txManager), jwtService)

	// --- Promotions ---
	evaluator, err := promotions.NewEvaluator()
	if err != nil {
		log.Fatalw("failed to initialize promotion evaluator", "error", err)
	}
	promotionService := promotions.NewService(promo_repo.NewPromoRepo(txManager), evaluator, nil)

	// --- Documents ---
	orderService := orders.NewService(
		order_repo.NewOrderRepo(txManager),
		order_repo.NewReturnRepo(txManager),
		numberingService,
		txManager,
		promotionService,
	)

	purchaseService := purchases.NewService(
		purchase_repo.NewOrderRepo(txManager),
		purchase_repo.NewReceiptRepo(txManager),
		purchase_repo.NewReturnRepo(txManager),
		numberingService,
		txManager,
	)

	stockService := stock.NewService(
		stock_repo.NewCountRepo(txManager),
		stock_repo.NewTransferRepo(txManager),
		numberingService,
		txManager,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool,
		Logger:           log,
		JWTValidator:     jwtService,
		AuditService:     auditService,
		AuthService:      authService,
		NumberingService: numberingService,
		OrderService:     orderService,
		PurchaseService:  purchaseService,
		StockService:     stockService,
		PromotionService: promotionService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
