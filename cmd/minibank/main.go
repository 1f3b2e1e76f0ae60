package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/minibank/minibank-go/internal/config"
	"github.com/minibank/minibank-go/internal/domain"
	"github.com/minibank/minibank-go/internal/handler"
	"github.com/minibank/minibank-go/internal/infra/cache"
	"github.com/minibank/minibank-go/internal/infra/memstore"
	"github.com/minibank/minibank-go/internal/infra/observability"
	"github.com/minibank/minibank-go/internal/infra/resilience"
	"github.com/minibank/minibank-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("bank_name", cfg.BankName),
		zap.String("bank_code", cfg.BankCode),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("stats_cache_ttl", cfg.StatsCacheTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
		zap.Bool("seed_demo_data", cfg.SeedDemoData),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "minibank")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store & cache ---
	store := memstore.New()
	statsCache := cache.New[domain.Statistics](cfg.StatsCacheTTL)

	// --- Resilience ---
	guard := resilience.NewGuard("ledger", cfg.MaxConcurrency)

	// --- Services ---
	ledger := service.NewLedgerService(store, statsCache, guard, metrics, logger, domain.BankInfo{
		Name: cfg.BankName,
		Code: cfg.BankCode,
	})
	authSvc := service.NewAuthService(store, store, ledger, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, metrics, logger)

	// --- Demo seed ---
	if cfg.SeedDemoData {
		if err := service.SeedDemoData(context.Background(), authSvc, ledger, logger); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	// --- Router ---
	router := handler.NewRouter(ledger, authSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
