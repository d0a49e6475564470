package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cartpay/internal/bootstrap"
	"cartpay/internal/config"
	cronpkg "cartpay/internal/cron"
	"cartpay/internal/middleware"
	"cartpay/internal/payment"
	"cartpay/internal/payment/cashfree"
	"cartpay/internal/reconcile"
	"cartpay/internal/repository"
	"cartpay/internal/router"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--migrate-db") {
		if err := runDBMigrate(logger); err != nil {
			logger.Fatal("Database migration failed", zap.Error(err))
		}
		logger.Info("Database migration completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Webhook Deduper (Redis with in-memory fallback) ---
	webhookDeduper, dedupeErr := middleware.NewWebhookDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		10*time.Minute,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for webhook dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Payment providers ---
	registry := payment.NewRegistry()
	registry.Register(cashfree.New(cashfree.Options{
		AppID:     cfg.Gateway.AppID,
		SecretKey: cfg.Gateway.SecretKey,
		Sandbox:   cfg.Gateway.Sandbox,
	}, logger))

	// --- Routes ---
	router.Setup(e, db, registry, logger, cfg.API.Key, webhookDeduper)

	// --- Cron Scheduler (pending-session reconciliation) ---
	reconciler := reconcile.New(repository.NewSessionRepository(db), registry, logger)
	scheduler := cronpkg.New(cfg.Reconcile(), reconciler, logger)
	scheduler.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting cartpay server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBMigrate(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return err
	}
	logger.Info("Schema migration completed")
	return nil
}
