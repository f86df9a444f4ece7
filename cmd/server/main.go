// Package main is the entry point for the retail POS back office API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"retailpos/internal/domain/adjustments"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/auth"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/movements"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/domain/sales"
	"retailpos/internal/domain/settings"
	v1 "retailpos/internal/infrastructure/http/v1"
	"retailpos/pkg/logger"
)

const version = "0.1.0"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting retailpos server", "version", version, "env", cfg.Env)

	// --- Storage ---
	var store *backend
	if cfg.InMemory() {
		store = newMemoryBackend(cfg)
		log.Warn("using in-memory store, data is lost on exit")
	} else {
		store, err = newPostgresBackend(ctx, cfg)
		if err != nil {
			log.Fatalw("failed to initialize database", "error", err)
		}
		log.Info("database connection established")
	}
	store.withSettingsCache(ctx, cfg, log)

	// --- Domain ---
	recorder := audit.NewRecorder(store.audit, cfg.AuditTimeout)
	settingsService := settings.NewService(store.settings, recorder)
	mutator := ledger.NewMutator(store.variants, store.sales, store.txManager)

	services := v1.Services{
		Sales: sales.NewService(
			store.sales,
			store.variants,
			mutator,
			store.numerator,
			settingsService,
			store.txManager,
			recorder,
			sales.WithPhoneRegion(cfg.PhoneDefaultRegion),
		),
		Purchases:   purchases.NewService(store.purchases, store.suppliers, mutator, store.txManager, recorder),
		Adjustments: adjustments.NewService(store.adjustments, mutator, store.txManager, recorder),
		Ledger:      ledger.NewService(store.variants, settingsService),
		Movements:   movements.NewService(store.movements, store.variants),
		Settings:    settingsService,
		Audit:       store.audit,
	}

	// --- Router ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	router := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		JWTValidator:       jwtService,
		Services:           services,
		Idempotency:        store.idempotency,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		HealthChecks:       store.checks,
		Version:            version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "lock_timeout", cfg.LockTimeout)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	// Pending audit writes finish before their store goes away.
	recorder.Close()
	store.Close()

	log.Info("server stopped")
}
