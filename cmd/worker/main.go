// Package main is the entry point for the retailpos background worker.
// It purges expired idempotency keys and reports connection pool health.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"retailpos/internal/infrastructure/storage/postgres"
	"retailpos/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting retailpos worker")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" || dsn == "memory://" {
		log.Fatal("DATABASE_URL must point at PostgreSQL")
	}
	poolCfg := postgres.DefaultPoolConfig(dsn)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool, postgres.DefaultTxOptions())
	worker := &Worker{
		idempotency:     postgres.NewIdempotencyStore(txManager, 0),
		pool:            pool,
		log:             log.WithComponent("worker"),
		cleanupInterval: getEnvDuration("IDEMPOTENCY_CLEANUP_INTERVAL", time.Hour),
		statsInterval:   getEnvDuration("POOL_STATS_INTERVAL", 5*time.Minute),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs periodic maintenance against the ledger database.
type Worker struct {
	idempotency     *postgres.IdempotencyStore
	pool            *postgres.Pool
	log             *logger.Logger
	cleanupInterval time.Duration
	statsInterval   time.Duration
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	cleanupTicker := time.NewTicker(w.cleanupInterval)
	defer cleanupTicker.Stop()

	statsTicker := time.NewTicker(w.statsInterval)
	defer statsTicker.Stop()

	w.cleanupIdempotency(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		case <-statsTicker.C:
			w.pool.LogStats(logger.WithLogger(ctx, w.log))
		}
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	deleted, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		w.log.Infow("expired idempotency keys removed", "count", deleted)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
