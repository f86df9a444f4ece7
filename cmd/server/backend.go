package main

import (
	"context"
	"fmt"
	"time"

	"retailpos/internal/core/numerator"
	"retailpos/internal/core/tx"
	"retailpos/internal/domain/adjustments"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/movements"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/domain/sales"
	"retailpos/internal/domain/settings"
	"retailpos/internal/infrastructure/cache"
	"retailpos/internal/infrastructure/http/v1/handlers"
	"retailpos/internal/infrastructure/http/v1/middleware"
	pgnumerator "retailpos/internal/infrastructure/numerator"
	"retailpos/internal/infrastructure/storage/memory"
	"retailpos/internal/infrastructure/storage/postgres"
	"retailpos/internal/infrastructure/storage/postgres/catalog_repo"
	"retailpos/internal/infrastructure/storage/postgres/document_repo"
	"retailpos/internal/infrastructure/storage/postgres/ledger_repo"
	"retailpos/internal/infrastructure/storage/postgres/register_repo"
	"retailpos/pkg/logger"
)

// saleStore is what both engines need from sale storage.
type saleStore interface {
	sales.Repository
	ledger.SaleLineReader
}

// backend bundles the repositories of one storage implementation.
type backend struct {
	txManager   tx.Manager
	variants    ledger.Repository
	sales       saleStore
	purchases   purchases.Repository
	suppliers   purchases.SupplierRepository
	adjustments adjustments.Repository
	movements   movements.Repository
	settings    settings.Repository
	numerator   numerator.Generator
	audit       interface {
		audit.Store
		audit.Reader
	}

	idempotency middleware.IdempotencyStore
	checks      map[string]handlers.Pinger
	closers     []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func newMemoryBackend(cfg Config) *backend {
	store := memory.New(memory.WithLockTimeout(cfg.LockTimeout))
	return &backend{
		txManager:   store.TxManager(),
		variants:    store.Variants(),
		sales:       store.Sales(),
		purchases:   store.Purchases(),
		suppliers:   store.Suppliers(),
		adjustments: store.Adjustments(),
		movements:   store.Movements(),
		settings:    store.Settings(),
		numerator:   store.Numerator(),
		audit:       store.Audit(),
		checks:      map[string]handlers.Pinger{"store": store},
	}
}

func newPostgresBackend(ctx context.Context, cfg Config) (*backend, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = cfg.DBMaxConns
		poolCfg.MinConns = min(poolCfg.MinConns, cfg.DBMaxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	txOpts := postgres.DefaultTxOptions()
	txOpts.LockTimeout = cfg.LockTimeout
	txOpts.StatementTimeout = cfg.StatementTimeout
	txm := postgres.NewTxManager(pool, txOpts)

	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("audit store: %w", err)
	}

	b := &backend{
		txManager:   txm,
		variants:    ledger_repo.NewVariantRepo(txm),
		sales:       document_repo.NewSaleRepo(txm),
		purchases:   document_repo.NewPurchaseRepo(txm),
		suppliers:   catalog_repo.NewSupplierRepo(txm),
		adjustments: document_repo.NewAdjustmentRepo(txm),
		movements:   register_repo.NewMovementRepo(txm),
		settings:    postgres.NewSettingsRepo(txm),
		numerator: pgnumerator.New(pgnumerator.QuerierFunc(func(ctx context.Context) pgnumerator.Querier {
			return txm.GetQuerier(ctx)
		})),
		audit:   auditStore,
		checks:  map[string]handlers.Pinger{"database": pool},
		closers: []func(){pool.Close, auditStore.Close},
	}
	if cfg.IdempotencyEnabled {
		b.idempotency = postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL)
	}
	return b, nil
}

// withSettingsCache puts the Redis cache in front of the settings repository.
// A Redis that is down at startup is logged and skipped.
func (b *backend) withSettingsCache(ctx context.Context, cfg Config, log *logger.Logger) {
	if cfg.RedisURL == "" {
		return
	}
	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Warnw("invalid REDIS_URL, settings cache disabled", "error", err)
		return
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnw("redis unreachable, settings cache disabled", "error", err)
		_ = client.Close()
		return
	}

	settingsCache := cache.NewSettingsCache(client, b.settings, cfg.SettingsCacheTTL)
	b.settings = settingsCache
	b.checks["redis"] = settingsCache
	b.closers = append(b.closers, func() { _ = client.Close() })
	log.Infow("settings cache enabled", "ttl", cfg.SettingsCacheTTL)
}
