// Package main seeds a fresh database with shop settings, a supplier and a
// handful of variants, then prints a development admin token.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/auth"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/domain/settings"
	"retailpos/internal/infrastructure/storage/postgres"
	"retailpos/internal/infrastructure/storage/postgres/catalog_repo"
	"retailpos/internal/infrastructure/storage/postgres/ledger_repo"
	"retailpos/pkg/logger"
)

type seedVariant struct {
	product string
	sku     string
	barcode string
	size    string
	color   string
	price   string
}

var demoVariants = []seedVariant{
	{"Cotton T-Shirt", "TS-BLK-M", "8901000000011", "M", "Black", "499.00"},
	{"Cotton T-Shirt", "TS-BLK-L", "8901000000028", "L", "Black", "499.00"},
	{"Cotton T-Shirt", "TS-WHT-M", "8901000000035", "M", "White", "499.00"},
	{"Denim Jeans", "JN-BLU-32", "8901000000042", "32", "Blue", "1299.00"},
	{"Denim Jeans", "JN-BLU-34", "8901000000059", "34", "Blue", "1299.00"},
	{"Canvas Sneakers", "SN-WHT-42", "8901000000066", "42", "White", "1799.00"},
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool, postgres.DefaultTxOptions())

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		shop := settings.Default()
		shop.UpdatedAt = time.Now().UTC()
		shop.UpdatedBy = "seed"
		if err := postgres.NewSettingsRepo(txm).Save(ctx, shop); err != nil {
			return fmt.Errorf("settings: %w", err)
		}

		phone := "+919812345678"
		supplier := &purchases.Supplier{
			ID:       id.New(),
			Name:     "Demo Garments Wholesale",
			Phone:    &phone,
			IsActive: true,
		}
		if err := catalog_repo.NewSupplierRepo(txm).Upsert(ctx, supplier); err != nil {
			return fmt.Errorf("supplier: %w", err)
		}
		log.Infow("seeded supplier", "id", supplier.ID, "name", supplier.Name)

		variants := ledger_repo.NewVariantRepo(txm)
		for _, sv := range demoVariants {
			v := newVariant(sv)
			if err := variants.Insert(ctx, v); err != nil {
				return fmt.Errorf("variant %s: %w", sv.sku, err)
			}
			log.Infow("seeded variant", "id", v.ID, "sku", v.SKU)
		}
		return nil
	})
	if err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(secret))
	token, expiresAt, err := jwtService.GenerateAccessToken(id.New().String(), "admin", []string{"admin"})
	if err != nil {
		log.Fatalw("failed to issue token", "error", err)
	}

	log.Info("seeding complete")
	fmt.Printf("\nAdmin token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
}

func newVariant(sv seedVariant) *ledger.Variant {
	now := time.Now().UTC()
	barcode, size, color := sv.barcode, sv.size, sv.color
	return &ledger.Variant{
		ID:           id.New(),
		ProductName:  sv.product,
		SKU:          sv.sku,
		Barcode:      &barcode,
		Size:         &size,
		Color:        &color,
		SellingPrice: types.MustMoney(sv.price),
		AvgCost:      types.Zero(),
		Status:       ledger.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
