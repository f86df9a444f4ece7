// Package settings exposes the shop-wide configuration the ledger engines read:
// tax rate, bill prefix and the low-stock threshold.
package settings

import (
	"context"
	"strings"
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/types"
)

// Settings is the single shop configuration row.
type Settings struct {
	ShopName          string        `db:"shop_name" json:"shopName"`
	TaxRatePercent    types.Percent `db:"tax_rate_percent" json:"taxRatePercent"`
	BillPrefix        string        `db:"bill_prefix" json:"billPrefix"`
	LowStockThreshold int64         `db:"low_stock_threshold" json:"lowStockThreshold"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`
	UpdatedBy         string        `db:"updated_by" json:"updatedBy,omitempty"`
}

// Default returns the settings used before the shop is configured.
func Default() *Settings {
	return &Settings{
		ShopName:          "Retail Store",
		TaxRatePercent:    types.MustMoney("18"),
		BillPrefix:        "BILL",
		LowStockThreshold: 5,
	}
}

// Validate checks settings invariants.
func (s *Settings) Validate(_ context.Context) error {
	if strings.TrimSpace(s.ShopName) == "" {
		return apperror.NewValidation("shop name is required").WithDetail("field", "shopName")
	}
	if !types.ValidPercent(s.TaxRatePercent) {
		return apperror.NewValidation("tax rate must be between 0 and 100").WithDetail("field", "taxRatePercent")
	}
	if strings.TrimSpace(s.BillPrefix) == "" || strings.Contains(s.BillPrefix, "-") {
		return apperror.NewValidation("bill prefix must be non-empty and must not contain '-'").WithDetail("field", "billPrefix")
	}
	if s.LowStockThreshold < 0 {
		return apperror.NewValidation("low stock threshold must not be negative").WithDetail("field", "lowStockThreshold")
	}
	return nil
}

// Repository stores the settings row.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// Provider is the read side used by the engines.
type Provider interface {
	Get(ctx context.Context) (*Settings, error)
}
