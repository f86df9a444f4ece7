package ledger

import (
	"context"

	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
)

// Repository is the Ledger Store.
type Repository interface {
	// GetByID returns the variant or a VARIANT_NOT_FOUND error.
	GetByID(ctx context.Context, variantID id.ID) (*Variant, error)

	// GetByIDs reads variants without locking. Missing ids are absent from the map.
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Variant, error)

	// LockForUpdate takes an exclusive row lock on each variant, in the order given,
	// and keeps it until the surrounding transaction ends. Missing ids are absent
	// from the map. Fails with LOCK_TIMEOUT when the bounded wait expires.
	LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*Variant, error)

	// UpdateStock writes the new stock quantity and average cost.
	// Callers must hold the variant's lock.
	UpdateStock(ctx context.Context, variantID id.ID, stockQty int64, avgCost types.Money) error

	// List returns a page of variants and the total count.
	List(ctx context.Context, filter ListFilter) ([]*Variant, int, error)
}

// SaleLineReader loads the lines of a settled sale for reversal.
type SaleLineReader interface {
	GetSaleLines(ctx context.Context, saleID id.ID) ([]SaleLine, error)
}
