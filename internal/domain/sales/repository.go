package sales

import (
	"context"
	"time"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/ledger"
)

// Repository persists sales and their items.
type Repository interface {
	// Create inserts the header and all items.
	Create(ctx context.Context, sale *Sale) error

	// GetByID returns the sale with items or SALE_NOT_FOUND.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetForUpdate loads the sale with items and locks its header row
	// until the transaction ends.
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	// MarkVoided moves a sale to VOIDED and stores the void metadata.
	MarkVoided(ctx context.Context, saleID id.ID, voidedAt time.Time, voidedBy, reason string) error

	// List returns a page of sale headers and the total count.
	List(ctx context.Context, filter ListFilter) ([]*Sale, int, error)

	ledger.SaleLineReader
}
