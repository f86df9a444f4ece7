package purchases

import (
	"context"

	"retailpos/internal/core/id"
)

// Repository persists purchases and their items.
type Repository interface {
	// Create inserts the purchase header only.
	Create(ctx context.Context, p *Purchase) error

	// AddItem inserts one purchase line.
	AddItem(ctx context.Context, item *Item) error

	// GetByID returns the purchase with items or PURCHASE_NOT_FOUND.
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	List(ctx context.Context, filter ListFilter) ([]*Purchase, int, error)
}

// SupplierRepository looks suppliers up.
type SupplierRepository interface {
	// GetByID returns the supplier or SUPPLIER_NOT_FOUND.
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
}
