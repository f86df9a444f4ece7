package adjustments

import (
	"context"

	"retailpos/internal/core/id"
)

// Repository persists adjustment records. Records are never updated.
type Repository interface {
	Create(ctx context.Context, adj *Adjustment) error
	GetByID(ctx context.Context, adjustmentID id.ID) (*Adjustment, error)
	List(ctx context.Context, filter ListFilter) ([]*Adjustment, int, error)
}
