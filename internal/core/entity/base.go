// Package entity holds base types shared by ledger documents.
package entity

import (
	"context"
	"time"

	"retailpos/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseDocument contains the fields shared by immutable ledger documents
// (sales, purchases, stock adjustments).
type BaseDocument struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// NewBaseDocument creates a new BaseDocument with generated ID and timestamp.
func NewBaseDocument(createdBy string) BaseDocument {
	return BaseDocument{
		ID:        id.New(),
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
}

// Pagination is the common limit/offset pair for list queries.
type Pagination struct {
	Limit  int
	Offset int
}

// Normalize clamps the limit to [1, 200], defaulting to 50.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
