// Package movements is the read-only stock movement history of a variant:
// purchase receipts, sale deductions, adjustments and void restorations
// merged in time order.
package movements

import (
	"context"
	"time"

	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/ledger"
)

// Type is the source of a movement.
type Type string

const (
	TypePurchase   Type = "PURCHASE"
	TypeSale       Type = "SALE"
	TypeAdjustment Type = "ADJUSTMENT"
	TypeVoid       Type = "VOID"
)

// Movement is one signed stock change.
type Movement struct {
	Type        Type         `db:"movement_type" json:"type"`
	VariantID   id.ID        `db:"variant_id" json:"variantId"`
	ReferenceID id.ID        `db:"reference_id" json:"referenceId"`
	ReferenceNo string       `db:"reference_no" json:"referenceNo"`
	Qty         int64        `db:"qty" json:"qty"`
	UnitCost    *types.Money `db:"unit_cost" json:"unitCost,omitempty"`
	Note        *string      `db:"note" json:"note,omitempty"`
	Actor       string       `db:"actor" json:"actor,omitempty"`
	OccurredAt  time.Time    `db:"occurred_at" json:"occurredAt"`
}

// Filter narrows the history window.
type Filter struct {
	From *time.Time
	To   *time.Time
	entity.Pagination
}

// Repository builds the movement view.
type Repository interface {
	// ListByVariant returns movements ordered by time, oldest first.
	ListByVariant(ctx context.Context, variantID id.ID, filter Filter) ([]Movement, error)
}

// Service serves movement history.
type Service struct {
	repo     Repository
	variants ledger.Repository
}

// NewService creates the movements service.
func NewService(repo Repository, variants ledger.Repository) *Service {
	return &Service{repo: repo, variants: variants}
}

// History returns the movements of one variant.
func (s *Service) History(ctx context.Context, variantID id.ID, filter Filter) ([]Movement, error) {
	if _, err := s.variants.GetByID(ctx, variantID); err != nil {
		return nil, err
	}
	filter.Pagination = filter.Pagination.Normalize()
	return s.repo.ListByVariant(ctx, variantID, filter)
}
