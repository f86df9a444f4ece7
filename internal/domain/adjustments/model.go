// Package adjustments applies ad-hoc signed stock corrections.
package adjustments

import (
	"context"
	"fmt"
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/ledger"
)

// Reason explains why stock was adjusted.
type Reason string

const (
	ReasonOpeningStock Reason = "OPENING_STOCK"
	ReasonDamage       Reason = "DAMAGE"
	ReasonTheft        Reason = "THEFT"
	ReasonCorrection   Reason = "CORRECTION"
	ReasonReturn       Reason = "RETURN"
	ReasonOther        Reason = "OTHER"
)

// Valid reports whether the reason is known.
func (r Reason) Valid() bool {
	switch r {
	case ReasonOpeningStock, ReasonDamage, ReasonTheft, ReasonCorrection, ReasonReturn, ReasonOther:
		return true
	}
	return false
}

// Adjustment is an immutable stock correction record.
type Adjustment struct {
	entity.BaseDocument

	VariantID id.ID   `db:"variant_id" json:"variantId"`
	Delta     int64   `db:"delta" json:"delta"`
	Reason    Reason  `db:"reason" json:"reason"`
	Notes     *string `db:"notes" json:"notes,omitempty"`

	// StockAfter is the on-hand quantity right after the adjustment.
	StockAfter int64 `db:"stock_after" json:"stockAfter"`
}

// Input is an adjustment request.
type Input struct {
	VariantID id.ID
	Delta     int64
	Reason    Reason
	Notes     string
}

// Validate checks the request before any mutation.
func (in *Input) Validate(_ context.Context) error {
	if id.IsNil(in.VariantID) {
		return apperror.NewValidation("variant id is required").WithDetail("field", "variantId")
	}
	if in.Delta == 0 {
		return apperror.NewInvalidQuantity("adjustment quantity must not be zero")
	}
	if in.Delta > ledger.MaxLineQty || in.Delta < -ledger.MaxLineQty {
		return apperror.NewInvalidQuantity(fmt.Sprintf("adjustment quantity must be between -%d and %d", ledger.MaxLineQty, ledger.MaxLineQty))
	}
	if !in.Reason.Valid() {
		return apperror.NewValidation("unknown adjustment reason").WithDetail("reason", in.Reason)
	}
	return nil
}

// ListFilter narrows adjustment listings.
type ListFilter struct {
	VariantID *id.ID
	Reason    *Reason
	From      *time.Time
	To        *time.Time
	entity.Pagination
}
