package dto

import (
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/adjustments"
)

// AdjustStockRequest is the stock adjustment request body.
type AdjustStockRequest struct {
	VariantID string `json:"variantId" binding:"required,uuid"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason" binding:"required"`
	Notes     string `json:"notes,omitempty" binding:"max=500"`
}

// ToInput converts the request to the adjustment input.
func (r *AdjustStockRequest) ToInput() (adjustments.Input, error) {
	variantID, err := id.Parse(r.VariantID)
	if err != nil {
		return adjustments.Input{}, apperror.NewValidation("invalid variant id")
	}
	return adjustments.Input{
		VariantID: variantID,
		Delta:     r.Delta,
		Reason:    adjustments.Reason(r.Reason),
		Notes:     r.Notes,
	}, nil
}

// AdjustmentListQuery filters GET /stock-adjustments.
type AdjustmentListQuery struct {
	PageQuery
	WindowQuery
	VariantID string `form:"variantId" binding:"omitempty,uuid"`
	Reason    string `form:"reason"`
}

// ToFilter converts the query to the domain filter.
func (q *AdjustmentListQuery) ToFilter() (adjustments.ListFilter, error) {
	variantID, err := parseOptionalID(q.VariantID)
	if err != nil {
		return adjustments.ListFilter{}, apperror.NewValidation("invalid variant id")
	}
	f := adjustments.ListFilter{
		VariantID:  variantID,
		From:       q.From,
		To:         q.To,
		Pagination: q.Pagination(),
	}
	if q.Reason != "" {
		reason := adjustments.Reason(q.Reason)
		if !reason.Valid() {
			return adjustments.ListFilter{}, apperror.NewValidation("unknown adjustment reason").WithDetail("reason", q.Reason)
		}
		f.Reason = &reason
	}
	return f, nil
}

// AdjustmentResponse is the AdjustmentDetail.
type AdjustmentResponse struct {
	ID         string    `json:"id"`
	VariantID  string    `json:"variantId"`
	Delta      int64     `json:"delta"`
	Reason     string    `json:"reason"`
	Notes      *string   `json:"notes,omitempty"`
	StockAfter int64     `json:"stockAfter"`
	CreatedAt  time.Time `json:"createdAt"`
	CreatedBy  string    `json:"createdBy,omitempty"`
}

// FromAdjustment maps an adjustment.
func FromAdjustment(a *adjustments.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:         a.ID.String(),
		VariantID:  a.VariantID.String(),
		Delta:      a.Delta,
		Reason:     string(a.Reason),
		Notes:      a.Notes,
		StockAfter: a.StockAfter,
		CreatedAt:  a.CreatedAt,
		CreatedBy:  a.CreatedBy,
	}
}
