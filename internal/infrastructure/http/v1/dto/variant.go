package dto

import (
	"time"

	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/movements"
)

// VariantListQuery filters GET /variants.
type VariantListQuery struct {
	PageQuery
	Search   string `form:"search" binding:"max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	LowStock bool   `form:"lowStock"`
}

// ToFilter converts the query to the domain filter.
func (q *VariantListQuery) ToFilter() ledger.ListFilter {
	return ledger.ListFilter{
		Search:     q.Search,
		Status:     ledger.Status(q.Status),
		Pagination: q.Pagination(),
	}
}

// VariantResponse is a variant with its ledger figures.
type VariantResponse struct {
	ID           string    `json:"id"`
	ProductName  string    `json:"productName"`
	SKU          string    `json:"sku"`
	Barcode      *string   `json:"barcode,omitempty"`
	Size         *string   `json:"size,omitempty"`
	Color        *string   `json:"color,omitempty"`
	SellingPrice string    `json:"sellingPrice"`
	StockQty     int64     `json:"stockQty"`
	AvgCost      string    `json:"avgCost"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromVariant maps a variant.
func FromVariant(v *ledger.Variant) VariantResponse {
	return VariantResponse{
		ID:           v.ID.String(),
		ProductName:  v.ProductName,
		SKU:          v.SKU,
		Barcode:      v.Barcode,
		Size:         v.Size,
		Color:        v.Color,
		SellingPrice: money(v.SellingPrice),
		StockQty:     v.StockQty,
		AvgCost:      money(v.AvgCost),
		Status:       string(v.Status),
		UpdatedAt:    v.UpdatedAt,
	}
}

// MovementQuery filters GET /variants/:id/movements.
type MovementQuery struct {
	PageQuery
	WindowQuery
}

// ToFilter converts the query to the domain filter.
func (q *MovementQuery) ToFilter() movements.Filter {
	return movements.Filter{From: q.From, To: q.To, Pagination: q.Pagination()}
}

// MovementResponse is one entry of the stock movement view.
type MovementResponse struct {
	Type        string    `json:"type"`
	ReferenceID string    `json:"referenceId"`
	ReferenceNo string    `json:"referenceNo"`
	Qty         int64     `json:"qty"`
	UnitCost    *string   `json:"unitCost,omitempty"`
	Note        *string   `json:"note,omitempty"`
	Actor       string    `json:"actor,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// FromMovements maps a movement history.
func FromMovements(items []movements.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(items))
	for _, m := range items {
		r := MovementResponse{
			Type:        string(m.Type),
			ReferenceID: m.ReferenceID.String(),
			ReferenceNo: m.ReferenceNo,
			Qty:         m.Qty,
			Note:        m.Note,
			Actor:       m.Actor,
			OccurredAt:  m.OccurredAt,
		}
		if m.UnitCost != nil {
			cost := money(*m.UnitCost)
			r.UnitCost = &cost
		}
		out = append(out, r)
	}
	return out
}
