package dto

import (
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/purchases"
)

// ReceivePurchaseRequest is the goods receipt request body.
type ReceivePurchaseRequest struct {
	SupplierID  string                `json:"supplierId" binding:"required,uuid"`
	InvoiceNo   string                `json:"invoiceNo" binding:"required,max=64"`
	InvoiceDate *time.Time            `json:"invoiceDate,omitempty"`
	Notes       string                `json:"notes,omitempty" binding:"max=500"`
	Items       []PurchaseLineRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseLineRequest is one received line.
type PurchaseLineRequest struct {
	VariantID string       `json:"variantId" binding:"required,uuid"`
	Qty       int64        `json:"qty"`
	UnitCost  *types.Money `json:"unitCost" binding:"required"`
}

// ToInput converts the request to the receiving input.
func (r *ReceivePurchaseRequest) ToInput() (purchases.ReceiveInput, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return purchases.ReceiveInput{}, apperror.NewValidation("invalid supplier id")
	}
	in := purchases.ReceiveInput{
		SupplierID:  supplierID,
		InvoiceNo:   r.InvoiceNo,
		InvoiceDate: r.InvoiceDate,
		Notes:       r.Notes,
		Items:       make([]purchases.LineInput, 0, len(r.Items)),
	}
	for i, line := range r.Items {
		variantID, err := id.Parse(line.VariantID)
		if err != nil {
			return purchases.ReceiveInput{}, apperror.NewValidation("invalid variant id").WithDetail("line", i+1)
		}
		in.Items = append(in.Items, purchases.LineInput{
			VariantID: variantID,
			Qty:       line.Qty,
			UnitCost:  *line.UnitCost,
		})
	}
	return in, nil
}

// PurchaseListQuery filters GET /purchases.
type PurchaseListQuery struct {
	PageQuery
	WindowQuery
	SupplierID string `form:"supplierId" binding:"omitempty,uuid"`
}

// ToFilter converts the query to the domain filter.
func (q *PurchaseListQuery) ToFilter() (purchases.ListFilter, error) {
	supplierID, err := parseOptionalID(q.SupplierID)
	if err != nil {
		return purchases.ListFilter{}, apperror.NewValidation("invalid supplier id")
	}
	return purchases.ListFilter{
		SupplierID: supplierID,
		From:       q.From,
		To:         q.To,
		Pagination: q.Pagination(),
	}, nil
}

// PurchaseResponse is the PurchaseDetail.
type PurchaseResponse struct {
	ID          string                 `json:"id"`
	SupplierID  string                 `json:"supplierId"`
	InvoiceNo   string                 `json:"invoiceNo"`
	InvoiceDate *time.Time             `json:"invoiceDate,omitempty"`
	TotalCost   string                 `json:"totalCost"`
	Notes       *string                `json:"notes,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	CreatedBy   string                 `json:"createdBy,omitempty"`
	Items       []PurchaseItemResponse `json:"items,omitempty"`
}

// PurchaseItemResponse is one received line.
type PurchaseItemResponse struct {
	LineNo    int    `json:"lineNo"`
	VariantID string `json:"variantId"`
	Qty       int64  `json:"qty"`
	UnitCost  string `json:"unitCost"`
	LineTotal string `json:"lineTotal"`
}

// FromPurchase maps a purchase and whatever items it carries.
func FromPurchase(p *purchases.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:          p.ID.String(),
		SupplierID:  p.SupplierID.String(),
		InvoiceNo:   p.InvoiceNo,
		InvoiceDate: p.InvoiceDate,
		TotalCost:   money(p.TotalCost),
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		CreatedBy:   p.CreatedBy,
	}
	for _, it := range p.Items {
		resp.Items = append(resp.Items, PurchaseItemResponse{
			LineNo:    it.LineNo,
			VariantID: it.VariantID.String(),
			Qty:       it.Qty,
			UnitCost:  money(it.UnitCost),
			LineTotal: money(it.LineTotal),
		})
	}
	return resp
}
