// Package purchases implements goods receiving from suppliers.
package purchases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/ledger"
)

// Supplier is the vendor a purchase is received from.
type Supplier struct {
	ID       id.ID   `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Phone    *string `db:"phone" json:"phone,omitempty"`
	IsActive bool    `db:"is_active" json:"isActive"`
}

// Purchase is a received goods invoice.
type Purchase struct {
	entity.BaseDocument

	SupplierID  id.ID       `db:"supplier_id" json:"supplierId"`
	InvoiceNo   string      `db:"invoice_no" json:"invoiceNo"`
	InvoiceDate *time.Time  `db:"invoice_date" json:"invoiceDate,omitempty"`
	TotalCost   types.Money `db:"total_cost" json:"totalCost"`
	Notes       *string     `db:"notes" json:"notes,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Item is one received line.
type Item struct {
	ID         id.ID       `db:"id" json:"id"`
	PurchaseID id.ID       `db:"purchase_id" json:"purchaseId"`
	LineNo     int         `db:"line_no" json:"lineNo"`
	VariantID  id.ID       `db:"variant_id" json:"variantId"`
	Qty        int64       `db:"qty" json:"qty"`
	UnitCost   types.Money `db:"unit_cost" json:"unitCost"`
	LineTotal  types.Money `db:"line_total" json:"lineTotal"`
}

// Clone returns a deep copy.
func (p *Purchase) Clone() *Purchase {
	c := *p
	c.Items = append([]Item(nil), p.Items...)
	return &c
}

// LineInput is one requested receiving line.
type LineInput struct {
	VariantID id.ID
	Qty       int64
	UnitCost  types.Money
}

// ReceiveInput is a goods receipt request.
type ReceiveInput struct {
	SupplierID  id.ID
	InvoiceNo   string
	InvoiceDate *time.Time
	Notes       string
	Items       []LineInput
}

// Validate checks the request before any mutation.
func (in *ReceiveInput) Validate(_ context.Context) error {
	if id.IsNil(in.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	if strings.TrimSpace(in.InvoiceNo) == "" {
		return apperror.NewValidation("invoice number is required").WithDetail("field", "invoiceNo")
	}
	if len(in.Items) == 0 {
		return apperror.NewValidation("purchase must have at least one item")
	}
	for i, line := range in.Items {
		if id.IsNil(line.VariantID) {
			return apperror.NewValidation("variant id is required").WithDetail("line", i+1)
		}
		if line.Qty <= 0 || line.Qty > ledger.MaxLineQty {
			return apperror.NewInvalidQuantity(fmt.Sprintf("quantity must be between 1 and %d", ledger.MaxLineQty)).
				WithDetail("line", i+1)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost must not be negative").WithDetail("line", i+1)
		}
	}
	return nil
}

// ListFilter narrows purchase listings.
type ListFilter struct {
	SupplierID *id.ID
	From       *time.Time
	To         *time.Time
	entity.Pagination
}
