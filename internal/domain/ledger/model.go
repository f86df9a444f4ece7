// Package ledger owns the per-variant stock quantity and cost basis.
//
// Mutator is the only code path that changes stock_qty or avg_cost.
package ledger

import (
	"time"

	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
)

// MaxLineQty is the largest quantity one document line or adjustment may move.
const MaxLineQty int64 = 1_000_000

// Status is the variant lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Variant is a sellable SKU and the unit of the ledger.
type Variant struct {
	ID           id.ID       `db:"id" json:"id"`
	ProductName  string      `db:"product_name" json:"productName"`
	SKU          string      `db:"sku" json:"sku"`
	Barcode      *string     `db:"barcode" json:"barcode,omitempty"`
	Size         *string     `db:"size" json:"size,omitempty"`
	Color        *string     `db:"color" json:"color,omitempty"`
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`
	StockQty     int64       `db:"stock_qty" json:"stockQty"`
	AvgCost      types.Money `db:"avg_cost" json:"avgCost"`
	Status       Status      `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the variant can be sold.
func (v *Variant) IsActive() bool {
	return v.Status == StatusActive
}

// Clone returns a copy safe to hand out of a store.
func (v *Variant) Clone() *Variant {
	c := *v
	return &c
}

// SaleLine is the part of a settled sale line the ledger needs to reverse it.
type SaleLine struct {
	VariantID id.ID `db:"variant_id"`
	Qty       int64 `db:"qty"`
}

// ListFilter narrows variant listings.
type ListFilter struct {
	Search string
	Status Status
	// MaxStock, when set, keeps only variants with stock_qty <= MaxStock (low-stock view).
	MaxStock *int64
	entity.Pagination
}
