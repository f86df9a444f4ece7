// Package sales implements checkout settlement and sale voids.
package sales

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

// Status is the sale lifecycle state. COMPLETED -> VOIDED is the only transition.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusVoided    Status = "VOIDED"
)

// PaymentMode is how the customer paid.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "CASH"
	PaymentCard   PaymentMode = "CARD"
	PaymentUPI    PaymentMode = "UPI"
	PaymentCredit PaymentMode = "CREDIT"
)

// Valid reports whether the payment mode is known.
func (p PaymentMode) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentCredit:
		return true
	}
	return false
}

// Sale is a settled checkout.
type Sale struct {
	entity.BaseDocument

	BillNo      string      `db:"bill_no" json:"billNo"`
	Status      Status      `db:"status" json:"status"`
	PaymentMode PaymentMode `db:"payment_mode" json:"paymentMode"`

	CustomerName  *string `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone *string `db:"customer_phone" json:"customerPhone,omitempty"`
	Notes         *string `db:"notes" json:"notes,omitempty"`

	TaxRatePercent        types.Percent `db:"tax_rate_percent" json:"taxRatePercent"`
	HeaderDiscountPercent types.Percent `db:"header_discount_percent" json:"headerDiscountPercent"`

	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxableValue   types.Money `db:"taxable_value" json:"taxableValue"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	Total          types.Money `db:"total" json:"total"`
	Profit         types.Money `db:"profit" json:"profit"`

	VoidedAt   *time.Time `db:"voided_at" json:"voidedAt,omitempty"`
	VoidedBy   *string    `db:"voided_by" json:"voidedBy,omitempty"`
	VoidReason *string    `db:"void_reason" json:"voidReason,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Item is one sale line. UnitCostAtSale is frozen at settlement.
type Item struct {
	ID                  id.ID         `db:"id" json:"id"`
	SaleID              id.ID         `db:"sale_id" json:"saleId"`
	LineNo              int           `db:"line_no" json:"lineNo"`
	VariantID           id.ID         `db:"variant_id" json:"variantId"`
	SKU                 string        `db:"sku" json:"sku"`
	Qty                 int64         `db:"qty" json:"qty"`
	UnitPrice           types.Money   `db:"unit_price" json:"unitPrice"`
	ItemDiscountPercent types.Percent `db:"item_discount_percent" json:"itemDiscountPercent"`
	EffectiveUnitPrice  types.Money   `db:"effective_unit_price" json:"effectiveUnitPrice"`
	LineAmount          types.Money   `db:"line_amount" json:"lineAmount"`
	UnitCostAtSale      types.Money   `db:"unit_cost_at_sale" json:"unitCostAtSale"`
	Revenue             types.Money   `db:"revenue" json:"revenue"`
	Profit              types.Money   `db:"profit" json:"profit"`
}

// Clone returns a deep copy.
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = append([]Item(nil), s.Items...)
	return &c
}

// LineInput is one requested checkout line.
type LineInput struct {
	VariantID           id.ID
	Qty                 int64
	UnitPrice           types.Money
	ItemDiscountPercent types.Percent
}

// Customer is optional buyer information.
type Customer struct {
	Name  string
	Phone string
}

// SettleInput is a checkout request.
type SettleInput struct {
	Items                 []LineInput
	HeaderDiscountPercent types.Percent
	PaymentMode           PaymentMode
	Customer              *Customer
	Notes                 string
}

// Validate checks the request before any mutation.
func (in *SettleInput) Validate(_ context.Context) error {
	if len(in.Items) == 0 {
		return apperror.NewValidation("sale must have at least one item")
	}
	if !in.PaymentMode.Valid() {
		return apperror.NewValidation("unknown payment mode").WithDetail("paymentMode", in.PaymentMode)
	}
	if !types.ValidPercent(in.HeaderDiscountPercent) {
		return apperror.NewValidation("header discount must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}
	for i, line := range in.Items {
		if id.IsNil(line.VariantID) {
			return apperror.NewValidation("variant id is required").WithDetail("line", i+1)
		}
		if line.Qty <= 0 || line.Qty > ledger.MaxLineQty {
			return apperror.NewInvalidQuantity(fmt.Sprintf("quantity must be between 1 and %d", ledger.MaxLineQty)).
				WithDetail("line", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").WithDetail("line", i+1)
		}
		if !types.ValidPercent(line.ItemDiscountPercent) {
			return apperror.NewValidation("item discount must be between 0 and 100").WithDetail("line", i+1)
		}
	}
	if in.Customer != nil && strings.TrimSpace(in.Customer.Name) == "" && strings.TrimSpace(in.Customer.Phone) == "" {
		in.Customer = nil
	}
	return nil
}

// RequiredQuantities merges duplicate variants by summing their quantities.
// The returned ids keep first-seen order.
func (in *SettleInput) RequiredQuantities() ([]id.ID, map[id.ID]int64) {
	required := make(map[id.ID]int64, len(in.Items))
	ids := make([]id.ID, 0, len(in.Items))
	for _, line := range in.Items {
		if _, ok := required[line.VariantID]; !ok {
			ids = append(ids, line.VariantID)
		}
		required[line.VariantID] += line.Qty
	}
	return ids, required
}

// VoidInput is a void request.
type VoidInput struct {
	SaleID id.ID
	Reason string
}

// ListFilter narrows sale listings.
type ListFilter struct {
	Status *Status
	From   *time.Time
	To     *time.Time
	BillNo string
	entity.Pagination
}
