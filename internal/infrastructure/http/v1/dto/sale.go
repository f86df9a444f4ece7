package dto

import (
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/sales"
)

// --- Request DTOs ---

// SettleSaleRequest is the checkout request body.
type SettleSaleRequest struct {
	Items           []SaleLineRequest `json:"items" binding:"required,min=1,dive"`
	DiscountPercent types.Percent     `json:"discountPercent"`
	PaymentMode     string            `json:"paymentMode" binding:"required"`
	Customer        *CustomerRequest  `json:"customer,omitempty"`
	Notes           string            `json:"notes,omitempty" binding:"max=500"`
}

// SaleLineRequest is one checkout line. Quantity rules are enforced by the engine.
type SaleLineRequest struct {
	VariantID       string        `json:"variantId" binding:"required,uuid"`
	Qty             int64         `json:"qty"`
	UnitPrice       *types.Money  `json:"unitPrice" binding:"required"`
	DiscountPercent types.Percent `json:"discountPercent"`
}

// CustomerRequest is optional buyer information.
type CustomerRequest struct {
	Name  string `json:"name,omitempty" binding:"max=120"`
	Phone string `json:"phone,omitempty" binding:"max=32"`
}

// ToInput converts the request to the settlement input.
func (r *SettleSaleRequest) ToInput() (sales.SettleInput, error) {
	in := sales.SettleInput{
		Items:                 make([]sales.LineInput, 0, len(r.Items)),
		HeaderDiscountPercent: r.DiscountPercent,
		PaymentMode:           sales.PaymentMode(r.PaymentMode),
		Notes:                 r.Notes,
	}
	for i, line := range r.Items {
		variantID, err := id.Parse(line.VariantID)
		if err != nil {
			return sales.SettleInput{}, apperror.NewValidation("invalid variant id").WithDetail("line", i+1)
		}
		in.Items = append(in.Items, sales.LineInput{
			VariantID:           variantID,
			Qty:                 line.Qty,
			UnitPrice:           *line.UnitPrice,
			ItemDiscountPercent: line.DiscountPercent,
		})
	}
	if r.Customer != nil {
		in.Customer = &sales.Customer{Name: r.Customer.Name, Phone: r.Customer.Phone}
	}
	return in, nil
}

// VoidSaleRequest is the void request body.
type VoidSaleRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SaleListQuery filters GET /sales.
type SaleListQuery struct {
	PageQuery
	WindowQuery
	Status string `form:"status" binding:"omitempty,oneof=COMPLETED VOIDED"`
	BillNo string `form:"billNo"`
}

// ToFilter converts the query to the domain filter.
func (q *SaleListQuery) ToFilter() sales.ListFilter {
	f := sales.ListFilter{
		From:       q.From,
		To:         q.To,
		BillNo:     q.BillNo,
		Pagination: q.Pagination(),
	}
	if q.Status != "" {
		st := sales.Status(q.Status)
		f.Status = &st
	}
	return f
}

// --- Response DTOs ---

// SaleResponse is the SaleDetail returned by settle, void and get.
type SaleResponse struct {
	ID                    string             `json:"id"`
	BillNo                string             `json:"billNo"`
	Status                string             `json:"status"`
	PaymentMode           string             `json:"paymentMode"`
	CustomerName          *string            `json:"customerName,omitempty"`
	CustomerPhone         *string            `json:"customerPhone,omitempty"`
	Notes                 *string            `json:"notes,omitempty"`
	TaxRatePercent        string             `json:"taxRatePercent"`
	HeaderDiscountPercent string             `json:"headerDiscountPercent"`
	Subtotal              string             `json:"subtotal"`
	DiscountAmount        string             `json:"discountAmount"`
	TaxableValue          string             `json:"taxableValue"`
	TaxAmount             string             `json:"taxAmount"`
	Total                 string             `json:"total"`
	Profit                string             `json:"profit"`
	CreatedAt             time.Time          `json:"createdAt"`
	CreatedBy             string             `json:"createdBy,omitempty"`
	VoidedAt              *time.Time         `json:"voidedAt,omitempty"`
	VoidedBy              *string            `json:"voidedBy,omitempty"`
	VoidReason            *string            `json:"voidReason,omitempty"`
	Items                 []SaleItemResponse `json:"items,omitempty"`
}

// SaleItemResponse is one sale line.
type SaleItemResponse struct {
	LineNo              int    `json:"lineNo"`
	VariantID           string `json:"variantId"`
	SKU                 string `json:"sku"`
	Qty                 int64  `json:"qty"`
	UnitPrice           string `json:"unitPrice"`
	ItemDiscountPercent string `json:"itemDiscountPercent"`
	EffectiveUnitPrice  string `json:"effectiveUnitPrice"`
	LineAmount          string `json:"lineAmount"`
	UnitCostAtSale      string `json:"unitCostAtSale"`
	Revenue             string `json:"revenue"`
	LineProfit          string `json:"lineProfit"`
}

// FromSale maps a sale with its items.
func FromSale(s *sales.Sale) SaleResponse {
	resp := FromSaleHeader(s)
	resp.Items = make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			LineNo:              it.LineNo,
			VariantID:           it.VariantID.String(),
			SKU:                 it.SKU,
			Qty:                 it.Qty,
			UnitPrice:           money(it.UnitPrice),
			ItemDiscountPercent: it.ItemDiscountPercent.String(),
			EffectiveUnitPrice:  money(it.EffectiveUnitPrice),
			LineAmount:          money(it.LineAmount),
			UnitCostAtSale:      money(it.UnitCostAtSale),
			Revenue:             money(it.Revenue),
			LineProfit:          money(it.Profit),
		})
	}
	return resp
}

// FromSaleHeader maps the header only, for listings.
func FromSaleHeader(s *sales.Sale) SaleResponse {
	return SaleResponse{
		ID:                    s.ID.String(),
		BillNo:                s.BillNo,
		Status:                string(s.Status),
		PaymentMode:           string(s.PaymentMode),
		CustomerName:          s.CustomerName,
		CustomerPhone:         s.CustomerPhone,
		Notes:                 s.Notes,
		TaxRatePercent:        s.TaxRatePercent.String(),
		HeaderDiscountPercent: s.HeaderDiscountPercent.String(),
		Subtotal:              money(s.Subtotal),
		DiscountAmount:        money(s.DiscountAmount),
		TaxableValue:          money(s.TaxableValue),
		TaxAmount:             money(s.TaxAmount),
		Total:                 money(s.Total),
		Profit:                money(s.Profit),
		CreatedAt:             s.CreatedAt,
		CreatedBy:             s.CreatedBy,
		VoidedAt:              s.VoidedAt,
		VoidedBy:              s.VoidedBy,
		VoidReason:            s.VoidReason,
	}
}
