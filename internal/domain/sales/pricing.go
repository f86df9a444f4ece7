package sales

import (
	"github.com/shopspring/decimal"

	"retailpos/internal/core/types"
)

// Unit prices are tax-inclusive: tax is extracted by dividing by 1 + rate/100.
// Every intermediate amount is rounded half-up to cents in the order below.

// PricedLine is a line after discounts.
type PricedLine struct {
	EffectiveUnitPrice types.Money
	LineAmount         types.Money
}

// Breakdown is the ticket-level pricing result.
type Breakdown struct {
	Lines                 []PricedLine
	TaxDivisor            decimal.Decimal
	HeaderDiscountPercent types.Percent
	Subtotal              types.Money
	TaxableValue          types.Money
	TaxAmount             types.Money
	DiscountAmount        types.Money
	Total                 types.Money
}

// Price computes line amounts, tax decomposition and the header discount.
func Price(lines []LineInput, taxRatePercent, headerDiscountPercent types.Percent) Breakdown {
	b := Breakdown{
		Lines:                 make([]PricedLine, len(lines)),
		TaxDivisor:            decimal.NewFromInt(1).Add(types.Fraction(taxRatePercent)),
		HeaderDiscountPercent: headerDiscountPercent,
		Subtotal:              types.Zero(),
	}

	for i, line := range lines {
		effective := types.Round2(line.UnitPrice.Mul(types.Complement(line.ItemDiscountPercent)))
		amount := effective.Mul(types.Qty(line.Qty))
		b.Lines[i] = PricedLine{EffectiveUnitPrice: effective, LineAmount: amount}
		b.Subtotal = b.Subtotal.Add(amount)
	}

	b.TaxableValue = types.Round2(b.Subtotal.Div(b.TaxDivisor))
	b.TaxAmount = b.Subtotal.Sub(b.TaxableValue)

	b.DiscountAmount = types.Round2(b.Subtotal.Mul(types.Fraction(headerDiscountPercent)))
	b.Total = b.Subtotal.Sub(b.DiscountAmount)
	return b
}

// LineProfit returns the tax-exclusive, header-discounted revenue of a line
// and its profit against the frozen unit cost.
func (b Breakdown) LineProfit(lineAmount types.Money, qty int64, unitCostAtSale types.Money) (revenue, profit types.Money) {
	revenue = types.Round2(lineAmount.Div(b.TaxDivisor))
	revenue = types.Round2(revenue.Mul(types.Complement(b.HeaderDiscountPercent)))
	cost := unitCostAtSale.Mul(types.Qty(qty))
	return revenue, revenue.Sub(cost)
}
