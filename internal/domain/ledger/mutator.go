package ledger

import (
	"context"
	"fmt"
	"math"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/tx"
	"retailpos/internal/core/types"
)

// Mutator implements the four stock primitives.
//
// Every primitive runs as lock-read-modify-write inside a transaction: when the
// caller already has one in ctx it is joined, so the variant locks are held
// until the caller's commit or rollback.
type Mutator struct {
	repo      Repository
	saleLines SaleLineReader
	txManager tx.Manager
}

// NewMutator creates the stock mutator.
func NewMutator(repo Repository, saleLines SaleLineReader, txManager tx.Manager) *Mutator {
	return &Mutator{
		repo:      repo,
		saleLines: saleLines,
		txManager: txManager,
	}
}

// Lock acquires exclusive locks on the given variants in ascending id order.
// It must be called inside a transaction; the locks live until it ends.
func (m *Mutator) Lock(ctx context.Context, ids []id.ID) (map[id.ID]*Variant, error) {
	ordered := id.SortedUnique(ids)
	locked, err := m.repo.LockForUpdate(ctx, ordered)
	if err != nil {
		return nil, err
	}
	for _, variantID := range ordered {
		if _, ok := locked[variantID]; !ok {
			return nil, apperror.NewNotFound("variant", variantID)
		}
	}
	return locked, nil
}

func (m *Mutator) lockOne(ctx context.Context, variantID id.ID) (*Variant, error) {
	locked, err := m.Lock(ctx, []id.ID{variantID})
	if err != nil {
		return nil, err
	}
	return locked[variantID], nil
}

// IncreaseOnPurchase adds received stock and folds unitCost into the weighted average.
func (m *Mutator) IncreaseOnPurchase(ctx context.Context, variantID id.ID, qty int64, unitCost types.Money) (*Variant, error) {
	if qty <= 0 || qty > MaxLineQty {
		return nil, apperror.NewInvalidQuantity(fmt.Sprintf("purchase quantity must be between 1 and %d", MaxLineQty)).
			WithDetail("variant_id", variantID)
	}
	if unitCost.IsNegative() {
		return nil, apperror.NewValidation("unit cost must not be negative").
			WithDetail("variant_id", variantID)
	}

	var updated *Variant
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := m.lockOne(ctx, variantID)
		if err != nil {
			return err
		}

		newQty, err := addStock(v, qty)
		if err != nil {
			return err
		}
		newAvg := WeightedAverageCost(v.StockQty, v.AvgCost, qty, unitCost)
		if err := m.repo.UpdateStock(ctx, v.ID, newQty, newAvg); err != nil {
			return err
		}

		v.StockQty = newQty
		v.AvgCost = newAvg
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DecreaseOnSale removes sold stock and returns the average cost as it was
// before the mutation. The availability check and the decrement happen under
// the same lock.
func (m *Mutator) DecreaseOnSale(ctx context.Context, variantID id.ID, qty int64) (types.Money, error) {
	if qty <= 0 {
		return types.Zero(), apperror.NewInvalidQuantity("sale quantity must be positive").
			WithDetail("variant_id", variantID)
	}

	var costAtSale types.Money
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := m.lockOne(ctx, variantID)
		if err != nil {
			return err
		}
		if v.StockQty < qty {
			return apperror.NewInsufficientStock(v.ID.String(), v.SKU, qty, v.StockQty)
		}

		costAtSale = v.AvgCost
		return m.repo.UpdateStock(ctx, v.ID, v.StockQty-qty, v.AvgCost)
	})
	if err != nil {
		return types.Zero(), err
	}
	return costAtSale, nil
}

// RestoreOnVoid puts every line of the sale back on hand. avg_cost is left as is.
// It is not idempotent: the void engine guards against a second call.
func (m *Mutator) RestoreOnVoid(ctx context.Context, saleID id.ID) error {
	return m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		lines, err := m.saleLines.GetSaleLines(ctx, saleID)
		if err != nil {
			return err
		}

		restore := make(map[id.ID]int64, len(lines))
		ids := make([]id.ID, 0, len(lines))
		for _, line := range lines {
			if _, ok := restore[line.VariantID]; !ok {
				ids = append(ids, line.VariantID)
			}
			restore[line.VariantID] += line.Qty
		}

		locked, err := m.Lock(ctx, ids)
		if err != nil {
			return err
		}
		for _, variantID := range id.SortedUnique(ids) {
			v := locked[variantID]
			newQty, err := addStock(v, restore[variantID])
			if err != nil {
				return err
			}
			if err := m.repo.UpdateStock(ctx, v.ID, newQty, v.AvgCost); err != nil {
				return err
			}
		}
		return nil
	})
}

// AdjustByDelta applies a signed correction. The result may not go below zero.
func (m *Mutator) AdjustByDelta(ctx context.Context, variantID id.ID, delta int64) (*Variant, error) {
	if delta == 0 {
		return nil, apperror.NewInvalidQuantity("adjustment quantity must not be zero").
			WithDetail("variant_id", variantID)
	}
	if delta > MaxLineQty || delta < -MaxLineQty {
		return nil, apperror.NewInvalidQuantity(fmt.Sprintf("adjustment quantity must be between -%d and %d", MaxLineQty, MaxLineQty)).
			WithDetail("variant_id", variantID)
	}

	var updated *Variant
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := m.lockOne(ctx, variantID)
		if err != nil {
			return err
		}

		if delta < 0 && v.StockQty < -delta {
			return apperror.NewInsufficientStock(v.ID.String(), v.SKU, -delta, v.StockQty)
		}
		newQty, err := addStock(v, delta)
		if err != nil {
			return err
		}
		if err := m.repo.UpdateStock(ctx, v.ID, newQty, v.AvgCost); err != nil {
			return err
		}

		v.StockQty = newQty
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// WeightedAverageCost computes (oldQty*oldAvg + qty*unitCost) / (oldQty + qty)
// rounded to cents. A zero denominator yields unitCost.
func WeightedAverageCost(oldQty int64, oldAvg types.Money, qty int64, unitCost types.Money) types.Money {
	total := types.Qty(oldQty).Add(types.Qty(qty))
	if total.IsZero() {
		return unitCost
	}
	value := types.Qty(oldQty).Mul(oldAvg).Add(types.Qty(qty).Mul(unitCost))
	return types.Round2(value.Div(total))
}

// addStock returns v.StockQty+delta, refusing results outside [0, MaxInt64].
func addStock(v *Variant, delta int64) (int64, error) {
	if delta > 0 && v.StockQty > math.MaxInt64-delta {
		return 0, apperror.NewInvalidQuantity("resulting stock quantity is out of range").
			WithDetail("variant_id", v.ID).
			WithDetail("stock_qty", v.StockQty)
	}
	if delta < 0 && v.StockQty+delta < 0 {
		return 0, apperror.NewInsufficientStock(v.ID.String(), v.SKU, -delta, v.StockQty)
	}
	return v.StockQty + delta, nil
}
