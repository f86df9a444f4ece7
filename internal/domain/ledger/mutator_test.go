package ledger_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/sales"
	"retailpos/internal/infrastructure/storage/memory"
)

func newMutator(t *testing.T) (*memory.Store, *ledger.Mutator) {
	t.Helper()
	s := memory.New()
	return s, ledger.NewMutator(s.Variants(), s.Sales(), s.TxManager())
}

func addVariant(s *memory.Store, qty int64, avg string) *ledger.Variant {
	v := &ledger.Variant{
		ID:           id.New(),
		ProductName:  "Denim Jacket",
		SKU:          "DJ-" + id.New().String()[:6],
		SellingPrice: types.MustMoney("1999"),
		StockQty:     qty,
		AvgCost:      types.MustMoney(avg),
		Status:       ledger.StatusActive,
	}
	s.AddVariant(v)
	return v
}

func stockOf(t *testing.T, s *memory.Store, variantID id.ID) *ledger.Variant {
	t.Helper()
	v, err := s.Variants().GetByID(context.Background(), variantID)
	require.NoError(t, err)
	return v
}

func TestIncreaseOnPurchaseWeightedAverage(t *testing.T) {
	s, m := newMutator(t)
	v := addVariant(s, 0, "0")
	ctx := context.Background()

	_, err := m.IncreaseOnPurchase(ctx, v.ID, 10, types.MustMoney("50"))
	require.NoError(t, err)
	got := stockOf(t, s, v.ID)
	assert.Equal(t, int64(10), got.StockQty)
	assert.Equal(t, "50.00", got.AvgCost.StringFixed(2))

	_, err = m.IncreaseOnPurchase(ctx, v.ID, 10, types.MustMoney("70"))
	require.NoError(t, err)
	got = stockOf(t, s, v.ID)
	assert.Equal(t, int64(20), got.StockQty)
	assert.Equal(t, "60.00", got.AvgCost.StringFixed(2))
}

func TestIncreaseOnPurchaseRejectsBadInput(t *testing.T) {
	s, m := newMutator(t)
	v := addVariant(s, 0, "0")

	_, err := m.IncreaseOnPurchase(context.Background(), v.ID, 0, types.MustMoney("5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))

	_, err = m.IncreaseOnPurchase(context.Background(), id.New(), 1, types.MustMoney("5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeVariantNotFound))
}

func TestIncreaseOnPurchaseKeepsStockInRange(t *testing.T) {
	s, m := newMutator(t)
	ctx := context.Background()

	v := addVariant(s, 10, "50")
	_, err := m.IncreaseOnPurchase(ctx, v.ID, math.MaxInt64, types.MustMoney("70"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
	got := stockOf(t, s, v.ID)
	assert.Equal(t, int64(10), got.StockQty)
	assert.Equal(t, "50.00", got.AvgCost.StringFixed(2))

	full := addVariant(s, math.MaxInt64-5, "50")
	_, err = m.IncreaseOnPurchase(ctx, full.ID, 10, types.MustMoney("70"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
	got = stockOf(t, s, full.ID)
	assert.Equal(t, int64(math.MaxInt64-5), got.StockQty)
	assert.False(t, got.AvgCost.IsNegative())
}

func TestAdjustByDeltaKeepsStockInRange(t *testing.T) {
	s, m := newMutator(t)
	ctx := context.Background()

	v := addVariant(s, 3, "40")
	for _, delta := range []int64{math.MinInt64, math.MaxInt64, ledger.MaxLineQty + 1, -ledger.MaxLineQty - 1} {
		_, err := m.AdjustByDelta(ctx, v.ID, delta)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity), "delta %d", delta)
	}
	assert.Equal(t, int64(3), stockOf(t, s, v.ID).StockQty)

	full := addVariant(s, math.MaxInt64-1, "40")
	_, err := m.AdjustByDelta(ctx, full.ID, 2)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))
	assert.Equal(t, int64(math.MaxInt64-1), stockOf(t, s, full.ID).StockQty)
}

func TestDecreaseOnSaleReturnsCostBeforeMutation(t *testing.T) {
	s, m := newMutator(t)
	v := addVariant(s, 5, "60")

	cost, err := m.DecreaseOnSale(context.Background(), v.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "60.00", cost.StringFixed(2))

	got := stockOf(t, s, v.ID)
	assert.Equal(t, int64(3), got.StockQty)
	assert.True(t, got.AvgCost.Equal(types.MustMoney("60")), "sale must not change avg_cost")
}

func TestDecreaseOnSaleInsufficientStock(t *testing.T) {
	s, m := newMutator(t)
	v := addVariant(s, 3, "60")

	_, err := m.DecreaseOnSale(context.Background(), v.ID, 5)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, v.SKU, appErr.Details["sku"])
	assert.Equal(t, int64(3), appErr.Details["available"])
	assert.Contains(t, appErr.Message, v.SKU)
	assert.Equal(t, int64(3), stockOf(t, s, v.ID).StockQty)
}

func TestAdjustByDelta(t *testing.T) {
	s, m := newMutator(t)
	v := addVariant(s, 3, "40")
	ctx := context.Background()

	_, err := m.AdjustByDelta(ctx, v.ID, -5)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, int64(3), stockOf(t, s, v.ID).StockQty)

	_, err = m.AdjustByDelta(ctx, v.ID, 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))

	updated, err := m.AdjustByDelta(ctx, v.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.StockQty)

	updated, err = m.AdjustByDelta(ctx, v.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.StockQty)
	assert.True(t, stockOf(t, s, v.ID).AvgCost.Equal(types.MustMoney("40")))
}

func TestRestoreOnVoidAddsBackEveryLine(t *testing.T) {
	s, m := newMutator(t)
	a := addVariant(s, 10, "20")
	b := addVariant(s, 4, "35")
	ctx := context.Background()

	sale := &sales.Sale{
		BaseDocument: entity.NewBaseDocument("tester"),
		BillNo:       "BILL-000001",
		Status:       sales.StatusCompleted,
		Items: []sales.Item{
			{ID: id.New(), VariantID: a.ID, Qty: 2},
			{ID: id.New(), VariantID: b.ID, Qty: 1},
			{ID: id.New(), VariantID: a.ID, Qty: 3},
		},
	}
	require.NoError(t, s.Sales().Create(ctx, sale))

	require.NoError(t, m.RestoreOnVoid(ctx, sale.ID))
	assert.Equal(t, int64(15), stockOf(t, s, a.ID).StockQty)
	assert.Equal(t, int64(5), stockOf(t, s, b.ID).StockQty)
	assert.True(t, stockOf(t, s, a.ID).AvgCost.Equal(types.MustMoney("20")))

	// Not idempotent by itself.
	require.NoError(t, m.RestoreOnVoid(ctx, sale.ID))
	assert.Equal(t, int64(20), stockOf(t, s, a.ID).StockQty)
}

func TestWeightedAverageCost(t *testing.T) {
	tests := []struct {
		name     string
		oldQty   int64
		oldAvg   string
		qty      int64
		unitCost string
		want     string
	}{
		{"empty ledger", 0, "0", 10, "50", "50.00"},
		{"equal lots", 10, "50", 10, "70", "60.00"},
		{"rounds to cents", 1, "10", 2, "10.01", "10.01"},
		{"thirds", 2, "10", 1, "11", "10.33"},
		{"zero denominator", 0, "0", 0, "12.5", "12.50"},
		{"quantities past int64", math.MaxInt64, "50", math.MaxInt64, "70", "60.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.WeightedAverageCost(tt.oldQty, types.MustMoney(tt.oldAvg), tt.qty, types.MustMoney(tt.unitCost))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}
