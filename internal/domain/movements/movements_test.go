package movements_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/adjustments"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/movements"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/domain/sales"
	"retailpos/internal/domain/settings"
	"retailpos/internal/infrastructure/storage/memory"
)

func TestHistoryMergesAllSources(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	v := &ledger.Variant{ID: id.New(), ProductName: "Tee", SKU: "TEE-S", SellingPrice: types.MustMoney("100"), Status: ledger.StatusActive}
	store.AddVariant(v)
	supplier := &purchases.Supplier{ID: id.New(), Name: "Acme", IsActive: true}
	store.AddSupplier(supplier)

	mutator := ledger.NewMutator(store.Variants(), store.Sales(), store.TxManager())
	purchaseSvc := purchases.NewService(store.Purchases(), store.Suppliers(), mutator, store.TxManager(), audit.Nop{})
	saleSvc := sales.NewService(store.Sales(), store.Variants(), mutator, store.Numerator(),
		settings.NewService(store.Settings(), audit.Nop{}), store.TxManager(), audit.Nop{})
	adjustSvc := adjustments.NewService(store.Adjustments(), mutator, store.TxManager(), audit.Nop{})
	svc := movements.NewService(store.Movements(), store.Variants())

	_, err := purchaseSvc.Receive(ctx, purchases.ReceiveInput{
		SupplierID: supplier.ID,
		InvoiceNo:  "INV-77",
		Items:      []purchases.LineInput{{VariantID: v.ID, Qty: 10, UnitCost: types.MustMoney("40")}},
	})
	require.NoError(t, err)
	sale, err := saleSvc.Settle(ctx, sales.SettleInput{
		Items:       []sales.LineInput{{VariantID: v.ID, Qty: 3, UnitPrice: types.MustMoney("100")}},
		PaymentMode: sales.PaymentCash,
	})
	require.NoError(t, err)
	_, err = saleSvc.Void(ctx, sales.VoidInput{SaleID: sale.ID, Reason: "wrong size"})
	require.NoError(t, err)
	_, err = adjustSvc.Adjust(ctx, adjustments.Input{VariantID: v.ID, Delta: -1, Reason: adjustments.ReasonDamage})
	require.NoError(t, err)

	history, err := svc.History(ctx, v.ID, movements.Filter{})
	require.NoError(t, err)
	require.Len(t, history, 4)

	var net int64
	byType := make(map[movements.Type]int64)
	for _, m := range history {
		net += m.Qty
		byType[m.Type] += m.Qty
	}
	assert.Equal(t, int64(10), byType[movements.TypePurchase])
	assert.Equal(t, int64(-3), byType[movements.TypeSale])
	assert.Equal(t, int64(3), byType[movements.TypeVoid])
	assert.Equal(t, int64(-1), byType[movements.TypeAdjustment])

	got, err := store.Variants().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, got.StockQty, net, "movements must reconcile with on-hand stock")

	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].OccurredAt.Before(history[i-1].OccurredAt))
	}
}

func TestHistoryUnknownVariant(t *testing.T) {
	store := memory.New()
	svc := movements.NewService(store.Movements(), store.Variants())

	_, err := svc.History(context.Background(), id.New(), movements.Filter{})
	assert.True(t, apperror.HasCode(err, apperror.CodeVariantNotFound))
}
