package purchases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/security"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/infrastructure/storage/memory"
)

func setup(t *testing.T) (*memory.Store, *purchases.Service, *purchases.Supplier) {
	t.Helper()
	store := memory.New()
	supplier := &purchases.Supplier{ID: id.New(), Name: "Cotton Mills", IsActive: true}
	store.AddSupplier(supplier)

	mutator := ledger.NewMutator(store.Variants(), store.Sales(), store.TxManager())
	svc := purchases.NewService(store.Purchases(), store.Suppliers(), mutator, store.TxManager(), audit.Nop{})
	return store, svc, supplier
}

func addVariant(store *memory.Store, qty int64, avg string) *ledger.Variant {
	v := &ledger.Variant{
		ID:           id.New(),
		ProductName:  "Denim",
		SKU:          "DN-32",
		SellingPrice: types.MustMoney("999"),
		StockQty:     qty,
		AvgCost:      types.MustMoney(avg),
		Status:       ledger.StatusActive,
	}
	store.AddVariant(v)
	return v
}

func current(t *testing.T, store *memory.Store, variantID id.ID) *ledger.Variant {
	t.Helper()
	v, err := store.Variants().GetByID(context.Background(), variantID)
	require.NoError(t, err)
	return v
}

func receive(supplierID id.ID, invoice string, lines ...purchases.LineInput) purchases.ReceiveInput {
	return purchases.ReceiveInput{SupplierID: supplierID, InvoiceNo: invoice, Items: lines}
}

func TestReceiveWeightedAverage(t *testing.T) {
	store, svc, supplier := setup(t)
	v := addVariant(store, 0, "0")
	ctx := security.WithUserID(context.Background(), "store-admin")

	p, err := svc.Receive(ctx, receive(supplier.ID, "INV-1",
		purchases.LineInput{VariantID: v.ID, Qty: 10, UnitCost: types.MustMoney("50")}))
	require.NoError(t, err)
	assert.Equal(t, "500.00", p.TotalCost.StringFixed(2))
	assert.Equal(t, "store-admin", p.CreatedBy)
	got := current(t, store, v.ID)
	assert.Equal(t, int64(10), got.StockQty)
	assert.Equal(t, "50.00", got.AvgCost.StringFixed(2))

	_, err = svc.Receive(ctx, receive(supplier.ID, "INV-2",
		purchases.LineInput{VariantID: v.ID, Qty: 10, UnitCost: types.MustMoney("70")}))
	require.NoError(t, err)
	got = current(t, store, v.ID)
	assert.Equal(t, int64(20), got.StockQty)
	assert.Equal(t, "60.00", got.AvgCost.StringFixed(2))

	stored, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "500.00", stored.Items[0].LineTotal.StringFixed(2))

	list, total, err := svc.List(ctx, purchases.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)
}

func TestReceiveRepeatedVariantLines(t *testing.T) {
	store, svc, supplier := setup(t)
	v := addVariant(store, 10, "50")

	_, err := svc.Receive(context.Background(), receive(supplier.ID, "INV-9",
		purchases.LineInput{VariantID: v.ID, Qty: 10, UnitCost: types.MustMoney("70")},
		purchases.LineInput{VariantID: v.ID, Qty: 20, UnitCost: types.MustMoney("40")},
	))
	require.NoError(t, err)

	// (10*50 + 10*70) / 20 = 60, then (20*60 + 20*40) / 40 = 50
	got := current(t, store, v.ID)
	assert.Equal(t, int64(40), got.StockQty)
	assert.Equal(t, "50.00", got.AvgCost.StringFixed(2))
}

func TestReceiveSupplierChecks(t *testing.T) {
	store, svc, _ := setup(t)
	v := addVariant(store, 0, "0")
	inactive := &purchases.Supplier{ID: id.New(), Name: "Closed Co", IsActive: false}
	store.AddSupplier(inactive)
	line := purchases.LineInput{VariantID: v.ID, Qty: 1, UnitCost: types.MustMoney("5")}

	_, err := svc.Receive(context.Background(), receive(id.New(), "INV-1", line))
	assert.True(t, apperror.HasCode(err, apperror.CodeSupplierNotFound))

	_, err = svc.Receive(context.Background(), receive(inactive.ID, "INV-1", line))
	assert.True(t, apperror.HasCode(err, apperror.CodeSupplierInactive))

	assert.Equal(t, int64(0), current(t, store, v.ID).StockQty)
}

func TestReceiveRollsBackOnUnknownVariant(t *testing.T) {
	store, svc, supplier := setup(t)
	v := addVariant(store, 4, "20")

	_, err := svc.Receive(context.Background(), receive(supplier.ID, "INV-3",
		purchases.LineInput{VariantID: v.ID, Qty: 6, UnitCost: types.MustMoney("30")},
		purchases.LineInput{VariantID: id.New(), Qty: 1, UnitCost: types.MustMoney("30")},
	))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeVariantNotFound))

	got := current(t, store, v.ID)
	assert.Equal(t, int64(4), got.StockQty)
	assert.Equal(t, "20.00", got.AvgCost.StringFixed(2))

	_, total, err := svc.List(context.Background(), purchases.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestReceiveValidation(t *testing.T) {
	store, svc, supplier := setup(t)
	v := addVariant(store, 0, "0")

	tests := []struct {
		name string
		in   purchases.ReceiveInput
		code string
	}{
		{"missing invoice", receive(supplier.ID, " ",
			purchases.LineInput{VariantID: v.ID, Qty: 1, UnitCost: types.MustMoney("1")}), apperror.CodeValidation},
		{"no lines", receive(supplier.ID, "INV-1"), apperror.CodeValidation},
		{"zero qty", receive(supplier.ID, "INV-1",
			purchases.LineInput{VariantID: v.ID, Qty: 0, UnitCost: types.MustMoney("1")}), apperror.CodeInvalidQuantity},
		{"negative cost", receive(supplier.ID, "INV-1",
			purchases.LineInput{VariantID: v.ID, Qty: 1, UnitCost: types.MustMoney("-1")}), apperror.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Receive(context.Background(), tt.in)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
}
