package adjustments_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/security"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/adjustments"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/infrastructure/storage/memory"
)

func setup(t *testing.T, qty int64) (*memory.Store, *adjustments.Service, *ledger.Variant) {
	t.Helper()
	store := memory.New()
	v := &ledger.Variant{
		ID:           id.New(),
		ProductName:  "Kurta",
		SKU:          "KU-M-RED",
		SellingPrice: types.MustMoney("799"),
		StockQty:     qty,
		AvgCost:      types.MustMoney("300"),
		Status:       ledger.StatusActive,
	}
	store.AddVariant(v)
	mutator := ledger.NewMutator(store.Variants(), store.Sales(), store.TxManager())
	return store, adjustments.NewService(store.Adjustments(), mutator, store.TxManager(), audit.Nop{}), v
}

func stockOf(t *testing.T, store *memory.Store, variantID id.ID) *ledger.Variant {
	t.Helper()
	v, err := store.Variants().GetByID(context.Background(), variantID)
	require.NoError(t, err)
	return v
}

func TestAdjustAppliesDelta(t *testing.T) {
	store, svc, v := setup(t, 3)
	ctx := security.WithUserID(context.Background(), "manager-2")

	adj, err := svc.Adjust(ctx, adjustments.Input{VariantID: v.ID, Delta: 7, Reason: adjustments.ReasonCorrection, Notes: " recount "})
	require.NoError(t, err)
	assert.Equal(t, int64(10), adj.StockAfter)
	assert.Equal(t, "manager-2", adj.CreatedBy)
	require.NotNil(t, adj.Notes)
	assert.Equal(t, "recount", *adj.Notes)

	adj, err = svc.Adjust(ctx, adjustments.Input{VariantID: v.ID, Delta: -4, Reason: adjustments.ReasonDamage})
	require.NoError(t, err)
	assert.Equal(t, int64(6), adj.StockAfter)

	got := stockOf(t, store, v.ID)
	assert.Equal(t, int64(6), got.StockQty)
	assert.Equal(t, "300.00", got.AvgCost.StringFixed(2), "adjustments never touch average cost")

	stored, err := svc.GetByID(ctx, adj.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), stored.Delta)

	reason := adjustments.ReasonDamage
	list, total, err := svc.List(ctx, adjustments.ListFilter{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestAdjustBelowZeroLeavesNoRecord(t *testing.T) {
	store, svc, v := setup(t, 3)

	_, err := svc.Adjust(context.Background(), adjustments.Input{VariantID: v.ID, Delta: -5, Reason: adjustments.ReasonTheft})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(3), appErr.Details["available"])

	assert.Equal(t, int64(3), stockOf(t, store, v.ID).StockQty)
	_, total, err := svc.List(context.Background(), adjustments.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAdjustValidation(t *testing.T) {
	_, svc, v := setup(t, 3)

	_, err := svc.Adjust(context.Background(), adjustments.Input{VariantID: v.ID, Delta: 0, Reason: adjustments.ReasonOther})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))

	_, err = svc.Adjust(context.Background(), adjustments.Input{VariantID: v.ID, Delta: 1, Reason: "LOST_IN_MAIL"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.Adjust(context.Background(), adjustments.Input{VariantID: id.New(), Delta: 1, Reason: adjustments.ReasonOther})
	assert.True(t, apperror.HasCode(err, apperror.CodeVariantNotFound))

	_, err = svc.GetByID(context.Background(), id.New())
	assert.True(t, apperror.HasCode(err, apperror.CodeAdjustmentNotFound))
}
