package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/numerator"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/ledger"
)

func seedVariant(s *Store, qty int64, avg string) *ledger.Variant {
	v := &ledger.Variant{
		ID:           id.New(),
		ProductName:  "Cotton Tee",
		SKU:          "TEE-" + id.New().String()[:8],
		SellingPrice: types.MustMoney("499"),
		StockQty:     qty,
		AvgCost:      types.MustMoney(avg),
		Status:       ledger.StatusActive,
	}
	s.AddVariant(v)
	return v
}

func TestRollbackRevertsWrites(t *testing.T) {
	s := New()
	v := seedVariant(s, 10, "50")
	txm := s.TxManager()
	repo := s.Variants()

	boom := errors.New("boom")
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockForUpdate(ctx, []id.ID{v.ID})
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStock(ctx, v.ID, 3, types.MustMoney("70")))
		require.NoError(t, repo.UpdateStock(ctx, v.ID, 1, types.MustMoney("80")))
		_, err = s.Numerator().GetNextNumber(ctx, numerator.BillConfig("BILL"), time.Now())
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.StockQty)
	assert.True(t, got.AvgCost.Equal(types.MustMoney("50")))

	// The rolled back number is handed out again.
	num, err := s.Numerator().GetNextNumber(context.Background(), numerator.BillConfig("BILL"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "BILL-000001", num)
}

func TestLockWaitIsBounded(t *testing.T) {
	s := New(WithLockTimeout(50 * time.Millisecond))
	v := seedVariant(s, 5, "10")
	txm := s.TxManager()
	repo := s.Variants()

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
			_, err := repo.LockForUpdate(ctx, []id.ID{v.ID})
			close(held)
			<-done
			return err
		})
	}()
	<-held

	err := txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockForUpdate(ctx, []id.ID{v.ID})
		return err
	})
	close(done)

	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeLockTimeout))
	assert.True(t, apperror.IsRetryable(err))
}

func TestLockIsReentrantWithinTransaction(t *testing.T) {
	s := New(WithLockTimeout(50 * time.Millisecond))
	v := seedVariant(s, 5, "10")
	repo := s.Variants()

	err := s.TxManager().RunInTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := repo.LockForUpdate(ctx, []id.ID{v.ID}); err != nil {
			return err
		}
		_, err := repo.LockForUpdate(ctx, []id.ID{v.ID})
		return err
	})
	require.NoError(t, err)

	// Released after commit.
	err = s.TxManager().RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockForUpdate(ctx, []id.ID{v.ID})
		return err
	})
	require.NoError(t, err)
}

func TestLockOutsideTransactionFails(t *testing.T) {
	s := New()
	v := seedVariant(s, 1, "1")
	_, err := s.Variants().LockForUpdate(context.Background(), []id.ID{v.ID})
	require.Error(t, err)
}

func TestLockForUpdateSkipsMissing(t *testing.T) {
	s := New()
	v := seedVariant(s, 1, "1")
	missing := id.New()

	err := s.TxManager().RunInTransaction(context.Background(), func(ctx context.Context) error {
		got, err := s.Variants().LockForUpdate(ctx, []id.ID{v.ID, missing})
		require.NoError(t, err)
		assert.Contains(t, got, v.ID)
		assert.NotContains(t, got, missing)
		return nil
	})
	require.NoError(t, err)
}
