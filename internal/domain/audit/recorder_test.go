package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/id"
	"retailpos/internal/core/security"
)

type captureStore struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (s *captureStore) Write(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func TestRecorderCapturesActorBeforeDispatch(t *testing.T) {
	store := &captureStore{}
	rec := NewRecorder(store, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = security.WithUserID(ctx, "cashier-1")
	ctx = security.WithClientIP(ctx, "192.168.1.20")

	saleID := id.New()
	rec.Record(ctx, EntitySale, saleID, ActionCreate, "Sale BILL-000001 created", map[string]any{"total": "236.00"})
	// The request finishing must not cancel the write.
	cancel()
	rec.Close()

	require.Len(t, store.entries, 1)
	got := store.entries[0]
	assert.Equal(t, EntitySale, got.EntityType)
	assert.Equal(t, saleID, got.EntityID)
	assert.Equal(t, ActionCreate, got.Action)
	assert.Equal(t, "cashier-1", got.ActorID)
	assert.Equal(t, "192.168.1.20", got.ActorIP)
	assert.False(t, id.IsNil(got.ID))
}

func TestRecorderSwallowsStoreErrors(t *testing.T) {
	store := &captureStore{err: errors.New("audit table missing")}
	rec := NewRecorder(store, time.Second)

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), EntityAdjustment, id.New(), ActionAdjustment, "x", nil)
		rec.Close()
	})
	assert.Empty(t, store.entries)
}
