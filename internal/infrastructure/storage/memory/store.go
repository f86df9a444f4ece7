// Package memory is an in-process implementation of every ledger repository.
//
// Each variant, sale and sequence counter has its own lock token. Tokens taken
// inside a transaction are held until it commits or rolls back, and a rollback
// replays the transaction's undo log. Unlocked reads may observe writes of a
// transaction that is still running; the engines only use such reads for
// fail-fast pre-checks.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/tx"
	"retailpos/internal/domain/adjustments"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/domain/sales"
	"retailpos/internal/domain/settings"
)

// DefaultLockTimeout bounds how long a transaction waits for one lock.
const DefaultLockTimeout = 5 * time.Second

var errLockTimeout = errors.New("lock wait timeout")

// Store holds all ledger state in memory.
type Store struct {
	mu          sync.RWMutex
	variants    map[id.ID]*ledger.Variant
	suppliers   map[id.ID]*purchases.Supplier
	sales       map[id.ID]*sales.Sale
	purchases   map[id.ID]*purchases.Purchase
	adjustments map[id.ID]*adjustments.Adjustment
	settings    *settings.Settings
	counters    map[string]int64
	auditLog    []audit.Entry

	locks       *lockTable
	lockTimeout time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithLockTimeout sets the bounded lock wait.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		variants:    make(map[id.ID]*ledger.Variant),
		suppliers:   make(map[id.ID]*purchases.Supplier),
		sales:       make(map[id.ID]*sales.Sale),
		purchases:   make(map[id.ID]*purchases.Purchase),
		adjustments: make(map[id.ID]*adjustments.Adjustment),
		settings:    settings.Default(),
		counters:    make(map[string]int64),
		locks:       &lockTable{slots: make(map[string]chan struct{})},
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddVariant inserts or replaces a variant (catalog management is external).
func (s *Store) AddVariant(v *ledger.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := v.Clone()
	if c.Status == "" {
		c.Status = ledger.StatusActive
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
		c.UpdatedAt = c.CreatedAt
	}
	s.variants[c.ID] = c
}

// AddSupplier inserts or replaces a supplier.
func (s *Store) AddSupplier(sup *purchases.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sup
	s.suppliers[c.ID] = &c
}

// AuditEntries returns a copy of the written audit entries.
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Entry(nil), s.auditLog...)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// --- transactions ---

type txKey struct{}

type txState struct {
	held  map[string]bool
	order []string
	undo  []func()
}

func txFrom(ctx context.Context) *txState {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return st
	}
	return nil
}

// TxManager runs functions in in-memory transactions.
type TxManager struct {
	store *Store
}

var _ tx.Manager = (*TxManager)(nil)

// TxManager returns the store's transaction manager.
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// RunInTransaction executes fn; on error (or panic) all writes made through ctx
// are reverted. Locks are released in both cases.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}

	st := &txState{held: make(map[string]bool)}
	committed := false
	defer func() {
		if !committed {
			m.store.rollback(st)
		}
		m.store.release(st)
	}()

	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) rollback(st *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(st.undo) - 1; i >= 0; i-- {
		st.undo[i]()
	}
	st.undo = nil
}

func (s *Store) release(st *txState) {
	for i := len(st.order) - 1; i >= 0; i-- {
		s.locks.release(st.order[i])
	}
	st.order = nil
}

// lock takes the named lock for the transaction in ctx.
func (s *Store) lock(ctx context.Context, key, entity string) error {
	st := txFrom(ctx)
	if st == nil {
		return fmt.Errorf("memory: lock %s requested outside a transaction", key)
	}
	if st.held[key] {
		return nil
	}
	if err := s.locks.acquire(ctx, key, s.lockTimeout); err != nil {
		if errors.Is(err, errLockTimeout) {
			return apperror.NewLockTimeout(entity).WithCause(err)
		}
		return err
	}
	st.held[key] = true
	st.order = append(st.order, key)
	return nil
}

// mutate runs apply under the write lock and registers undo with the
// transaction in ctx, if there is one.
func (s *Store) mutate(ctx context.Context, apply, undo func()) {
	s.mu.Lock()
	apply()
	s.mu.Unlock()
	if st := txFrom(ctx); st != nil && undo != nil {
		st.undo = append(st.undo, undo)
	}
}

// --- lock table ---

type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func (t *lockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.slots[key] = ch
	}
	return ch
}

func (t *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := t.slot(key)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return errLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *lockTable) release(key string) {
	<-t.slot(key)
}

func variantKey(v id.ID) string { return "variant:" + v.String() }
func saleKey(v id.ID) string    { return "sale:" + v.String() }
func seqKey(k string) string    { return "seq:" + k }

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
