package memory

import (
	"context"
	"time"

	"retailpos/internal/core/numerator"
)

// Numerator implements numerator.Generator on in-memory counters.
type Numerator struct {
	s *Store
}

var _ numerator.Generator = (*Numerator)(nil)

// Numerator returns the bill number generator.
func (s *Store) Numerator() *Numerator {
	return &Numerator{s: s}
}

// GetNextNumber increments the counter. Inside a transaction the counter stays
// locked until it ends and the increment is undone on rollback.
func (n *Numerator) GetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time) (string, error) {
	key := cfg.Key(period)
	if txFrom(ctx) != nil {
		if err := n.s.lock(ctx, seqKey(key), "sequence"); err != nil {
			return "", err
		}
	}

	var num int64
	n.s.mutate(ctx, func() {
		n.s.counters[key]++
		num = n.s.counters[key]
	}, func() {
		n.s.counters[key]--
	})
	return cfg.Format(period, num), nil
}

// SetNextNumber sets the counter value.
func (n *Numerator) SetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time, value int64) error {
	key := cfg.Key(period)
	var prev int64
	n.s.mutate(ctx, func() {
		prev = n.s.counters[key]
		n.s.counters[key] = value
	}, func() {
		n.s.counters[key] = prev
	})
	return nil
}
