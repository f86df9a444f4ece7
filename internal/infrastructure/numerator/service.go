// Package numerator provides the PostgreSQL implementation of bill numbering.
// It implements core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "retailpos/internal/core/numerator"
)

// Querier is the subset of pgx used by the numerator.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider resolves the querier for ctx, the open transaction if any.
type QuerierProvider interface {
	GetQuerier(ctx context.Context) Querier
}

// QuerierFunc adapts a function to QuerierProvider.
type QuerierFunc func(ctx context.Context) Querier

// GetQuerier implements QuerierProvider.
func (f QuerierFunc) GetQuerier(ctx context.Context) Querier { return f(ctx) }

// Service allocates numbers from sys_sequences.
//
// The increment is a single UPSERT ... RETURNING. Run inside the settlement
// transaction, the sequence row stays locked until commit and a rolled back
// checkout gives its number back.
type Service struct {
	queriers QuerierProvider
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator service.
func New(queriers QuerierProvider) *Service {
	return &Service{queriers: queriers}
}

// GetNextNumber generates the next number, e.g. BILL-000042.
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := cfg.Key(period)
	var num int64
	err := s.queriers.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next number for %s: %w", key, err)
	}

	return cfg.Format(period, num), nil
}

// SetNextNumber sets the counter value (for migration purposes).
// The next allocated number is value+1.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	key := cfg.Key(period)

	var result int64
	err := s.queriers.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set number for %s: %w", key, err)
	}
	return nil
}
