package numerator

import (
	"context"
	"time"
)

// Generator hands out strictly increasing, collision-free numbers.
//
// GetNextNumber must increment and read the counter as one atomic step.
// When called inside a transaction the counter stays locked until commit,
// so two concurrent settlements never receive the same number.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)

	// SetNextNumber sets the counter value (for migration purposes).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
