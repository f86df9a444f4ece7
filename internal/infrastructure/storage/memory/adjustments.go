package memory

import (
	"context"
	"slices"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/adjustments"
)

// AdjustmentRepo implements adjustments.Repository.
type AdjustmentRepo struct {
	s *Store
}

var _ adjustments.Repository = (*AdjustmentRepo)(nil)

// Adjustments returns the adjustment repository.
func (s *Store) Adjustments() *AdjustmentRepo {
	return &AdjustmentRepo{s: s}
}

func (r *AdjustmentRepo) Create(ctx context.Context, adj *adjustments.Adjustment) error {
	stored := *adj
	r.s.mutate(ctx, func() {
		r.s.adjustments[stored.ID] = &stored
	}, func() {
		delete(r.s.adjustments, stored.ID)
	})
	return nil
}

func (r *AdjustmentRepo) GetByID(_ context.Context, adjustmentID id.ID) (*adjustments.Adjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	adj, ok := r.s.adjustments[adjustmentID]
	if !ok {
		return nil, apperror.NewNotFound("adjustment", adjustmentID)
	}
	c := *adj
	return &c, nil
}

func (r *AdjustmentRepo) List(_ context.Context, filter adjustments.ListFilter) ([]*adjustments.Adjustment, int, error) {
	r.s.mu.RLock()
	matched := make([]*adjustments.Adjustment, 0, len(r.s.adjustments))
	for _, adj := range r.s.adjustments {
		if filter.VariantID != nil && adj.VariantID != *filter.VariantID {
			continue
		}
		if filter.Reason != nil && adj.Reason != *filter.Reason {
			continue
		}
		if !inWindow(adj.CreatedAt, filter.From, filter.To) {
			continue
		}
		c := *adj
		matched = append(matched, &c)
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *adjustments.Adjustment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}
