package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/ledger"
)

// VariantRepo implements ledger.Repository.
type VariantRepo struct {
	s *Store
}

var _ ledger.Repository = (*VariantRepo)(nil)

// Variants returns the variant repository.
func (s *Store) Variants() *VariantRepo {
	return &VariantRepo{s: s}
}

func (r *VariantRepo) GetByID(_ context.Context, variantID id.ID) (*ledger.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.variants[variantID]
	if !ok {
		return nil, apperror.NewNotFound("variant", variantID)
	}
	return v.Clone(), nil
}

func (r *VariantRepo) GetByIDs(_ context.Context, ids []id.ID) (map[id.ID]*ledger.Variant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[id.ID]*ledger.Variant, len(ids))
	for _, variantID := range ids {
		if v, ok := r.s.variants[variantID]; ok {
			out[variantID] = v.Clone()
		}
	}
	return out, nil
}

func (r *VariantRepo) LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*ledger.Variant, error) {
	out := make(map[id.ID]*ledger.Variant, len(ids))
	for _, variantID := range ids {
		r.s.mu.RLock()
		_, exists := r.s.variants[variantID]
		r.s.mu.RUnlock()
		if !exists {
			continue
		}

		if err := r.s.lock(ctx, variantKey(variantID), "variant"); err != nil {
			return nil, err
		}

		r.s.mu.RLock()
		out[variantID] = r.s.variants[variantID].Clone()
		r.s.mu.RUnlock()
	}
	return out, nil
}

func (r *VariantRepo) UpdateStock(ctx context.Context, variantID id.ID, stockQty int64, avgCost types.Money) error {
	var prev ledger.Variant
	found := false
	r.s.mutate(ctx, func() {
		v, ok := r.s.variants[variantID]
		if !ok {
			return
		}
		found = true
		prev = *v
		v.StockQty = stockQty
		v.AvgCost = avgCost
		v.UpdatedAt = time.Now().UTC()
	}, func() {
		if found {
			restored := prev
			r.s.variants[variantID] = &restored
		}
	})
	if !found {
		return apperror.NewNotFound("variant", variantID)
	}
	return nil
}

func (r *VariantRepo) List(_ context.Context, filter ledger.ListFilter) ([]*ledger.Variant, int, error) {
	r.s.mu.RLock()
	matched := make([]*ledger.Variant, 0, len(r.s.variants))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, v := range r.s.variants {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.MaxStock != nil && v.StockQty > *filter.MaxStock {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.SKU), search) &&
			!strings.Contains(strings.ToLower(v.ProductName), search) &&
			(v.Barcode == nil || *v.Barcode != filter.Search) {
			continue
		}
		matched = append(matched, v.Clone())
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *ledger.Variant) int {
		return strings.Compare(a.SKU, b.SKU)
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}
