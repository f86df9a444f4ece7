package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/sales"
)

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	s *Store
}

var _ sales.Repository = (*SaleRepo)(nil)

// Sales returns the sale repository.
func (s *Store) Sales() *SaleRepo {
	return &SaleRepo{s: s}
}

func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	stored := sale.Clone()
	duplicate := false
	r.s.mutate(ctx, func() {
		if _, ok := r.s.sales[stored.ID]; ok {
			duplicate = true
			return
		}
		for _, existing := range r.s.sales {
			if existing.BillNo == stored.BillNo {
				duplicate = true
				return
			}
		}
		r.s.sales[stored.ID] = stored
	}, func() {
		if !duplicate {
			delete(r.s.sales, stored.ID)
		}
	})
	if duplicate {
		return apperror.NewDuplicate("sale", "bill_no", sale.BillNo)
	}
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, saleID id.ID) (*sales.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	return sale.Clone(), nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	if _, err := r.GetByID(ctx, saleID); err != nil {
		return nil, err
	}
	if err := r.s.lock(ctx, saleKey(saleID), "sale"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, saleID)
}

func (r *SaleRepo) MarkVoided(ctx context.Context, saleID id.ID, voidedAt time.Time, voidedBy, reason string) error {
	var prev *sales.Sale
	r.s.mutate(ctx, func() {
		sale, ok := r.s.sales[saleID]
		if !ok {
			return
		}
		prev = sale.Clone()
		sale.Status = sales.StatusVoided
		sale.VoidedAt = &voidedAt
		sale.VoidedBy = &voidedBy
		sale.VoidReason = &reason
	}, func() {
		if prev != nil {
			r.s.sales[saleID] = prev
		}
	})
	if prev == nil {
		return apperror.NewNotFound("sale", saleID)
	}
	return nil
}

func (r *SaleRepo) List(_ context.Context, filter sales.ListFilter) ([]*sales.Sale, int, error) {
	r.s.mu.RLock()
	matched := make([]*sales.Sale, 0, len(r.s.sales))
	for _, sale := range r.s.sales {
		if filter.Status != nil && sale.Status != *filter.Status {
			continue
		}
		if filter.BillNo != "" && !strings.EqualFold(sale.BillNo, filter.BillNo) {
			continue
		}
		if !inWindow(sale.CreatedAt, filter.From, filter.To) {
			continue
		}
		matched = append(matched, sale.Clone())
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *sales.Sale) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *SaleRepo) GetSaleLines(_ context.Context, saleID id.ID) ([]ledger.SaleLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	lines := make([]ledger.SaleLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, ledger.SaleLine{VariantID: item.VariantID, Qty: item.Qty})
	}
	return lines, nil
}
