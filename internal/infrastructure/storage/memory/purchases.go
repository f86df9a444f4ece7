package memory

import (
	"context"
	"slices"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/purchases"
)

// PurchaseRepo implements purchases.Repository.
type PurchaseRepo struct {
	s *Store
}

var _ purchases.Repository = (*PurchaseRepo)(nil)

// Purchases returns the purchase repository.
func (s *Store) Purchases() *PurchaseRepo {
	return &PurchaseRepo{s: s}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *purchases.Purchase) error {
	stored := p.Clone()
	stored.Items = nil
	r.s.mutate(ctx, func() {
		r.s.purchases[stored.ID] = stored
	}, func() {
		delete(r.s.purchases, stored.ID)
	})
	return nil
}

func (r *PurchaseRepo) AddItem(ctx context.Context, item *purchases.Item) error {
	found := false
	r.s.mutate(ctx, func() {
		p, ok := r.s.purchases[item.PurchaseID]
		if !ok {
			return
		}
		found = true
		p.Items = append(p.Items, *item)
	}, func() {
		if p, ok := r.s.purchases[item.PurchaseID]; ok && found && len(p.Items) > 0 {
			p.Items = p.Items[:len(p.Items)-1]
		}
	})
	if !found {
		return apperror.NewNotFound("purchase", item.PurchaseID)
	}
	return nil
}

func (r *PurchaseRepo) GetByID(_ context.Context, purchaseID id.ID) (*purchases.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.purchases[purchaseID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", purchaseID)
	}
	return p.Clone(), nil
}

func (r *PurchaseRepo) List(_ context.Context, filter purchases.ListFilter) ([]*purchases.Purchase, int, error) {
	r.s.mu.RLock()
	matched := make([]*purchases.Purchase, 0, len(r.s.purchases))
	for _, p := range r.s.purchases {
		if filter.SupplierID != nil && p.SupplierID != *filter.SupplierID {
			continue
		}
		if !inWindow(p.CreatedAt, filter.From, filter.To) {
			continue
		}
		matched = append(matched, p.Clone())
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *purchases.Purchase) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), len(matched), nil
}

// SupplierRepo implements purchases.SupplierRepository.
type SupplierRepo struct {
	s *Store
}

var _ purchases.SupplierRepository = (*SupplierRepo)(nil)

// Suppliers returns the supplier repository.
func (s *Store) Suppliers() *SupplierRepo {
	return &SupplierRepo{s: s}
}

func (r *SupplierRepo) GetByID(_ context.Context, supplierID id.ID) (*purchases.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[supplierID]
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID)
	}
	c := *sup
	return &c, nil
}
