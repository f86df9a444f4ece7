package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/infrastructure/storage/postgres"
)

// PurchaseRepo implements purchases.Repository on purchases and purchase_items.
type PurchaseRepo struct {
	header *baseRepo[purchases.Purchase]
	items  *baseRepo[purchases.Item]
}

var _ purchases.Repository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates the purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		header: newBaseRepo[purchases.Purchase](txm, "purchases", "purchase"),
		items:  newBaseRepo[purchases.Item](txm, "purchase_items", "purchase"),
	}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *purchases.Purchase) error {
	return r.header.insert(ctx, p)
}

func (r *PurchaseRepo) AddItem(ctx context.Context, item *purchases.Item) error {
	return r.items.insert(ctx, item)
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchases.Purchase, error) {
	p, err := r.header.getByID(ctx, purchaseID, false)
	if err != nil {
		return nil, err
	}
	items, err := r.items.selectWhere(ctx, squirrel.Eq{"purchase_id": purchaseID}, "line_no")
	if err != nil {
		return nil, err
	}
	p.Items = make([]purchases.Item, len(items))
	for i, item := range items {
		p.Items[i] = *item
	}
	return p, nil
}

func (r *PurchaseRepo) List(ctx context.Context, filter purchases.ListFilter) ([]*purchases.Purchase, int, error) {
	where := squirrel.And{}
	if filter.SupplierID != nil {
		where = append(where, squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	where = createdWindow(where, filter.From, filter.To)
	return r.header.page(ctx, where, filter.Pagination)
}
