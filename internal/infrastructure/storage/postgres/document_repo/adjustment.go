package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/adjustments"
	"retailpos/internal/infrastructure/storage/postgres"
)

// AdjustmentRepo implements adjustments.Repository on stock_adjustments.
type AdjustmentRepo struct {
	base *baseRepo[adjustments.Adjustment]
}

var _ adjustments.Repository = (*AdjustmentRepo)(nil)

// NewAdjustmentRepo creates the adjustment repository.
func NewAdjustmentRepo(txm *postgres.TxManager) *AdjustmentRepo {
	return &AdjustmentRepo{base: newBaseRepo[adjustments.Adjustment](txm, "stock_adjustments", "adjustment")}
}

func (r *AdjustmentRepo) Create(ctx context.Context, adj *adjustments.Adjustment) error {
	return r.base.insert(ctx, adj)
}

func (r *AdjustmentRepo) GetByID(ctx context.Context, adjustmentID id.ID) (*adjustments.Adjustment, error) {
	return r.base.getByID(ctx, adjustmentID, false)
}

func (r *AdjustmentRepo) List(ctx context.Context, filter adjustments.ListFilter) ([]*adjustments.Adjustment, int, error) {
	where := squirrel.And{}
	if filter.VariantID != nil {
		where = append(where, squirrel.Eq{"variant_id": *filter.VariantID})
	}
	if filter.Reason != nil {
		where = append(where, squirrel.Eq{"reason": *filter.Reason})
	}
	where = createdWindow(where, filter.From, filter.To)
	return r.base.page(ctx, where, filter.Pagination)
}
