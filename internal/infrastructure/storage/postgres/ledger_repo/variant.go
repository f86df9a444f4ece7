// Package ledger_repo is the PostgreSQL Ledger Store.
package ledger_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/infrastructure/storage/postgres"
)

const variantsTable = "variants"

// VariantRepo implements ledger.Repository.
type VariantRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

var _ ledger.Repository = (*VariantRepo)(nil)

// NewVariantRepo creates the variant repository.
func NewVariantRepo(txm *postgres.TxManager) *VariantRepo {
	return &VariantRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[ledger.Variant](),
	}
}

func (r *VariantRepo) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder().Select(r.selectCols...).From(variantsTable)
}

// GetByID returns one variant.
func (r *VariantRepo) GetByID(ctx context.Context, variantID id.ID) (*ledger.Variant, error) {
	var v ledger.Variant
	ok, err := r.txm.Get(ctx, &v, r.baseSelect().Where(squirrel.Eq{"id": variantID}))
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	if !ok {
		return nil, apperror.NewNotFound("variant", variantID)
	}
	return &v, nil
}

// GetByIDs reads variants without locking.
func (r *VariantRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*ledger.Variant, error) {
	if len(ids) == 0 {
		return map[id.ID]*ledger.Variant{}, nil
	}
	var rows []*ledger.Variant
	if err := r.txm.Select(ctx, &rows, r.baseSelect().Where(squirrel.Eq{"id": ids})); err != nil {
		return nil, fmt.Errorf("get variants: %w", err)
	}
	return byID(rows), nil
}

// LockForUpdate locks the rows in ascending id order. The ORDER BY makes
// PostgreSQL acquire the row locks in that order, so two transactions locking
// overlapping sets cannot deadlock. Waits are bounded by the transaction's
// lock_timeout.
func (r *VariantRepo) LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*ledger.Variant, error) {
	if !r.txm.InTransaction(ctx) {
		return nil, postgres.ErrNoTransaction
	}
	if len(ids) == 0 {
		return map[id.ID]*ledger.Variant{}, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE")

	var rows []*ledger.Variant
	if err := r.txm.Select(ctx, &rows, q); err != nil {
		return nil, postgres.TranslateError(fmt.Errorf("lock variants: %w", err), "variant")
	}
	return byID(rows), nil
}

// UpdateStock writes stock_qty and avg_cost for a locked row.
func (r *VariantRepo) UpdateStock(ctx context.Context, variantID id.ID, stockQty int64, avgCost types.Money) error {
	q := postgres.Builder().
		Update(variantsTable).
		Set("stock_qty", stockQty).
		Set("avg_cost", avgCost).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": variantID})

	affected, err := r.txm.Exec(ctx, q)
	if err != nil {
		return postgres.TranslateError(fmt.Errorf("update stock: %w", err), "variant")
	}
	if affected == 0 {
		return apperror.NewNotFound("variant", variantID)
	}
	return nil
}

// List returns a page of variants ordered by product name and SKU.
func (r *VariantRepo) List(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Variant, int, error) {
	where := squirrel.And{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"product_name": pattern},
			squirrel.ILike{"sku": pattern},
			squirrel.Eq{"barcode": s},
		})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.MaxStock != nil {
		where = append(where, squirrel.LtOrEq{"stock_qty": *filter.MaxStock})
	}

	total, err := r.txm.Count(ctx, postgres.Builder().Select("COUNT(*)").From(variantsTable).Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := r.baseSelect().
		Where(where).
		OrderBy("product_name", "sku").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	var rows []*ledger.Variant
	if err := r.txm.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("list variants: %w", err)
	}
	return rows, total, nil
}

// Insert adds a variant. Catalog management lives outside the ledger; this is
// used by the seed command.
func (r *VariantRepo) Insert(ctx context.Context, v *ledger.Variant) error {
	q := postgres.Builder().
		Insert(variantsTable).
		SetMap(postgres.InsertMap(v, r.selectCols)).
		Suffix("ON CONFLICT (sku) DO NOTHING")

	if _, err := r.txm.Exec(ctx, q); err != nil {
		return postgres.TranslateError(fmt.Errorf("insert variant: %w", err), "variant")
	}
	return nil
}

func byID(rows []*ledger.Variant) map[id.ID]*ledger.Variant {
	out := make(map[id.ID]*ledger.Variant, len(rows))
	for _, v := range rows {
		out[v.ID] = v
	}
	return out
}
