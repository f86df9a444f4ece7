package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/sales"
	"retailpos/internal/infrastructure/storage/postgres"
)

// SaleRepo implements sales.Repository on sales and sale_items.
type SaleRepo struct {
	header *baseRepo[sales.Sale]
	items  *baseRepo[sales.Item]
}

var _ sales.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates the sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		header: newBaseRepo[sales.Sale](txm, "sales", "sale"),
		items:  newBaseRepo[sales.Item](txm, "sale_items", "sale"),
	}
}

// Create inserts the header and items. Must run inside the settlement transaction.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	if err := r.header.insert(ctx, sale); err != nil {
		return err
	}
	items := make([]*sales.Item, len(sale.Items))
	for i := range sale.Items {
		items[i] = &sale.Items[i]
	}
	return r.items.insertMany(ctx, items)
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.load(ctx, saleID, false)
}

// GetForUpdate locks the sales row; concurrent voids of one sale serialize here.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.load(ctx, saleID, true)
}

func (r *SaleRepo) load(ctx context.Context, saleID id.ID, forUpdate bool) (*sales.Sale, error) {
	sale, err := r.header.getByID(ctx, saleID, forUpdate)
	if err != nil {
		return nil, err
	}
	items, err := r.items.selectWhere(ctx, squirrel.Eq{"sale_id": saleID}, "line_no")
	if err != nil {
		return nil, err
	}
	sale.Items = make([]sales.Item, len(items))
	for i, item := range items {
		sale.Items[i] = *item
	}
	return sale, nil
}

func (r *SaleRepo) MarkVoided(ctx context.Context, saleID id.ID, voidedAt time.Time, voidedBy, reason string) error {
	q := postgres.Builder().
		Update(r.header.tableName).
		Set("status", sales.StatusVoided).
		Set("voided_at", voidedAt).
		Set("voided_by", voidedBy).
		Set("void_reason", reason).
		Where(squirrel.Eq{"id": saleID, "status": sales.StatusCompleted})

	affected, err := r.header.txm.Exec(ctx, q)
	if err != nil {
		return postgres.TranslateError(fmt.Errorf("mark sale voided: %w", err), "sale")
	}
	if affected == 0 {
		return apperror.NewBusinessRule(apperror.CodeInvalidSaleStatus, "Sale is not in COMPLETED status").
			WithDetail("sale_id", saleID)
	}
	return nil
}

// List returns sale headers without items.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) ([]*sales.Sale, int, error) {
	where := squirrel.And{}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if bill := strings.TrimSpace(filter.BillNo); bill != "" {
		where = append(where, squirrel.ILike{"bill_no": bill})
	}
	where = createdWindow(where, filter.From, filter.To)
	return r.header.page(ctx, where, filter.Pagination)
}

// GetSaleLines returns the (variant, qty) pairs a void restores.
func (r *SaleRepo) GetSaleLines(ctx context.Context, saleID id.ID) ([]ledger.SaleLine, error) {
	q := postgres.Builder().
		Select("variant_id", "qty").
		From(r.items.tableName).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no")

	var lines []ledger.SaleLine
	if err := r.items.txm.Select(ctx, &lines, q); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	return lines, nil
}
