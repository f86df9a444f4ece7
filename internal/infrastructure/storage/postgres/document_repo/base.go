// Package document_repo provides PostgreSQL repositories for the immutable
// ledger documents: sales, purchases and stock adjustments.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/infrastructure/storage/postgres"
)

// baseRepo provides the CRUD shared by document headers and line tables.
type baseRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
}

func newBaseRepo[T any](txm *postgres.TxManager, tableName, entityName string) *baseRepo[T] {
	return &baseRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
	}
}

func (r *baseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder().Select(r.selectCols...).From(r.tableName)
}

// insert writes one row using its "db" tags.
func (r *baseRepo[T]) insert(ctx context.Context, row *T) error {
	return r.insertMany(ctx, []*T{row})
}

// insertMany writes all rows in one multi-VALUES statement.
func (r *baseRepo[T]) insertMany(ctx context.Context, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	q := postgres.Builder().Insert(r.tableName).Columns(r.selectCols...)
	for _, row := range rows {
		data := postgres.StructToMap(row)
		values := make([]any, len(r.selectCols))
		for i, col := range r.selectCols {
			values[i] = data[col]
		}
		q = q.Values(values...)
	}

	if _, err := r.txm.Exec(ctx, q); err != nil {
		return postgres.TranslateError(fmt.Errorf("insert %s: %w", r.tableName, err), r.entityName)
	}
	return nil
}

// getByID loads one row. forUpdate locks it until the transaction ends.
func (r *baseRepo[T]) getByID(ctx context.Context, entityID id.ID, forUpdate bool) (*T, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": entityID})
	if forUpdate {
		if !r.txm.InTransaction(ctx) {
			return nil, postgres.ErrNoTransaction
		}
		q = q.Suffix("FOR UPDATE")
	}

	row := new(T)
	ok, err := r.txm.Get(ctx, row, q)
	if err != nil {
		return nil, postgres.TranslateError(fmt.Errorf("get %s: %w", r.tableName, err), r.entityName)
	}
	if !ok {
		return nil, apperror.NewNotFound(r.entityName, entityID)
	}
	return row, nil
}

// selectWhere loads all rows matching where in the given order.
func (r *baseRepo[T]) selectWhere(ctx context.Context, where squirrel.Sqlizer, orderBy ...string) ([]*T, error) {
	var rows []*T
	if err := r.txm.Select(ctx, &rows, r.baseSelect().Where(where).OrderBy(orderBy...)); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return rows, nil
}

// page returns one page of rows, newest first, plus the total count.
func (r *baseRepo[T]) page(ctx context.Context, where squirrel.And, p entity.Pagination) ([]*T, int, error) {
	total, err := r.txm.Count(ctx, postgres.Builder().Select("COUNT(*)").From(r.tableName).Where(where))
	if err != nil {
		return nil, 0, err
	}

	q := r.baseSelect().
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset))

	var rows []*T
	if err := r.txm.Select(ctx, &rows, q); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return rows, total, nil
}

// createdWindow adds inclusive created_at bounds.
func createdWindow(where squirrel.And, from, to *time.Time) squirrel.And {
	if from != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *from})
	}
	if to != nil {
		where = append(where, squirrel.LtOrEq{"created_at": *to})
	}
	return where
}
