// Package catalog_repo provides PostgreSQL lookups of reference data the
// ledger engines depend on.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/purchases"
	"retailpos/internal/infrastructure/storage/postgres"
)

const suppliersTable = "suppliers"

// SupplierRepo implements purchases.SupplierRepository.
type SupplierRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

var _ purchases.SupplierRepository = (*SupplierRepo)(nil)

// NewSupplierRepo creates the supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[purchases.Supplier](),
	}
}

// GetByID returns the supplier or SUPPLIER_NOT_FOUND.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*purchases.Supplier, error) {
	q := postgres.Builder().
		Select(r.selectCols...).
		From(suppliersTable).
		Where(squirrel.Eq{"id": supplierID})

	var s purchases.Supplier
	ok, err := r.txm.Get(ctx, &s, q)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID)
	}
	return &s, nil
}

// Upsert creates or updates a supplier (seed data).
func (r *SupplierRepo) Upsert(ctx context.Context, s *purchases.Supplier) error {
	q := postgres.Builder().
		Insert(suppliersTable).
		SetMap(postgres.InsertMap(s, r.selectCols)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, is_active = EXCLUDED.is_active")

	if _, err := r.txm.Exec(ctx, q); err != nil {
		return postgres.TranslateError(fmt.Errorf("upsert supplier: %w", err), "supplier")
	}
	return nil
}
