// Package register_repo builds read-only registers over the ledger documents.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/movements"
	"retailpos/internal/infrastructure/storage/postgres"
)

// movementsView unions every stock-changing document into signed movements.
// Outer predicates on variant_id and occurred_at are pushed into each branch.
const movementsView = `(
	SELECT 'PURCHASE' AS movement_type, pi.variant_id, p.id AS reference_id, p.invoice_no AS reference_no,
	       pi.qty AS qty, pi.unit_cost AS unit_cost, p.notes AS note, p.created_by AS actor, p.created_at AS occurred_at
	FROM purchase_items pi JOIN purchases p ON p.id = pi.purchase_id
	UNION ALL
	SELECT 'SALE', si.variant_id, s.id, s.bill_no,
	       -si.qty, si.unit_cost_at_sale, s.notes, s.created_by, s.created_at
	FROM sale_items si JOIN sales s ON s.id = si.sale_id
	UNION ALL
	SELECT 'VOID', si.variant_id, s.id, s.bill_no,
	       si.qty, NULL, s.void_reason, COALESCE(s.voided_by, ''), s.voided_at
	FROM sale_items si JOIN sales s ON s.id = si.sale_id
	WHERE s.voided_at IS NOT NULL
	UNION ALL
	SELECT 'ADJUSTMENT', a.variant_id, a.id, a.reason,
	       a.delta, NULL, a.notes, a.created_by, a.created_at
	FROM stock_adjustments a
) m`

var movementCols = []string{
	"movement_type", "variant_id", "reference_id", "reference_no",
	"qty", "unit_cost", "note", "actor", "occurred_at",
}

// MovementRepo implements movements.Repository.
type MovementRepo struct {
	txm *postgres.TxManager
}

var _ movements.Repository = (*MovementRepo)(nil)

// NewMovementRepo creates the movement register.
func NewMovementRepo(txm *postgres.TxManager) *MovementRepo {
	return &MovementRepo{txm: txm}
}

// ListByVariant returns the variant's movements, oldest first.
func (r *MovementRepo) ListByVariant(ctx context.Context, variantID id.ID, filter movements.Filter) ([]movements.Movement, error) {
	where := squirrel.And{squirrel.Eq{"variant_id": variantID}}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"occurred_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.LtOrEq{"occurred_at": *filter.To})
	}

	q := postgres.Builder().
		Select(movementCols...).
		From(movementsView).
		Where(where).
		OrderBy("occurred_at", "reference_id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	var out []movements.Movement
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}
