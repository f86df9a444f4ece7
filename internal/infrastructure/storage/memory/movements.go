package memory

import (
	"context"
	"slices"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/movements"
)

// MovementRepo implements movements.Repository.
type MovementRepo struct {
	s *Store
}

var _ movements.Repository = (*MovementRepo)(nil)

// Movements returns the movement view.
func (s *Store) Movements() *MovementRepo {
	return &MovementRepo{s: s}
}

func (r *MovementRepo) ListByVariant(_ context.Context, variantID id.ID, filter movements.Filter) ([]movements.Movement, error) {
	r.s.mu.RLock()
	var out []movements.Movement

	for _, p := range r.s.purchases {
		for _, item := range p.Items {
			if item.VariantID != variantID {
				continue
			}
			cost := item.UnitCost
			out = append(out, movements.Movement{
				Type:        movements.TypePurchase,
				VariantID:   variantID,
				ReferenceID: p.ID,
				ReferenceNo: p.InvoiceNo,
				Qty:         item.Qty,
				UnitCost:    &cost,
				Actor:       p.CreatedBy,
				OccurredAt:  p.CreatedAt,
			})
		}
	}

	for _, sale := range r.s.sales {
		for _, item := range sale.Items {
			if item.VariantID != variantID {
				continue
			}
			cost := item.UnitCostAtSale
			out = append(out, movements.Movement{
				Type:        movements.TypeSale,
				VariantID:   variantID,
				ReferenceID: sale.ID,
				ReferenceNo: sale.BillNo,
				Qty:         -item.Qty,
				UnitCost:    &cost,
				Actor:       sale.CreatedBy,
				OccurredAt:  sale.CreatedAt,
			})
			if sale.VoidedAt != nil {
				m := movements.Movement{
					Type:        movements.TypeVoid,
					VariantID:   variantID,
					ReferenceID: sale.ID,
					ReferenceNo: sale.BillNo,
					Qty:         item.Qty,
					Note:        sale.VoidReason,
					OccurredAt:  *sale.VoidedAt,
				}
				if sale.VoidedBy != nil {
					m.Actor = *sale.VoidedBy
				}
				out = append(out, m)
			}
		}
	}

	for _, adj := range r.s.adjustments {
		if adj.VariantID != variantID {
			continue
		}
		out = append(out, movements.Movement{
			Type:        movements.TypeAdjustment,
			VariantID:   variantID,
			ReferenceID: adj.ID,
			ReferenceNo: string(adj.Reason),
			Qty:         adj.Delta,
			Note:        adj.Notes,
			Actor:       adj.CreatedBy,
			OccurredAt:  adj.CreatedAt,
		})
	}
	r.s.mu.RUnlock()

	out = slices.DeleteFunc(out, func(m movements.Movement) bool {
		return !inWindow(m.OccurredAt, filter.From, filter.To)
	})
	slices.SortStableFunc(out, func(a, b movements.Movement) int {
		if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
			return c
		}
		return id.Compare(a.ReferenceID, b.ReferenceID)
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}
