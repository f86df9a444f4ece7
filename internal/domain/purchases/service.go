package purchases

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/security"
	"retailpos/internal/core/tx"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/pkg/logger"
)

var tracer = otel.Tracer("retailpos/purchases")

// Service is the purchase receiving engine.
type Service struct {
	repo      Repository
	suppliers SupplierRepository
	mutator   *ledger.Mutator
	txManager tx.Manager
	auditor   audit.Auditor
}

// NewService creates the purchases service.
func NewService(
	repo Repository,
	suppliers SupplierRepository,
	mutator *ledger.Mutator,
	txManager tx.Manager,
	auditor audit.Auditor,
) *Service {
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		mutator:   mutator,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Receive records a goods receipt and raises stock with weighted-average costing.
// A failure on any line rolls the whole receipt back.
func (s *Service) Receive(ctx context.Context, in ReceiveInput) (*Purchase, error) {
	ctx, span := tracer.Start(ctx, "purchases.Receive")
	defer span.End()

	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	ids := make([]id.ID, 0, len(in.Items))
	for _, line := range in.Items {
		ids = append(ids, line.VariantID)
	}

	var purchase *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		supplier, err := s.suppliers.GetByID(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if !supplier.IsActive {
			return apperror.NewBusinessRule(apperror.CodeSupplierInactive,
				fmt.Sprintf("Supplier %s is inactive", supplier.Name)).
				WithDetail("supplier_id", supplier.ID)
		}

		// Also validates that every variant exists.
		if _, err := s.mutator.Lock(ctx, ids); err != nil {
			return err
		}

		purchase = &Purchase{
			BaseDocument: entity.NewBaseDocument(security.GetUserID(ctx)),
			SupplierID:   supplier.ID,
			InvoiceNo:    strings.TrimSpace(in.InvoiceNo),
			InvoiceDate:  in.InvoiceDate,
			TotalCost:    types.Zero(),
			Items:        make([]Item, 0, len(in.Items)),
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			purchase.Notes = &notes
		}
		for _, line := range in.Items {
			purchase.TotalCost = purchase.TotalCost.Add(line.UnitCost.Mul(types.Qty(line.Qty)))
		}

		if err := s.repo.Create(ctx, purchase); err != nil {
			return err
		}

		for i, line := range in.Items {
			item := Item{
				ID:         id.New(),
				PurchaseID: purchase.ID,
				LineNo:     i + 1,
				VariantID:  line.VariantID,
				Qty:        line.Qty,
				UnitCost:   line.UnitCost,
				LineTotal:  line.UnitCost.Mul(types.Qty(line.Qty)),
			}
			if err := s.repo.AddItem(ctx, &item); err != nil {
				return err
			}
			if _, err := s.mutator.IncreaseOnPurchase(ctx, line.VariantID, line.Qty, line.UnitCost); err != nil {
				return err
			}
			purchase.Items = append(purchase.Items, item)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "receive failed")
		return nil, err
	}

	logger.Info(ctx, "purchase received",
		"purchase_id", purchase.ID,
		"supplier_id", purchase.SupplierID,
		"invoice_no", purchase.InvoiceNo,
		"lines", len(purchase.Items),
		"total_cost", purchase.TotalCost.StringFixed(2),
	)
	s.auditor.Record(ctx, audit.EntityPurchase, purchase.ID, audit.ActionCreate,
		fmt.Sprintf("Purchase invoice %s received for %s", purchase.InvoiceNo, purchase.TotalCost.StringFixed(2)),
		map[string]any{
			"supplierId": purchase.SupplierID,
			"invoiceNo":  purchase.InvoiceNo,
			"totalCost":  purchase.TotalCost.StringFixed(2),
			"items":      len(purchase.Items),
		})

	return purchase, nil
}

// GetByID returns a purchase with its items.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, purchaseID)
}

// List returns a page of purchases.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Purchase, int, error) {
	filter.Pagination = filter.Pagination.Normalize()
	return s.repo.List(ctx, filter)
}
