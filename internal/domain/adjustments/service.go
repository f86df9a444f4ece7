package adjustments

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
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/pkg/logger"
)

var tracer = otel.Tracer("retailpos/adjustments")

// Service is the adjustment engine.
type Service struct {
	repo      Repository
	mutator   *ledger.Mutator
	txManager tx.Manager
	auditor   audit.Auditor
}

// NewService creates the adjustments service.
func NewService(repo Repository, mutator *ledger.Mutator, txManager tx.Manager, auditor audit.Auditor) *Service {
	return &Service{
		repo:      repo,
		mutator:   mutator,
		txManager: txManager,
		auditor:   auditor,
	}
}

// Adjust records the correction and applies it to the ledger in one transaction.
func (s *Service) Adjust(ctx context.Context, in Input) (*Adjustment, error) {
	ctx, span := tracer.Start(ctx, "adjustments.Adjust")
	defer span.End()

	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	var adj *Adjustment
	var sku string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.mutator.Lock(ctx, []id.ID{in.VariantID})
		if err != nil {
			return err
		}
		v := locked[in.VariantID]
		sku = v.SKU
		if v.StockQty+in.Delta < 0 {
			return apperror.NewInsufficientStock(v.ID.String(), v.SKU, -in.Delta, v.StockQty)
		}

		adj = &Adjustment{
			BaseDocument: entity.NewBaseDocument(security.GetUserID(ctx)),
			VariantID:    v.ID,
			Delta:        in.Delta,
			Reason:       in.Reason,
			StockAfter:   v.StockQty + in.Delta,
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			adj.Notes = &notes
		}
		if err := s.repo.Create(ctx, adj); err != nil {
			return err
		}

		updated, err := s.mutator.AdjustByDelta(ctx, v.ID, in.Delta)
		if err != nil {
			return err
		}
		adj.StockAfter = updated.StockQty
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "adjust failed")
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"adjustment_id", adj.ID,
		"variant_id", adj.VariantID,
		"sku", sku,
		"delta", adj.Delta,
		"reason", adj.Reason,
		"stock_after", adj.StockAfter,
	)
	s.auditor.Record(ctx, audit.EntityAdjustment, adj.ID, audit.ActionAdjustment,
		fmt.Sprintf("Stock of %s adjusted by %+d (%s)", sku, adj.Delta, adj.Reason),
		map[string]any{
			"variantId":  adj.VariantID,
			"delta":      adj.Delta,
			"reason":     adj.Reason,
			"stockAfter": adj.StockAfter,
		})

	return adj, nil
}

// GetByID returns one adjustment.
func (s *Service) GetByID(ctx context.Context, adjustmentID id.ID) (*Adjustment, error) {
	return s.repo.GetByID(ctx, adjustmentID)
}

// List returns a page of adjustments.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Adjustment, int, error) {
	filter.Pagination = filter.Pagination.Normalize()
	return s.repo.List(ctx, filter)
}
