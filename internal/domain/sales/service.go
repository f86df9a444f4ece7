package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/numerator"
	"retailpos/internal/core/security"
	"retailpos/internal/core/tx"
	"retailpos/internal/core/types"
	"retailpos/internal/domain/audit"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/settings"
	"retailpos/pkg/logger"
)

var tracer = otel.Tracer("retailpos/sales")

// Service is the sale settlement and void engine.
type Service struct {
	repo        Repository
	variants    ledger.Repository
	mutator     *ledger.Mutator
	numerator   numerator.Generator
	settings    settings.Provider
	txManager   tx.Manager
	auditor     audit.Auditor
	phoneRegion string
}

// Option customizes the Service.
type Option func(*Service)

// WithPhoneRegion sets the region used for customer numbers without a country code.
func WithPhoneRegion(region string) Option {
	return func(s *Service) {
		s.phoneRegion = region
	}
}

// NewService creates the sales service.
func NewService(
	repo Repository,
	variants ledger.Repository,
	mutator *ledger.Mutator,
	numerator numerator.Generator,
	settings settings.Provider,
	txManager tx.Manager,
	auditor audit.Auditor,
	opts ...Option,
) *Service {
	s := &Service{
		repo:        repo,
		variants:    variants,
		mutator:     mutator,
		numerator:   numerator,
		settings:    settings,
		txManager:   txManager,
		auditor:     auditor,
		phoneRegion: "IN",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settle completes a checkout: stock is deducted, pricing and profit are
// computed and the sale is stored, all in one transaction.
func (s *Service) Settle(ctx context.Context, in SettleInput) (*Sale, error) {
	ctx, span := tracer.Start(ctx, "sales.Settle")
	defer span.End()

	if err := in.Validate(ctx); err != nil {
		return nil, err
	}
	customerName, customerPhone, err := s.normalizeCustomer(in.Customer)
	if err != nil {
		return nil, err
	}

	ids, required := in.RequiredQuantities()

	var sale *Sale
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.precheck(ctx, ids, required); err != nil {
			return err
		}

		// Held until commit so no other checkout interleaves between our lines.
		locked, err := s.mutator.Lock(ctx, ids)
		if err != nil {
			return err
		}

		cfg, err := s.settings.Get(ctx)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		pricing := Price(in.Items, cfg.TaxRatePercent, in.HeaderDiscountPercent)

		sale = &Sale{
			BaseDocument:          entity.NewBaseDocument(security.GetUserID(ctx)),
			Status:                StatusCompleted,
			PaymentMode:           in.PaymentMode,
			CustomerName:          customerName,
			CustomerPhone:         customerPhone,
			Notes:                 optional(in.Notes),
			TaxRatePercent:        cfg.TaxRatePercent,
			HeaderDiscountPercent: in.HeaderDiscountPercent,
			Subtotal:              pricing.Subtotal,
			DiscountAmount:        pricing.DiscountAmount,
			TaxableValue:          pricing.TaxableValue,
			TaxAmount:             pricing.TaxAmount,
			Total:                 pricing.Total,
			Items:                 make([]Item, 0, len(in.Items)),
		}

		profit := types.Zero()
		for i, line := range in.Items {
			costAtSale, err := s.mutator.DecreaseOnSale(ctx, line.VariantID, line.Qty)
			if err != nil {
				return err
			}

			priced := pricing.Lines[i]
			revenue, lineProfit := pricing.LineProfit(priced.LineAmount, line.Qty, costAtSale)
			profit = profit.Add(lineProfit)

			sale.Items = append(sale.Items, Item{
				ID:                  id.New(),
				SaleID:              sale.ID,
				LineNo:              i + 1,
				VariantID:           line.VariantID,
				SKU:                 locked[line.VariantID].SKU,
				Qty:                 line.Qty,
				UnitPrice:           line.UnitPrice,
				ItemDiscountPercent: line.ItemDiscountPercent,
				EffectiveUnitPrice:  priced.EffectiveUnitPrice,
				LineAmount:          priced.LineAmount,
				UnitCostAtSale:      costAtSale,
				Revenue:             revenue,
				Profit:              lineProfit,
			})
		}
		sale.Profit = profit

		// The sequence row is shared by every checkout; take it last.
		sale.BillNo, err = s.numerator.GetNextNumber(ctx, numerator.BillConfig(cfg.BillPrefix), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("allocate bill number: %w", err)
		}

		return s.repo.Create(ctx, sale)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "settle failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("sale.id", sale.ID.String()),
		attribute.String("sale.bill_no", sale.BillNo),
	)
	logger.Info(ctx, "sale settled",
		"sale_id", sale.ID,
		"bill_no", sale.BillNo,
		"lines", len(sale.Items),
		"total", sale.Total.StringFixed(2),
		"profit", sale.Profit.StringFixed(2),
	)
	s.auditor.Record(ctx, audit.EntitySale, sale.ID, audit.ActionCreate,
		fmt.Sprintf("Sale %s settled for %s", sale.BillNo, sale.Total.StringFixed(2)),
		map[string]any{
			"billNo":      sale.BillNo,
			"total":       sale.Total.StringFixed(2),
			"paymentMode": sale.PaymentMode,
			"items":       len(sale.Items),
		})

	return sale, nil
}

// precheck fails fast on unknown, inactive or short variants. It reads without
// locks; DecreaseOnSale repeats the stock check under the lock.
func (s *Service) precheck(ctx context.Context, ids []id.ID, required map[id.ID]int64) error {
	current, err := s.variants.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, variantID := range ids {
		v, ok := current[variantID]
		if !ok {
			return apperror.NewNotFound("variant", variantID)
		}
		if !v.IsActive() {
			return apperror.NewBusinessRule(apperror.CodeVariantInactive,
				fmt.Sprintf("SKU %s is inactive and cannot be sold", v.SKU)).
				WithDetail("variant_id", v.ID).
				WithDetail("sku", v.SKU)
		}
		if v.StockQty < required[variantID] {
			return apperror.NewInsufficientStock(v.ID.String(), v.SKU, required[variantID], v.StockQty)
		}
	}
	return nil
}

// Void reverses a completed sale's stock effect and marks it VOIDED.
// Monetary figures on the sale are kept as recorded.
func (s *Service) Void(ctx context.Context, in VoidInput) (*Sale, error) {
	ctx, span := tracer.Start(ctx, "sales.Void")
	defer span.End()

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperror.NewValidation("void reason is required").WithDetail("field", "reason")
	}

	var sale *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sale, err = s.repo.GetForUpdate(ctx, in.SaleID)
		if err != nil {
			return err
		}

		switch sale.Status {
		case StatusCompleted:
		case StatusVoided:
			return apperror.NewBusinessRule(apperror.CodeSaleAlreadyVoided,
				fmt.Sprintf("Sale %s is already voided", sale.BillNo)).
				WithDetail("sale_id", sale.ID)
		default:
			return apperror.NewBusinessRule(apperror.CodeInvalidSaleStatus,
				fmt.Sprintf("Sale %s cannot be voided in status %s", sale.BillNo, sale.Status)).
				WithDetail("sale_id", sale.ID).
				WithDetail("status", sale.Status)
		}

		if err := s.mutator.RestoreOnVoid(ctx, sale.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		voidedBy := security.GetUserID(ctx)
		if err := s.repo.MarkVoided(ctx, sale.ID, now, voidedBy, reason); err != nil {
			return err
		}

		sale.Status = StatusVoided
		sale.VoidedAt = &now
		sale.VoidedBy = &voidedBy
		sale.VoidReason = &reason
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "void failed")
		return nil, err
	}

	logger.Info(ctx, "sale voided",
		"sale_id", sale.ID,
		"bill_no", sale.BillNo,
		"reason", reason,
	)
	s.auditor.Record(ctx, audit.EntitySale, sale.ID, audit.ActionVoid,
		fmt.Sprintf("Sale %s voided: %s", sale.BillNo, reason),
		map[string]any{"billNo": sale.BillNo, "reason": reason})

	return sale, nil
}

// GetByID returns a sale with its items.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List returns a page of sales.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Sale, int, error) {
	filter.Pagination = filter.Pagination.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *Service) normalizeCustomer(c *Customer) (name, phone *string, err error) {
	if c == nil {
		return nil, nil, nil
	}
	name = optional(c.Name)
	if strings.TrimSpace(c.Phone) != "" {
		normalized, err := NormalizePhone(c.Phone, s.phoneRegion)
		if err != nil {
			return nil, nil, err
		}
		phone = &normalized
	}
	return name, phone, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
