package settings

import (
	"context"
	"time"

	"retailpos/internal/core/id"
	"retailpos/internal/core/security"
	"retailpos/internal/domain/audit"
	"retailpos/pkg/logger"
)

// settingsEntityID is the fixed audit entity id of the single settings row.
var settingsEntityID = id.MustParse("00000000-0000-0000-0000-000000000001")

// Service reads and updates shop settings.
type Service struct {
	repo    Repository
	auditor audit.Auditor
}

// NewService creates the settings service.
func NewService(repo Repository, auditor audit.Auditor) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

// Update validates and stores new settings.
func (s *Service) Update(ctx context.Context, in *Settings) (*Settings, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}
	in.UpdatedAt = time.Now().UTC()
	in.UpdatedBy = security.GetUserID(ctx)

	if err := s.repo.Save(ctx, in); err != nil {
		return nil, err
	}

	logger.Info(ctx, "settings updated",
		"tax_rate", in.TaxRatePercent.String(),
		"bill_prefix", in.BillPrefix,
	)
	s.auditor.Record(ctx, audit.EntitySettings, settingsEntityID, audit.ActionUpdate, "Shop settings updated", map[string]any{
		"taxRatePercent":    in.TaxRatePercent.String(),
		"billPrefix":        in.BillPrefix,
		"lowStockThreshold": in.LowStockThreshold,
	})
	return in, nil
}

var _ Provider = (*Service)(nil)
