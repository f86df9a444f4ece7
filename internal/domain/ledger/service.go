package ledger

import (
	"context"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/settings"
)

// Service is the read side of the ledger.
type Service struct {
	repo     Repository
	settings settings.Provider
}

// NewService creates the ledger read service.
func NewService(repo Repository, settings settings.Provider) *Service {
	return &Service{repo: repo, settings: settings}
}

// GetByID returns one variant.
func (s *Service) GetByID(ctx context.Context, variantID id.ID) (*Variant, error) {
	return s.repo.GetByID(ctx, variantID)
}

// List returns a page of variants. With lowStock set, only variants at or below
// the configured threshold are returned.
func (s *Service) List(ctx context.Context, filter ListFilter, lowStock bool) ([]*Variant, int, error) {
	if lowStock {
		cfg, err := s.settings.Get(ctx)
		if err != nil {
			return nil, 0, err
		}
		threshold := cfg.LowStockThreshold
		filter.MaxStock = &threshold
	}
	filter.Pagination = filter.Pagination.Normalize()
	return s.repo.List(ctx, filter)
}
