package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/domain/settings"
)

// SettingsRepo stores the single shop_settings row.
type SettingsRepo struct {
	txm  *TxManager
	cols []string
}

var _ settings.Repository = (*SettingsRepo)(nil)

// NewSettingsRepo creates the settings repository.
func NewSettingsRepo(txm *TxManager) *SettingsRepo {
	return &SettingsRepo{txm: txm, cols: ExtractDBColumns[settings.Settings]()}
}

// Get returns the stored settings, or the defaults when the row is missing.
func (r *SettingsRepo) Get(ctx context.Context) (*settings.Settings, error) {
	q := Builder().Select(r.cols...).From("shop_settings").Where(squirrel.Eq{"id": 1})

	var s settings.Settings
	ok, err := r.txm.Get(ctx, &s, q)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if !ok {
		return settings.Default(), nil
	}
	return &s, nil
}

// Save upserts the settings row.
func (r *SettingsRepo) Save(ctx context.Context, s *settings.Settings) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	data := InsertMap(s, r.cols)
	data["id"] = 1

	q := Builder().
		Insert("shop_settings").
		SetMap(data).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			shop_name = EXCLUDED.shop_name,
			tax_rate_percent = EXCLUDED.tax_rate_percent,
			bill_prefix = EXCLUDED.bill_prefix,
			low_stock_threshold = EXCLUDED.low_stock_threshold,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`)

	if _, err := r.txm.Exec(ctx, q); err != nil {
		return TranslateError(fmt.Errorf("save settings: %w", err), "settings")
	}
	return nil
}
