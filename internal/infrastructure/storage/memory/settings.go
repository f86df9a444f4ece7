package memory

import (
	"context"

	"retailpos/internal/domain/settings"
)

// SettingsRepo implements settings.Repository.
type SettingsRepo struct {
	s *Store
}

var _ settings.Repository = (*SettingsRepo)(nil)

// Settings returns the settings repository.
func (s *Store) Settings() *SettingsRepo {
	return &SettingsRepo{s: s}
}

func (r *SettingsRepo) Get(context.Context) (*settings.Settings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c := *r.s.settings
	return &c, nil
}

func (r *SettingsRepo) Save(ctx context.Context, in *settings.Settings) error {
	stored := *in
	var prev *settings.Settings
	r.s.mutate(ctx, func() {
		prev = r.s.settings
		r.s.settings = &stored
	}, func() {
		r.s.settings = prev
	})
	return nil
}
