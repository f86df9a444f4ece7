package memory

import (
	"context"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/audit"
)

// AuditStore implements audit.Store.
type AuditStore struct {
	s *Store
}

var (
	_ audit.Store  = (*AuditStore)(nil)
	_ audit.Reader = (*AuditStore)(nil)
)

// Audit returns the audit store.
func (s *Store) Audit() *AuditStore {
	return &AuditStore{s: s}
}

func (a *AuditStore) Write(_ context.Context, entry audit.Entry) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.auditLog = append(a.s.auditLog, entry)
	return nil
}

// History returns the latest entries of one entity, newest first.
func (a *AuditStore) History(_ context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	var out []audit.Entry
	for i := len(a.s.auditLog) - 1; i >= 0; i-- {
		e := a.s.auditLog[i]
		if e.EntityType != entityType || e.EntityID != entityID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
