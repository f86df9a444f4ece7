// Package audit records who did what to the ledger.
//
// Entries are written after the business transaction commits and never
// influence its outcome: a failed write is logged and dropped.
package audit

import (
	"context"
	"sync"
	"time"

	appctx "retailpos/internal/core/context"
	"retailpos/internal/core/id"
	"retailpos/internal/core/security"
	"retailpos/pkg/logger"
)

// Action is the audited operation.
type Action string

const (
	ActionCreate     Action = "CREATE"
	ActionVoid       Action = "VOID"
	ActionAdjustment Action = "ADJUSTMENT"
	ActionUpdate     Action = "UPDATE"
)

// Entity types used by the engines.
const (
	EntitySale       = "SALE"
	EntityPurchase   = "PURCHASE"
	EntityAdjustment = "STOCK_ADJUSTMENT"
	EntitySettings   = "SETTINGS"
)

// Entry is one audit record.
type Entry struct {
	ID          id.ID          `json:"id"`
	EntityType  string         `json:"entityType"`
	EntityID    id.ID          `json:"entityId"`
	Action      Action         `json:"action"`
	ActorID     string         `json:"actorId"`
	ActorIP     string         `json:"actorIp"`
	Description string         `json:"description"`
	Changes     map[string]any `json:"changes,omitempty"`
	RequestID   string         `json:"requestId,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Store persists audit entries.
type Store interface {
	Write(ctx context.Context, entry Entry) error
}

// Reader reads an entity's audit trail, newest first.
type Reader interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Auditor is what engines call after a successful commit.
type Auditor interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, description string, changes map[string]any)
}

// Recorder dispatches entries to a Store on a background goroutine.
type Recorder struct {
	store   Store
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewRecorder creates a Recorder. Each write gets at most timeout to finish.
func NewRecorder(store Store, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{store: store, timeout: timeout}
}

// Record captures the actor from ctx now and writes the entry asynchronously.
func (r *Recorder) Record(ctx context.Context, entityType string, entityID id.ID, action Action, description string, changes map[string]any) {
	actor := security.ActorFrom(ctx)
	entry := Entry{
		ID:          id.New(),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		ActorID:     actor.UserID,
		ActorIP:     actor.ClientIP,
		Description: description,
		Changes:     changes,
		RequestID:   appctx.GetRequestID(ctx),
		CreatedAt:   time.Now().UTC(),
	}

	// Detached from request cancellation; keeps trace values for logging.
	bg := context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		writeCtx, cancel := context.WithTimeout(bg, r.timeout)
		defer cancel()

		if err := r.store.Write(writeCtx, entry); err != nil {
			logger.Error(bg, "audit write failed",
				"entity_type", entry.EntityType,
				"entity_id", entry.EntityID,
				"action", entry.Action,
				"error", err,
			)
		}
	}()
}

// Close waits for in-flight writes.
func (r *Recorder) Close() {
	r.wg.Wait()
}

// Nop discards every entry.
type Nop struct{}

// Record implements Auditor.
func (Nop) Record(context.Context, string, id.ID, Action, string, map[string]any) {}

var (
	_ Auditor = (*Recorder)(nil)
	_ Auditor = Nop{}
)
