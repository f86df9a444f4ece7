package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used for changes.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// defaultCompressThreshold is the changes payload size above which zstd kicks in.
const defaultCompressThreshold = 10 * 1024

// historyRow is a sys_audit row as read back.
type historyRow struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            string          `db:"action"`
	UserID            string          `db:"user_id"`
	ClientIP          string          `db:"client_ip"`
	Description       string          `db:"description"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	RequestID         string          `db:"request_id"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditStore implements audit.Store on sys_audit.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var (
	_ audit.Store  = (*AuditStore)(nil)
	_ audit.Reader = (*AuditStore)(nil)
)

// NewAuditStore creates the audit store.
func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: defaultCompressThreshold,
	}, nil
}

// Close releases the zstd codec resources. Call after the recorder has drained.
func (s *AuditStore) Close() {
	_ = s.encoder.Close()
	s.decoder.Close()
}

// Write inserts one entry. Large change payloads are stored zstd-compressed.
func (s *AuditStore) Write(ctx context.Context, entry audit.Entry) error {
	changes, compressed, algo, err := s.encodeChanges(entry.Changes)
	if err != nil {
		return err
	}

	q := Builder().
		Insert("sys_audit").
		SetMap(map[string]any{
			"id":                 entry.ID,
			"entity_type":        entry.EntityType,
			"entity_id":          entry.EntityID,
			"action":             string(entry.Action),
			"user_id":            entry.ActorID,
			"client_ip":          entry.ActorIP,
			"description":        entry.Description,
			"changes":            changes,
			"changes_compressed": compressed,
			"compression_algo":   algo,
			"request_id":         entry.RequestID,
			"created_at":         entry.CreatedAt,
		})

	if _, err := s.txManager.Exec(ctx, q); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// encodeChanges marshals changes and compresses them past the threshold.
func (s *AuditStore) encodeChanges(changes map[string]any) (json.RawMessage, []byte, CompressionAlgo, error) {
	if len(changes) == 0 {
		return nil, nil, CompressionNone, nil
	}
	raw, err := json.Marshal(changes)
	if err != nil {
		return nil, nil, "", fmt.Errorf("marshal changes: %w", err)
	}
	if len(raw) > s.compressThreshold {
		return nil, s.encoder.EncodeAll(raw, nil), CompressionZstd, nil
	}
	return raw, nil, CompressionNone, nil
}

// decodeChanges reverses encodeChanges.
func (s *AuditStore) decodeChanges(raw json.RawMessage, compressed []byte, algo CompressionAlgo) (map[string]any, error) {
	data := []byte(raw)
	if algo == CompressionZstd && len(compressed) > 0 {
		var err error
		data, err = s.decoder.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress changes: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}
	var changes map[string]any
	if err := json.Unmarshal(data, &changes); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}
	return changes, nil
}

// History returns the latest entries of one entity, newest first.
func (s *AuditStore) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	q := Builder().
		Select("id", "entity_type", "entity_id", "action", "user_id", "client_ip",
			"description", "changes", "changes_compressed", "compression_algo", "request_id", "created_at").
		From("sys_audit").
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	var rows []historyRow
	if err := s.txManager.Select(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		changes, err := s.decodeChanges(row.Changes, row.ChangesCompressed, row.CompressionAlgo)
		if err != nil {
			return nil, err
		}
		entries = append(entries, audit.Entry{
			ID:          row.ID,
			EntityType:  row.EntityType,
			EntityID:    row.EntityID,
			Action:      audit.Action(row.Action),
			ActorID:     row.UserID,
			ActorIP:     row.ClientIP,
			Description: row.Description,
			Changes:     changes,
			RequestID:   row.RequestID,
			CreatedAt:   row.CreatedAt,
		})
	}
	return entries, nil
}
