package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditChangesCompression(t *testing.T) {
	store, err := NewAuditStore(nil)
	require.NoError(t, err)
	store.compressThreshold = 64

	small := map[string]any{"billNo": "BILL-000001"}
	raw, compressed, algo, err := store.encodeChanges(small)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, algo)
	assert.Nil(t, compressed)

	back, err := store.decodeChanges(raw, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, "BILL-000001", back["billNo"])

	large := map[string]any{"notes": strings.Repeat("folded denim ", 50)}
	raw, compressed, algo, err = store.encodeChanges(large)
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, algo)
	assert.Nil(t, raw)
	assert.NotEmpty(t, compressed)

	back, err = store.decodeChanges(raw, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, large["notes"], back["notes"])
}

func TestAuditEmptyChanges(t *testing.T) {
	store, err := NewAuditStore(nil)
	require.NoError(t, err)

	raw, compressed, algo, err := store.encodeChanges(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Nil(t, compressed)
	assert.Equal(t, CompressionNone, algo)

	back, err := store.decodeChanges(nil, nil, CompressionNone)
	require.NoError(t, err)
	assert.Nil(t, back)
}
