package numerator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "retailpos/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

// fakeSequences keeps counters keyed like sys_sequences.
type fakeSequences struct {
	counters map[string]int64
	lastSQL  string
	err      error
}

func (f *fakeSequences) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	if f.err != nil {
		return fakeRow{err: f.err}
	}
	key := args[0].(string)
	if len(args) == 2 {
		f.counters[key] = args[1].(int64)
	} else {
		f.counters[key]++
	}
	return fakeRow{val: f.counters[key]}
}

func newService(f *fakeSequences) *Service {
	return New(QuerierFunc(func(context.Context) Querier { return f }))
}

func TestGetNextNumberIncrements(t *testing.T) {
	seq := &fakeSequences{counters: map[string]int64{}}
	svc := newService(seq)
	cfg := corenumerator.BillConfig("BILL")
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetNextNumber(context.Background(), cfg, now)
	require.NoError(t, err)
	second, err := svc.GetNextNumber(context.Background(), cfg, now)
	require.NoError(t, err)

	assert.Equal(t, "BILL-000001", first)
	assert.Equal(t, "BILL-000002", second)
	assert.True(t, strings.Contains(seq.lastSQL, "ON CONFLICT (key)"))
}

func TestSetNextNumber(t *testing.T) {
	seq := &fakeSequences{counters: map[string]int64{}}
	svc := newService(seq)
	cfg := corenumerator.BillConfig("INV")
	now := time.Now()

	require.NoError(t, svc.SetNextNumber(context.Background(), cfg, now, 41))
	got, err := svc.GetNextNumber(context.Background(), cfg, now)
	require.NoError(t, err)
	assert.Equal(t, "INV-000042", got)
}

func TestGetNextNumberWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newService(&fakeSequences{err: boom})

	_, err := svc.GetNextNumber(context.Background(), corenumerator.BillConfig("BILL"), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
