package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *SQLite {
	t.Helper()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func sampleRecord(symbol string, at time.Time) Record {
	return Record{
		Time:          at,
		Symbol:        symbol,
		Action:        "buy",
		OrderType:     "bracket",
		State:         "done",
		ClientOrderID: "01J5ZX3A9GQ4T8RWM2KCEB7DVN",
		EntryOrderID:  "ord-1",
		Entry:         100,
		Target:        110,
		Stop:          95,
		Qty:           10,
	}
}

func TestRecordRoundtrip(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	at := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(sampleRecord("AAPL", at)))

	got, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.True(t, r.Time.Equal(at))
	assert.Equal(t, "AAPL", r.Symbol)
	assert.Equal(t, "buy", r.Action)
	assert.Equal(t, "bracket", r.OrderType)
	assert.Equal(t, "done", r.State)
	assert.Empty(t, r.Reason)
	assert.Equal(t, "01J5ZX3A9GQ4T8RWM2KCEB7DVN", r.ClientOrderID)
	assert.Equal(t, "ord-1", r.EntryOrderID)
	assert.InDelta(t, 100.0, r.Entry, 1e-9)
	assert.InDelta(t, 110.0, r.Target, 1e-9)
	assert.InDelta(t, 95.0, r.Stop, 1e-9)
	assert.Equal(t, int64(10), r.Qty)
}

func TestRecordFillsZeroTime(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	rec := sampleRecord("AAPL", time.Time{})
	require.NoError(t, j.Record(rec))

	got, err := j.Recent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Time.IsZero())
	assert.WithinDuration(t, time.Now().UTC(), got[0].Time, time.Minute)
}

func TestRecentNewestFirst(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	base := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	for i, sym := range []string{"AAPL", "TSLA", "MSFT"} {
		require.NoError(t, j.Record(sampleRecord(sym, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MSFT", got[0].Symbol)
	assert.Equal(t, "TSLA", got[1].Symbol)
}

func TestBySymbol(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	base := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(sampleRecord("AAPL", base)))
	require.NoError(t, j.Record(sampleRecord("TSLA", base.Add(time.Minute))))
	require.NoError(t, j.Record(sampleRecord("AAPL", base.Add(2*time.Minute))))

	got, err := j.BySymbol("AAPL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Time.After(got[1].Time))
	for _, r := range got {
		assert.Equal(t, "AAPL", r.Symbol)
	}
}

func TestBySymbolEmpty(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)

	got, err := j.BySymbol("GME")
	require.NoError(t, err)
	assert.Empty(t, got)
}
