package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/pick"
)

type fakeSource struct {
	symbols []string
	picks   map[string]pick.TradePick
	pickErr map[string]error
	myPicks []pick.TradePick

	myPicksCalled bool
}

func (f *fakeSource) SupportedSymbols(context.Context) ([]string, error) {
	return f.symbols, nil
}

func (f *fakeSource) TradePick(_ context.Context, symbol, _ string) (pick.TradePick, error) {
	if err, ok := f.pickErr[symbol]; ok {
		return pick.TradePick{}, err
	}
	p, ok := f.picks[symbol]
	if !ok {
		return pick.TradePick{}, errors.New("no pick")
	}
	return p, nil
}

func (f *fakeSource) MyPicks(context.Context, string) ([]pick.TradePick, error) {
	f.myPicksCalled = true
	return f.myPicks, nil
}

func strongPick(symbol string) pick.TradePick {
	return pick.TradePick{
		Symbol:              symbol,
		Action:              pick.Buy,
		StartingPrice:       100,
		TargetSellPrice:     110,
		TargetStopLossPrice: 95,
		AvgUncertainty:      0.05,
		AvgROI:              0.1,
	}
}

func newTestRunner(t *testing.T, src *fakeSource, fb *fakeBroker, pacing time.Duration) (*Runner, *[]time.Duration) {
	t.Helper()

	o := newTestOrch(t, fb, nil)
	r := NewRunner(src, o.Orchestrator, pick.DefaultFilters(), pacing, zerolog.Nop())

	var sleeps []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return r, &sleeps
}

func TestRunSubmitsFilteredBatch(t *testing.T) {
	t.Parallel()

	weak := strongPick("MSFT")
	weak.TargetSellPrice = 101 // 1% move, below the 2% threshold

	src := &fakeSource{
		symbols: []string{"AAPL", "MSFT", "TSLA"},
		picks: map[string]pick.TradePick{
			"AAPL": strongPick("AAPL"),
			"MSFT": weak,
			"TSLA": strongPick("TSLA"),
		},
	}
	fb := newFakeBroker()
	r, _ := newTestRunner(t, src, fb, 0)

	submitted, err := r.Run(context.Background(), "2026-08-30", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "TSLA"}, submitted)
	assert.Len(t, fb.marketReqs, 2)
}

func TestRunSkipsSymbolsWithoutPicks(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		symbols: []string{"AAPL", "GME", "TSLA"},
		picks: map[string]pick.TradePick{
			"AAPL": strongPick("AAPL"),
			"TSLA": strongPick("TSLA"),
		},
		pickErr: map[string]error{"GME": errors.New("forecast unavailable")},
	}
	r, _ := newTestRunner(t, src, newFakeBroker(), 0)

	submitted, err := r.Run(context.Background(), "2026-08-30", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, submitted)
}

func TestRunSymbolFailureIsolated(t *testing.T) {
	t.Parallel()

	bad := strongPick("AAPL")
	bad.TargetStopLossPrice = 120 // fatal validation, stop above entry

	src := &fakeSource{
		symbols: []string{"AAPL", "TSLA"},
		picks: map[string]pick.TradePick{
			"AAPL": bad,
			"TSLA": strongPick("TSLA"),
		},
	}
	r, _ := newTestRunner(t, src, newFakeBroker(), 0)

	submitted, err := r.Run(context.Background(), "2026-08-30", false)
	require.NoError(t, err)

	// AAPL fails, TSLA still trades.
	assert.Equal(t, []string{"TSLA"}, submitted)
}

func TestRunPacingBetweenSymbols(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		symbols: []string{"AAPL", "MSFT", "TSLA"},
		picks: map[string]pick.TradePick{
			"AAPL": strongPick("AAPL"),
			"MSFT": strongPick("MSFT"),
			"TSLA": strongPick("TSLA"),
		},
	}
	r, sleeps := newTestRunner(t, src, newFakeBroker(), 2*time.Second)

	_, err := r.Run(context.Background(), "2026-08-30", false)
	require.NoError(t, err)

	// No delay before the first symbol.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *sleeps)
}

func TestRunMyPicks(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		myPicks: []pick.TradePick{strongPick("AAPL")},
	}
	r, _ := newTestRunner(t, src, newFakeBroker(), 0)

	submitted, err := r.Run(context.Background(), "2026-08-30", true)
	require.NoError(t, err)

	assert.True(t, src.myPicksCalled)
	assert.Equal(t, []string{"AAPL"}, submitted)
}
