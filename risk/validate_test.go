package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autotrader/pick"
)

func buyIntent() Intent {
	return Intent{
		Action: pick.Buy,
		Symbol: "AAPL",
		Budget: 1000,
		Entry:  100,
		Target: 110,
		Stop:   95,
	}
}

func TestValidateBuyAccept(t *testing.T) {
	t.Parallel()

	d, err := Validate(buyIntent(), 100)
	require.NoError(t, err)

	assert.True(t, d.Accept)
	assert.Empty(t, d.Reason)
	assert.Equal(t, int64(10), d.Qty)
	assert.InDelta(t, 100.0, d.Entry, 1e-9)
	assert.InDelta(t, 110.0, d.Target, 1e-9)
	assert.InDelta(t, 95.0, d.Stop, 1e-9)
}

func TestValidateBuyTargetAlreadyHit(t *testing.T) {
	t.Parallel()

	d, err := Validate(buyIntent(), 111)
	require.NoError(t, err)

	assert.False(t, d.Accept)
	assert.Equal(t, ReasonTargetAlreadyHit, d.Reason)
}

func TestValidateBuyTargetHitBoundary(t *testing.T) {
	t.Parallel()

	// latest == target counts as already hit.
	d, err := Validate(buyIntent(), 110)
	require.NoError(t, err)

	assert.False(t, d.Accept)
	assert.Equal(t, ReasonTargetAlreadyHit, d.Reason)
}

func TestValidateSellStopRederived(t *testing.T) {
	t.Parallel()

	in := Intent{
		Action: pick.Sell,
		Symbol: "TSLA",
		Budget: 1000,
		Entry:  50,
		Target: 45,
		Stop:   53,
	}

	d, err := Validate(in, 48)
	require.NoError(t, err)
	require.True(t, d.Accept)

	// Original risk band is 6% above entry; it must be preserved
	// relative to the new entry of 48.
	assert.InDelta(t, 48*1.06, d.Stop, 1e-9)
	assert.InDelta(t, 0.06, (d.Stop-d.Entry)/d.Entry, 1e-9)
	assert.InDelta(t, 45.0, d.Target, 1e-9)
	assert.Equal(t, int64(20), d.Qty)
}

func TestValidateSellTargetAlreadyHit(t *testing.T) {
	t.Parallel()

	in := Intent{
		Action: pick.Sell,
		Symbol: "TSLA",
		Budget: 1000,
		Entry:  50,
		Target: 45,
		Stop:   53,
	}

	d, err := Validate(in, 44.5)
	require.NoError(t, err)

	assert.False(t, d.Accept)
	assert.Equal(t, ReasonTargetAlreadyHit, d.Reason)
}

func TestValidateBudgetTooSmall(t *testing.T) {
	t.Parallel()

	in := buyIntent()
	in.Budget = 50

	d, err := Validate(in, 100)
	require.NoError(t, err)

	assert.False(t, d.Accept)
	assert.Equal(t, ReasonBudgetTooSmall, d.Reason)
	assert.Equal(t, int64(0), d.Qty)
}

func TestValidateBudgetExceeded(t *testing.T) {
	t.Parallel()

	in := buyIntent()
	in.Qty = 20 // 20 * 100 > 1000

	d, err := Validate(in, 100)
	require.NoError(t, err)

	assert.False(t, d.Accept)
	assert.Equal(t, ReasonBudgetExceeded, d.Reason)
}

func TestValidateNoAction(t *testing.T) {
	t.Parallel()

	in := buyIntent()
	in.Action = pick.NoAction

	d, err := Validate(in, 100)
	require.NoError(t, err)

	assert.False(t, d.Accept)
	assert.Equal(t, ReasonNoAction, d.Reason)
}

func TestValidateRiskExceedsReward(t *testing.T) {
	t.Parallel()

	// Risk band is 5%; at 107 the remaining upside is under 3%.
	d, err := Validate(buyIntent(), 107)
	require.NoError(t, err)

	assert.False(t, d.Accept)
	assert.Equal(t, ReasonRiskOverReward, d.Reason)

	// The inequality the rejection asserts must hold at rejection time.
	stopPct := (95.0 - 100.0) / 100.0
	targetPct := (110.0 - 107.0) / 107.0
	assert.Less(t, abs(targetPct), abs(stopPct))
}

func TestValidateStopPreservesRiskShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     Intent
		latest float64
	}{
		{"buy moved down", buyIntent(), 98},
		{"buy unchanged", buyIntent(), 100},
		{"sell moved up", Intent{Action: pick.Sell, Symbol: "X", Budget: 5000, Entry: 50, Target: 45, Stop: 53}, 51},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := Validate(tt.in, tt.latest)
			require.NoError(t, err)
			require.True(t, d.Accept, "reason: %s", d.Reason)

			origPct := (tt.in.Stop - tt.in.Entry) / tt.in.Entry
			newPct := (d.Stop - d.Entry) / d.Entry
			assert.InDelta(t, origPct, newPct, 1e-9)
		})
	}
}

func TestValidateFatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Intent)
	}{
		{"invalid action", func(in *Intent) { in.Action = 7 }},
		{"buy stop above entry", func(in *Intent) { in.Stop = 101 }},
		{"buy target below entry", func(in *Intent) { in.Target = 99 }},
		{"missing budget", func(in *Intent) { in.Budget = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := buyIntent()
			tt.mutate(&in)

			_, err := Validate(in, 100)
			assert.Error(t, err)
		})
	}
}

func TestValidateSellOrderingFatal(t *testing.T) {
	t.Parallel()

	in := Intent{
		Action: pick.Sell,
		Symbol: "TSLA",
		Budget: 1000,
		Entry:  50,
		Target: 55, // target must be below entry for a short
		Stop:   53,
	}

	_, err := Validate(in, 48)
	assert.Error(t, err)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
