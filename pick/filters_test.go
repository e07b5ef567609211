package pick

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func passingPick() TradePick {
	return TradePick{
		Symbol:              "AAPL",
		Action:              Buy,
		StartingPrice:       100,
		TargetSellPrice:     105,
		TargetStopLossPrice: 96,
		AvgUncertainty:      0.05,
		AvgROI:              0.1,
	}
}

func TestFiltersMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Filters, *TradePick)
		ok     bool
		reason string
	}{
		{
			"default pass",
			nil,
			true, "",
		},
		{
			"symbol allowlist pass",
			func(f *Filters, _ *TradePick) { f.Symbols = []string{"AAPL", "TSLA"} },
			true, "",
		},
		{
			"symbol not allowed",
			func(f *Filters, _ *TradePick) { f.Symbols = []string{"TSLA"} },
			false, "symbol_not_allowed",
		},
		{
			"action not allowed",
			func(f *Filters, p *TradePick) {
				f.Actions = []TradeAction{Buy}
				p.Action = Sell
				p.TargetSellPrice = 95
			},
			false, "action_not_allowed",
		},
		{
			"no action rejected",
			func(_ *Filters, p *TradePick) { p.Action = NoAction },
			false, "action_not_allowed",
		},
		{
			"change below threshold",
			func(_ *Filters, p *TradePick) { p.TargetSellPrice = 101 },
			false, "change_below_threshold",
		},
		{
			"negative change passes on magnitude",
			func(_ *Filters, p *TradePick) {
				p.Action = Sell
				p.TargetSellPrice = 95
			},
			true, "",
		},
		{
			"uncertainty too high",
			func(_ *Filters, p *TradePick) { p.AvgUncertainty = 0.2 },
			false, "uncertainty_too_high",
		},
		{
			"model roi too low",
			func(f *Filters, p *TradePick) {
				f.MinModelROI = 0.05
				p.AvgROI = 0.01
			},
			false, "model_roi_too_low",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := DefaultFilters()
			p := passingPick()
			if tt.mutate != nil {
				tt.mutate(&f, &p)
			}

			ok, reason := f.Match(p)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestExpectedChangePct(t *testing.T) {
	t.Parallel()

	p := passingPick()
	assert.InDelta(t, 0.05, p.ExpectedChangePct(), 1e-9)

	p.TargetSellPrice = 95
	assert.InDelta(t, -0.05, p.ExpectedChangePct(), 1e-9)

	p.StartingPrice = 0
	assert.Zero(t, p.ExpectedChangePct())
}
