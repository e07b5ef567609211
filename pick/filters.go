package pick

import "math"

// Filters are the batch-level pick thresholds. A zero Filters value
// matches nothing useful; use DefaultFilters as a starting point.
type Filters struct {
	// AbsChangePct is the minimum absolute expected change (0.02 = 2%).
	AbsChangePct float64
	// Actions is the allowed action set.
	Actions []TradeAction
	// MaxAvgUncertainty is the maximum average forecast uncertainty.
	MaxAvgUncertainty float64
	// MinModelROI is the minimum historical average ROI of the model.
	MinModelROI float64
	// Symbols restricts the batch to an allowlist; nil means all.
	Symbols []string
}

// DefaultFilters mirrors the documented autotrader defaults: 2% minimum
// move, buy and sell allowed, 15% max uncertainty, non-negative ROI.
func DefaultFilters() Filters {
	return Filters{
		AbsChangePct:      0.02,
		Actions:           []TradeAction{Buy, Sell},
		MaxAvgUncertainty: 0.15,
		MinModelROI:       0.0,
	}
}

// Match reports whether p passes every filter. On failure the second
// return value names the first filter that rejected it, for logging.
func (f Filters) Match(p TradePick) (bool, string) {
	if f.Symbols != nil && !contains(f.Symbols, p.Symbol) {
		return false, "symbol_not_allowed"
	}
	if !containsAction(f.Actions, p.Action) {
		return false, "action_not_allowed"
	}
	if math.Abs(p.ExpectedChangePct()) < f.AbsChangePct {
		return false, "change_below_threshold"
	}
	if p.AvgUncertainty > f.MaxAvgUncertainty {
		return false, "uncertainty_too_high"
	}
	if p.AvgROI < f.MinModelROI {
		return false, "model_roi_too_low"
	}
	return true, ""
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func containsAction(as []TradeAction, a TradeAction) bool {
	for _, v := range as {
		if v == a {
			return true
		}
	}
	return false
}
