// Package risk decides whether a proposed trade is still safe to execute
// against the live market price, and re-derives stop and quantity when
// the entry has moved. Pure functions: callers feed in the latest price,
// so the whole package tests without a brokerage.
package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/autotrader/pick"
)

// Soft-rejection reason codes. A rejection is a "do not trade" decision,
// not an error: callers and tests assert on why a trade was skipped.
const (
	ReasonBudgetTooSmall   = "budget_too_small"
	ReasonBudgetExceeded   = "budget_exceeded"
	ReasonTargetAlreadyHit = "target_already_hit"
	ReasonNoAction         = "no_action"
	ReasonRiskOverReward   = "risk_exceeds_reward"
)

// Intent is a proposed trade before validation. Qty of zero means derive
// the share count from Budget at the live price.
type Intent struct {
	Action pick.TradeAction
	Symbol string
	Qty    int64
	Budget float64
	Entry  float64 // expected entry from the pick; staleness reference only
	Target float64
	Stop   float64
}

// Decision is the validator's immutable result. When Accept is false,
// Reason names the soft rejection; the price fields carry whatever was
// re-derived before the rejection fired.
type Decision struct {
	Accept bool
	Reason string

	Entry  float64
	Target float64
	Stop   float64
	Qty    int64
}

func reject(reason string, entry, target, stop float64, qty int64) Decision {
	return Decision{Reason: reason, Entry: entry, Target: target, Stop: stop, Qty: qty}
}

// Validate decides go/no-go for intent at latestPrice.
//
// Errors are fatal configuration/data problems (malformed price ordering,
// missing budget): the trade must not reach the brokerage. Soft
// rejections come back as a Decision with Accept false.
//
// The stop is recomputed to preserve the original percentage risk
// relative to the new entry; the target is never recomputed.
func Validate(intent Intent, latestPrice float64) (Decision, error) {
	if !intent.Action.Valid() {
		return Decision{}, fmt.Errorf("invalid trade action %d", intent.Action)
	}
	if intent.Action == pick.Buy && (intent.Target <= intent.Entry || intent.Stop >= intent.Entry) {
		return Decision{}, fmt.Errorf("buy %s: entry %.4f must lie between stop %.4f and target %.4f",
			intent.Symbol, intent.Entry, intent.Stop, intent.Target)
	}
	if intent.Action == pick.Sell && (intent.Target >= intent.Entry || intent.Stop <= intent.Entry) {
		return Decision{}, fmt.Errorf("sell %s: entry %.4f must lie between target %.4f and stop %.4f",
			intent.Symbol, intent.Entry, intent.Target, intent.Stop)
	}
	if intent.Budget <= 0 {
		return Decision{}, fmt.Errorf("%s: investment budget is required", intent.Symbol)
	}
	if latestPrice <= 0 {
		return Decision{}, fmt.Errorf("%s: latest price %.4f is not positive", intent.Symbol, latestPrice)
	}

	qty := intent.Qty
	if qty == 0 {
		qty = int64(math.Floor(intent.Budget / latestPrice))
		if qty == 0 {
			return reject(ReasonBudgetTooSmall, latestPrice, 0, 0, 0), nil
		}
	}
	if float64(qty)*latestPrice > intent.Budget {
		return reject(ReasonBudgetExceeded, latestPrice, 0, 0, qty), nil
	}

	// The market may have moved past the target since the pick was made;
	// entering now has negligible or negative expected gain.
	if intent.Action == pick.Buy && latestPrice >= intent.Target {
		return reject(ReasonTargetAlreadyHit, latestPrice, intent.Target, 0, qty), nil
	}
	if intent.Action == pick.Sell && latestPrice <= intent.Target {
		return reject(ReasonTargetAlreadyHit, latestPrice, intent.Target, 0, qty), nil
	}
	if intent.Action == pick.NoAction {
		return reject(ReasonNoAction, latestPrice, 0, 0, qty), nil
	}

	// Re-derive the stop so the percentage risk the pick implied is
	// preserved relative to the live entry. The target stays fixed.
	stopPct := (intent.Stop - intent.Entry) / intent.Entry
	newStop := latestPrice + latestPrice*stopPct

	targetPct := (intent.Target - latestPrice) / latestPrice
	if math.Abs(targetPct) < math.Abs(stopPct) {
		return reject(ReasonRiskOverReward, latestPrice, intent.Target, newStop, qty), nil
	}

	// Should be unreachable given the stop recomputation above; if it
	// fires the arithmetic is broken and nothing must be submitted.
	if intent.Action == pick.Buy && (intent.Target <= latestPrice || newStop >= latestPrice) {
		return Decision{}, fmt.Errorf("buy %s: recomputed prices violate ordering: stop %.4f entry %.4f target %.4f",
			intent.Symbol, newStop, latestPrice, intent.Target)
	}
	if intent.Action == pick.Sell && (intent.Target >= latestPrice || newStop <= latestPrice) {
		return Decision{}, fmt.Errorf("sell %s: recomputed prices violate ordering: target %.4f entry %.4f stop %.4f",
			intent.Symbol, intent.Target, latestPrice, newStop)
	}

	return Decision{
		Accept: true,
		Entry:  latestPrice,
		Target: intent.Target,
		Stop:   newStop,
		Qty:    qty,
	}, nil
}
