// Package hedge constructs the protective order that closes the risk on
// an already-filled parent order: either a fixed OCO exit pair or a
// trailing stop. The hedge quantity is capped to what is actually held.
package hedge

import (
	"fmt"
	"math"

	"github.com/rustyeddy/autotrader/broker"
)

// Precondition rejection reason codes.
const (
	ReasonParentMissing   = "parent_missing"
	ReasonSymbolMismatch  = "symbol_mismatch"
	ReasonParentUnfilled  = "parent_unfilled"
	ReasonParentNotFilled = "parent_not_filled_status"
)

// Kind selects the hedge shape.
type Kind int

const (
	// OCO is a fixed take-profit plus stop-loss exit pair, used to
	// retrofit protection onto a filled market order.
	OCO Kind = iota
	// Trailing is a single-sided trailing stop with no fixed target.
	Trailing
)

// Params are the brokerage-facing constants. Passed in explicitly so the
// builder stays pure and testable.
type Params struct {
	// PricePrecision is the decimal precision for OCO leg prices.
	PricePrecision int
	// MinTrailPercent is the brokerage-imposed floor on trail percent.
	MinTrailPercent float64
}

// DefaultParams returns equity-appropriate constants: cent precision and
// the 0.1% trailing floor.
func DefaultParams() Params {
	return Params{PricePrecision: 2, MinTrailPercent: 0.1}
}

// RoundPrice rounds v to the configured price precision.
func (p Params) RoundPrice(v float64) float64 {
	return roundTo(v, p.PricePrecision)
}

// Input describes the parent order being hedged. Position is the
// currently open position for the symbol, nil when none is held.
type Input struct {
	Parent   *broker.Order
	Position *broker.Position
	Symbol   string
	Kind     Kind

	// Target and Stop price the OCO legs. Entry and Stop derive the
	// trailing percent. All come from the validator's decision.
	Target float64
	Stop   float64
	Entry  float64
}

// Request is the hedge order to submit: the opposite side of the parent,
// sized to the held position.
type Request struct {
	Symbol string
	Side   broker.Side
	Qty    int64
	Kind   Kind

	TakeProfit   float64 // OCO only
	StopLoss     float64 // OCO only
	TrailPercent float64 // Trailing only

	// Warning is set when the hedge quantity was capped below the
	// parent's filled quantity; the held position diverged from the fill
	// and deserves a look.
	Warning bool
}

// Build constructs the hedge request for in.
//
// A non-empty reason is a precondition rejection: no hedge should be
// submitted and the parent state should be re-examined. An error is a
// programming mistake (unknown kind). When no position is held the
// quantity caps to zero; callers must treat a zero-quantity request as
// not yet attachable.
func Build(in Input, p Params) (Request, string, error) {
	if in.Parent == nil {
		return Request{}, ReasonParentMissing, nil
	}
	if in.Parent.Symbol != in.Symbol {
		return Request{}, ReasonSymbolMismatch, nil
	}
	if in.Parent.FilledQty == 0 {
		return Request{}, ReasonParentUnfilled, nil
	}
	if in.Parent.Status != broker.StatusFilled {
		return Request{}, ReasonParentNotFilled, nil
	}

	// Never hedge more than is actually held: partial fills or manual
	// intervention can shrink the position under the parent's fill.
	qty := in.Parent.FilledQty
	var held int64
	if in.Position != nil {
		held = in.Position.Qty
		if held < 0 {
			held = -held
		}
	}
	warning := held != in.Parent.FilledQty
	if held < in.Parent.FilledQty {
		qty = held
	}

	req := Request{
		Symbol:  in.Parent.Symbol,
		Side:    in.Parent.Side.Opposite(),
		Qty:     qty,
		Kind:    in.Kind,
		Warning: warning,
	}

	switch in.Kind {
	case OCO:
		req.TakeProfit = p.RoundPrice(in.Target)
		req.StopLoss = p.RoundPrice(in.Stop)
	case Trailing:
		trail := math.Abs(in.Stop-in.Entry) / in.Entry * 100
		if trail < p.MinTrailPercent {
			trail = p.MinTrailPercent
		}
		req.TrailPercent = trail
	default:
		return Request{}, "", fmt.Errorf("unknown hedge kind %d", in.Kind)
	}

	return req, "", nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
