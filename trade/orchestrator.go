// Package trade sequences a single trade attempt: pre-trade guards,
// validation against the live price, brokerage submission, and for
// trailing-stop trades the bounded retry that attaches the hedge once
// the entry fills. It also drives batches of picks (see runner.go).
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/hedge"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/oracle"
	"github.com/rustyeddy/autotrader/pick"
	"github.com/rustyeddy/autotrader/pkg/id"
	"github.com/rustyeddy/autotrader/risk"
)

// State is the terminal outcome of one trade attempt.
type State string

const (
	// StateDone means the order (and hedge, when required) was submitted.
	StateDone State = "done"
	// StateRejected means a guard or the validator said no; at most a
	// rolled-back entry call reached the brokerage.
	StateRejected State = "rejected"
	// StateFailed means a brokerage call failed, or the trailing hedge
	// could not be attached and the entry was cancelled.
	StateFailed State = "failed"
)

// Guard and orchestration reason codes. Validator and hedge reasons pass
// through unchanged.
const (
	ReasonAlreadyHolding    = "already_holding"
	ReasonDayTradeGuard     = "day_trade_guard"
	ReasonMarketClosed      = "market_closed"
	ReasonUnhedgedCancelled = "unhedged_cancelled"
)

// Params configure one orchestrator. Constants live here rather than in
// package statics so tests can tighten them.
type Params struct {
	// InvestmentPerTrade is the capital budget per trade.
	InvestmentPerTrade float64
	// OrderType selects market, bracket or trailing-stop submission.
	OrderType broker.OrderType
	// StopLossPctOverride, when positive, replaces the pick's stop with a
	// fixed percentage from the pick's entry (0.05 = 5%).
	StopLossPctOverride float64

	// HedgeRetries and HedgeRetryDelay bound the trailing-stop attach loop.
	HedgeRetries    int
	HedgeRetryDelay time.Duration
	// DayTradeWindow blocks re-trading a symbol with a fill inside it.
	DayTradeWindow time.Duration

	Hedge hedge.Params
}

// DefaultParams returns the production constants: 5 attach attempts 10s
// apart, a 7 hour day-trade window, bracket orders.
func DefaultParams() Params {
	return Params{
		OrderType:       broker.TypeBracket,
		HedgeRetries:    5,
		HedgeRetryDelay: 10 * time.Second,
		DayTradeWindow:  7 * time.Hour,
		Hedge:           hedge.DefaultParams(),
	}
}

// Outcome reports what happened to one trade attempt and why.
type Outcome struct {
	State  State
	Reason string
	Symbol string

	ClientOrderID string
	EntryOrderID  string
	HedgeOrderID  string

	Entry  float64
	Target float64
	Stop   float64
	Qty    int64
}

// Orchestrator runs the per-trade state machine. It holds no mutable
// trade state: position and order truth is always re-read from the
// brokerage.
type Orchestrator struct {
	broker  broker.Broker
	oracle  *oracle.Oracle
	journal journal.Journal
	params  Params
	log     zerolog.Logger

	// sleep and now are injectable so the retry loop tests without
	// wall-clock delay.
	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// NewOrchestrator wires an orchestrator over a broker and its oracle.
func NewOrchestrator(b broker.Broker, o *oracle.Oracle, j journal.Journal, p Params, log zerolog.Logger) *Orchestrator {
	if j == nil {
		j = journal.Nop{}
	}
	return &Orchestrator{
		broker:  b,
		oracle:  o,
		journal: j,
		params:  p,
		log:     log,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func sideFor(a pick.TradeAction) broker.Side {
	if a == pick.Sell {
		return broker.SideSell
	}
	return broker.SideBuy
}

// Submit runs one trade attempt for p: Guarding, Validating, Submitting,
// and for trailing-stop orders the hedge-attach loop. Every outcome is
// journaled. A returned error always accompanies StateFailed.
func (o *Orchestrator) Submit(ctx context.Context, p pick.TradePick) (Outcome, error) {
	out, err := o.submit(ctx, p)
	out.Symbol = p.Symbol

	rec := journal.Record{
		Time:          o.now().UTC(),
		Symbol:        p.Symbol,
		Action:        p.Action.String(),
		OrderType:     string(o.params.OrderType),
		State:         string(out.State),
		Reason:        out.Reason,
		ClientOrderID: out.ClientOrderID,
		EntryOrderID:  out.EntryOrderID,
		HedgeOrderID:  out.HedgeOrderID,
		Entry:         out.Entry,
		Target:        out.Target,
		Stop:          out.Stop,
		Qty:           out.Qty,
	}
	if jerr := o.journal.Record(rec); jerr != nil {
		o.log.Error().Err(jerr).Str("symbol", p.Symbol).Msg("journal write failed")
	}

	return out, err
}

func (o *Orchestrator) submit(ctx context.Context, p pick.TradePick) (Outcome, error) {
	log := o.log.With().Str("symbol", p.Symbol).Logger()

	if !o.params.OrderType.Valid() {
		return Outcome{State: StateFailed}, fmt.Errorf("unknown order type %q", o.params.OrderType)
	}

	// Guarding. One open position per symbol, and no re-entry while a
	// fill inside the day-trade window exists. Both guards serialize
	// exposure per symbol across runs, not just within one.
	if pos, _ := o.oracle.OpenPosition(ctx, p.Symbol); pos != nil {
		log.Info().Int64("held_qty", pos.Qty).Msg("rejected: already holding position")
		return Outcome{State: StateRejected, Reason: ReasonAlreadyHolding}, nil
	}

	since := o.now().UTC().Add(-o.params.DayTradeWindow)
	filled, err := o.oracle.FilledOrdersSince(ctx, p.Symbol, since)
	if err != nil {
		return Outcome{State: StateFailed}, err
	}
	if len(filled) > 0 {
		log.Info().Int("recent_fills", len(filled)).Msg("rejected: day trade guard")
		return Outcome{State: StateRejected, Reason: ReasonDayTradeGuard}, nil
	}

	// A trailing-stop trade issues two sequential orders; the second leg
	// only fills sensibly while the market is open.
	if o.params.OrderType == broker.TypeTrailingStop {
		clock, err := o.broker.GetClock(ctx)
		if err != nil {
			return Outcome{State: StateFailed}, err
		}
		if !clock.IsOpen {
			log.Info().Time("next_open", clock.NextOpen).Msg("rejected: market closed for trailing stop")
			return Outcome{State: StateRejected, Reason: ReasonMarketClosed}, nil
		}
	}

	// Validating.
	latest, err := o.oracle.LatestPrice(ctx, p.Symbol)
	if err != nil {
		return Outcome{State: StateFailed}, err
	}

	stop := p.TargetStopLossPrice
	if o.params.StopLossPctOverride > 0 {
		if p.Action == pick.Sell {
			stop = p.StartingPrice * (1 + o.params.StopLossPctOverride)
		} else {
			stop = p.StartingPrice * (1 - o.params.StopLossPctOverride)
		}
	}

	decision, err := risk.Validate(risk.Intent{
		Action: p.Action,
		Symbol: p.Symbol,
		Budget: o.params.InvestmentPerTrade,
		Entry:  p.StartingPrice,
		Target: p.TargetSellPrice,
		Stop:   stop,
	}, latest)
	if err != nil {
		return Outcome{State: StateFailed}, err
	}
	if !decision.Accept {
		log.Info().
			Str("reason", decision.Reason).
			Float64("latest", latest).
			Msg("rejected by validator")
		return Outcome{
			State:  StateRejected,
			Reason: decision.Reason,
			Entry:  decision.Entry,
			Target: decision.Target,
			Stop:   decision.Stop,
			Qty:    decision.Qty,
		}, nil
	}

	log.Info().
		Float64("expected_entry", p.StartingPrice).
		Float64("entry", decision.Entry).
		Float64("target", decision.Target).
		Float64("stop", decision.Stop).
		Int64("qty", decision.Qty).
		Msg("validated, submitting")

	// Submitting.
	out := Outcome{
		State:         StateDone,
		ClientOrderID: id.New(),
		Entry:         decision.Entry,
		Target:        decision.Target,
		Stop:          decision.Stop,
		Qty:           decision.Qty,
	}
	side := sideFor(p.Action)

	switch o.params.OrderType {
	case broker.TypeMarket:
		ord, err := o.broker.SubmitMarket(ctx, broker.MarketOrderRequest{
			Symbol:        p.Symbol,
			Side:          side,
			Qty:           decision.Qty,
			TimeInForce:   broker.TimeInForceGTC,
			ClientOrderID: out.ClientOrderID,
		})
		if err != nil {
			return Outcome{State: StateFailed}, err
		}
		out.EntryOrderID = ord.ID

	case broker.TypeBracket:
		ord, err := o.broker.SubmitBracket(ctx, broker.BracketOrderRequest{
			Symbol:        p.Symbol,
			Side:          side,
			Qty:           decision.Qty,
			TimeInForce:   broker.TimeInForceGTC,
			TakeProfit:    o.params.Hedge.RoundPrice(decision.Target),
			StopLoss:      o.params.Hedge.RoundPrice(decision.Stop),
			ClientOrderID: out.ClientOrderID,
		})
		if err != nil {
			return Outcome{State: StateFailed}, err
		}
		out.EntryOrderID = ord.ID

	case broker.TypeTrailingStop:
		entry, err := o.broker.SubmitMarket(ctx, broker.MarketOrderRequest{
			Symbol:        p.Symbol,
			Side:          side,
			Qty:           decision.Qty,
			TimeInForce:   broker.TimeInForceGTC,
			ClientOrderID: out.ClientOrderID,
		})
		if err != nil {
			return Outcome{State: StateFailed}, err
		}
		out.EntryOrderID = entry.ID

		hedgeID, err := o.attachTrailing(ctx, log, entry.ID, p.Symbol, decision)
		if err != nil {
			// Keep the validated prices and quantity on the failure so the
			// journal row records what was cancelled.
			out.State = StateFailed
			out.Reason = ReasonUnhedgedCancelled
			return out, err
		}
		out.HedgeOrderID = hedgeID
	}

	log.Info().
		Str("entry_order_id", out.EntryOrderID).
		Str("client_order_id", out.ClientOrderID).
		Msg("order submitted")
	return out, nil
}

// attachTrailing polls the entry order for a fill by repeatedly trying to
// build and submit the trailing-stop hedge. On exhaustion the entry is
// cancelled: an unhedged filled position must never be left working.
func (o *Orchestrator) attachTrailing(ctx context.Context, log zerolog.Logger, entryID, symbol string, d risk.Decision) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= o.params.HedgeRetries; attempt++ {
		if attempt > 1 {
			if err := o.sleep(ctx, o.params.HedgeRetryDelay); err != nil {
				lastErr = err
				break
			}
		}

		parent, err := o.oracle.OrderByID(ctx, entryID)
		if err != nil {
			lastErr = err
			log.Debug().Err(err).Int("attempt", attempt).Msg("hedge attach: parent lookup failed")
			continue
		}

		pos, _ := o.oracle.OpenPosition(ctx, symbol)

		req, reason, err := hedge.Build(hedge.Input{
			Parent:   &parent,
			Position: pos,
			Symbol:   symbol,
			Kind:     hedge.Trailing,
			Entry:    d.Entry,
			Stop:     d.Stop,
		}, o.params.Hedge)
		if err != nil {
			// Programming error, retrying cannot help.
			lastErr = err
			break
		}
		if reason != "" {
			lastErr = errors.New("hedge not attachable: " + reason)
			log.Debug().Str("reason", reason).Int("attempt", attempt).Msg("hedge attach: not ready")
			continue
		}
		if req.Qty == 0 {
			lastErr = errors.New("hedge not attachable: no held position")
			continue
		}
		if req.Warning {
			log.Warn().
				Int64("hedge_qty", req.Qty).
				Msg("held position differs from parent fill, hedge quantity capped")
		}

		ord, err := o.broker.SubmitTrailingStop(ctx, broker.TrailingStopOrderRequest{
			Symbol:        req.Symbol,
			Side:          req.Side,
			Qty:           req.Qty,
			TimeInForce:   broker.TimeInForceGTC,
			TrailPercent:  req.TrailPercent,
			ClientOrderID: id.New(),
		})
		if err != nil {
			lastErr = err
			log.Debug().Err(err).Int("attempt", attempt).Msg("hedge attach: submission failed")
			continue
		}

		log.Info().
			Str("hedge_order_id", ord.ID).
			Float64("trail_percent", req.TrailPercent).
			Msg("trailing stop attached")
		return ord.ID, nil
	}

	// Unwind: cancel the entry so no unhedged position is left working.
	if cerr := o.broker.CancelOrder(ctx, entryID); cerr != nil {
		log.Error().Err(cerr).Str("entry_order_id", entryID).
			Msg("cancel of unhedged entry failed, manual intervention required")
	} else {
		log.Warn().Str("entry_order_id", entryID).Msg("hedge attach exhausted, entry cancelled")
	}

	return "", fmt.Errorf("trailing stop not attached after %d attempts: %w", o.params.HedgeRetries, lastErr)
}

// AttachOCO retrofits a protective take-profit/stop-loss pair onto an
// already-filled market order.
func (o *Orchestrator) AttachOCO(ctx context.Context, parentOrderID, symbol string, target, stop float64) (Outcome, error) {
	parent, err := o.oracle.OrderByID(ctx, parentOrderID)
	if err != nil {
		if errors.Is(err, oracle.ErrOrderNotFound) {
			return Outcome{State: StateRejected, Reason: hedge.ReasonParentMissing, Symbol: symbol}, nil
		}
		return Outcome{State: StateFailed, Symbol: symbol}, err
	}

	pos, _ := o.oracle.OpenPosition(ctx, symbol)

	req, reason, err := hedge.Build(hedge.Input{
		Parent:   &parent,
		Position: pos,
		Symbol:   symbol,
		Kind:     hedge.OCO,
		Target:   target,
		Stop:     stop,
	}, o.params.Hedge)
	if err != nil {
		return Outcome{State: StateFailed, Symbol: symbol}, err
	}
	if reason != "" {
		o.log.Info().Str("symbol", symbol).Str("reason", reason).Msg("oco rejected")
		return Outcome{State: StateRejected, Reason: reason, Symbol: symbol}, nil
	}
	if req.Warning {
		o.log.Warn().Str("symbol", symbol).Int64("hedge_qty", req.Qty).
			Msg("held position differs from parent fill, oco quantity capped")
	}

	ord, err := o.broker.SubmitOCO(ctx, broker.OCOOrderRequest{
		Symbol:        req.Symbol,
		Side:          req.Side,
		Qty:           req.Qty,
		TimeInForce:   broker.TimeInForceGTC,
		TakeProfit:    req.TakeProfit,
		StopLoss:      req.StopLoss,
		ClientOrderID: id.New(),
	})
	if err != nil {
		return Outcome{State: StateFailed, Symbol: symbol}, err
	}

	return Outcome{
		State:        StateDone,
		Symbol:       symbol,
		HedgeOrderID: ord.ID,
		Target:       req.TakeProfit,
		Stop:         req.StopLoss,
		Qty:          req.Qty,
	}, nil
}
