package trade

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/pick"
)

// PickSource yields trade picks for a run. *pick.Client satisfies it.
type PickSource interface {
	SupportedSymbols(ctx context.Context) ([]string, error)
	TradePick(ctx context.Context, symbol, date string) (pick.TradePick, error)
	MyPicks(ctx context.Context, date string) ([]pick.TradePick, error)
}

// Runner drives one batch: fetch candidate picks, filter, and submit one
// symbol at a time with isolated failure handling. A symbol's failure is
// logged and the batch moves on; there is no batch-wide abort.
type Runner struct {
	source  PickSource
	orch    *Orchestrator
	filters pick.Filters
	// pacing is the fixed delay between symbols, respecting the external
	// services' rate limits.
	pacing time.Duration
	log    zerolog.Logger

	sleep func(context.Context, time.Duration) error
}

// NewRunner wires a batch runner.
func NewRunner(source PickSource, orch *Orchestrator, filters pick.Filters, pacing time.Duration, log zerolog.Logger) *Runner {
	return &Runner{
		source:  source,
		orch:    orch,
		filters: filters,
		pacing:  pacing,
		log:     log,
		sleep:   sleepCtx,
	}
}

// Run executes one batch for date (YYYY-MM-DD). With myPicks set the
// user-curated pick list is used instead of scanning all supported
// symbols. Returns the symbols for which an order was actually submitted.
func (r *Runner) Run(ctx context.Context, date string, myPicks bool) ([]string, error) {
	picks, err := r.collect(ctx, date, myPicks)
	if err != nil {
		return nil, err
	}

	var submitted []string
	for i, p := range picks {
		if i > 0 && r.pacing > 0 {
			if err := r.sleep(ctx, r.pacing); err != nil {
				return submitted, err
			}
		}

		log := r.log.With().Str("symbol", p.Symbol).Logger()

		ok, reason := r.filters.Match(p)
		if !ok {
			log.Debug().Str("filter", reason).Msg("pick filtered out")
			continue
		}

		outcome, err := r.orch.Submit(ctx, p)
		if err != nil {
			log.Error().Err(err).Msg("trade attempt failed")
			continue
		}
		if outcome.State != StateDone {
			log.Info().Str("state", string(outcome.State)).Str("reason", outcome.Reason).Msg("trade not submitted")
			continue
		}

		submitted = append(submitted, p.Symbol)
	}

	r.log.Info().
		Int("considered", len(picks)).
		Int("submitted", len(submitted)).
		Strs("symbols", submitted).
		Msg("batch complete")

	return submitted, nil
}

func (r *Runner) collect(ctx context.Context, date string, myPicks bool) ([]pick.TradePick, error) {
	if myPicks {
		return r.source.MyPicks(ctx, date)
	}

	symbols, err := r.source.SupportedSymbols(ctx)
	if err != nil {
		return nil, err
	}

	picks := make([]pick.TradePick, 0, len(symbols))
	for _, sym := range symbols {
		p, err := r.source.TradePick(ctx, sym, date)
		if err != nil {
			// A missing pick for one symbol must not sink the batch.
			r.log.Debug().Err(err).Str("symbol", sym).Msg("no pick")
			continue
		}
		picks = append(picks, p)
	}
	return picks, nil
}
