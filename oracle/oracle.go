// Package oracle is a thin read-only view over the brokerage: latest
// trade price, open position, filled-order history and order lookup.
// It never mutates brokerage state.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/autotrader/broker"
)

var (
	// ErrPriceUnavailable means no recent bar exists for the symbol.
	ErrPriceUnavailable = errors.New("oracle: price unavailable")
	// ErrOrderNotFound means the brokerage has no order with the given id.
	ErrOrderNotFound = errors.New("oracle: order not found")
)

// maxClosedOrdersPage bounds the closed-order history page.
const maxClosedOrdersPage = 500

// Oracle reads market and account state from a Broker.
type Oracle struct {
	broker broker.Broker
	log    zerolog.Logger
}

// New creates an Oracle over b.
func New(b broker.Broker, log zerolog.Logger) *Oracle {
	return &Oracle{broker: b, log: log}
}

// LatestPrice returns the most recent trade price for symbol.
func (o *Oracle) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	bar, err := o.broker.LatestBar(ctx, symbol)
	if err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
		}
		return 0, fmt.Errorf("latest price %s: %w", symbol, err)
	}
	if bar.Close <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, symbol)
	}
	return bar.Close, nil
}

// OpenPosition returns the currently held position for symbol, or nil if
// none is held.
//
// Lookup failures other than not-found also collapse to nil: the
// brokerage API reports "no position" as an error, and the original
// guard semantics treat the two alike. The swallowed error is logged so
// a transient outage weakening the already-holding guard is visible.
func (o *Oracle) OpenPosition(ctx context.Context, symbol string) (*broker.Position, error) {
	pos, err := o.broker.GetPosition(ctx, symbol)
	if err != nil {
		if !errors.Is(err, broker.ErrNotFound) {
			o.log.Debug().Err(err).Str("symbol", symbol).Msg("position lookup failed, treating as no position")
		}
		return nil, nil
	}
	return &pos, nil
}

// FilledOrdersSince returns filled orders for symbol since the given
// time, most recent first, capped at one history page.
func (o *Oracle) FilledOrdersSince(ctx context.Context, symbol string, since time.Time) ([]broker.Order, error) {
	orders, err := o.broker.ListClosedOrders(ctx, since, maxClosedOrdersPage)
	if err != nil {
		return nil, fmt.Errorf("filled orders %s: %w", symbol, err)
	}

	filled := make([]broker.Order, 0, len(orders))
	for _, ord := range orders {
		if ord.Symbol == symbol && ord.Status == broker.StatusFilled {
			filled = append(filled, ord)
		}
	}
	return filled, nil
}

// OrderByID returns the order with the given brokerage id.
func (o *Oracle) OrderByID(ctx context.Context, orderID string) (broker.Order, error) {
	ord, err := o.broker.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			return broker.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return broker.Order{}, fmt.Errorf("order %s: %w", orderID, err)
	}
	return ord, nil
}
