package broker

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is reported by implementations when the brokerage has no
// record of the requested order, position or bar.
var ErrNotFound = errors.New("broker: not found")

// Broker is the brokerage capability this system consumes. Implementations
// translate wire formats only; no trading rules live behind this interface.
type Broker interface {
	SubmitMarket(ctx context.Context, req MarketOrderRequest) (Order, error)
	SubmitBracket(ctx context.Context, req BracketOrderRequest) (Order, error)
	SubmitOCO(ctx context.Context, req OCOOrderRequest) (Order, error)
	SubmitTrailingStop(ctx context.Context, req TrailingStopOrderRequest) (Order, error)

	GetOrder(ctx context.Context, orderID string) (Order, error)
	CancelOrder(ctx context.Context, orderID string) error

	GetPosition(ctx context.Context, symbol string) (Position, error)
	ListPositions(ctx context.Context) ([]Position, error)
	ListClosedOrders(ctx context.Context, since time.Time, limit int) ([]Order, error)

	GetClock(ctx context.Context) (Clock, error)
	LatestBar(ctx context.Context, symbol string) (Bar, error)
}

// Order is a read-only snapshot of a brokerage order. It is never mutated
// locally; current truth is always re-read from the broker.
type Order struct {
	ID             string
	ClientOrderID  string
	Symbol         string
	Side           Side
	Qty            int64
	FilledQty      int64
	FilledAvgPrice float64
	Status         OrderStatus
	CreatedAt      time.Time
	FilledAt       time.Time
}

// Filled reports whether the order is fully filled.
func (o Order) Filled() bool {
	return o.Status == StatusFilled
}

// Position is the currently held position for a symbol. Qty is signed:
// negative for shorts.
type Position struct {
	Symbol        string
	Qty           int64
	AvgEntryPrice float64
	MarketValue   float64
}

// Clock reports whether the market is open.
type Clock struct {
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// Bar is a single trade bar; Close is the most recent traded price.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MarketOrderRequest is a plain entry order with no protective legs.
type MarketOrderRequest struct {
	Symbol        string
	Side          Side
	Qty           int64
	TimeInForce   string
	ClientOrderID string
}

// BracketOrderRequest is an entry order submitted atomically with a fixed
// take-profit and a fixed stop-loss leg.
type BracketOrderRequest struct {
	Symbol        string
	Side          Side
	Qty           int64
	TimeInForce   string
	TakeProfit    float64
	StopLoss      float64
	ClientOrderID string
}

// OCOOrderRequest is a one-cancels-other exit pair retrofitted onto an
// already-filled position: filling either leg cancels the other.
type OCOOrderRequest struct {
	Symbol        string
	Side          Side
	Qty           int64
	TimeInForce   string
	TakeProfit    float64
	StopLoss      float64
	ClientOrderID string
}

// TrailingStopOrderRequest is a single-sided stop whose trigger follows
// favorable price motion by TrailPercent.
type TrailingStopOrderRequest struct {
	Symbol        string
	Side          Side
	Qty           int64
	TimeInForce   string
	TrailPercent  float64
	ClientOrderID string
}
