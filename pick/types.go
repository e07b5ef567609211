package pick

import "time"

// TradeAction is the direction a trade pick recommends. Wire values match
// the forecast service JSON (0, 1, 2).
type TradeAction int

const (
	NoAction TradeAction = 0
	Buy      TradeAction = 1
	Sell     TradeAction = 2
)

// Valid reports whether a is a known action.
func (a TradeAction) Valid() bool {
	switch a {
	case NoAction, Buy, Sell:
		return true
	}
	return false
}

func (a TradeAction) String() string {
	switch a {
	case NoAction:
		return "no_action"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// TradePick is an externally generated trade recommendation. Read-only
// input: picks are fetched fresh per run and never persisted.
type TradePick struct {
	Symbol              string      `json:"Ticker"`
	Action              TradeAction `json:"TradeAction"`
	StartingPrice       float64     `json:"StartingPrice"`
	TargetSellPrice     float64     `json:"TargetSellPrice"`
	TargetStopLossPrice float64     `json:"TargetStopLossPrice"`
	AvgUncertainty      float64     `json:"AverageUncertainty"`
	AvgROI              float64     `json:"ModelAvgROI"`
	Date                string      `json:"Date"`
	ExpirationDate      string      `json:"ExpirationDate"`
}

// ExpectedChangePct is the predicted move from entry to target, signed.
func (p TradePick) ExpectedChangePct() float64 {
	if p.StartingPrice == 0 {
		return 0
	}
	return (p.TargetSellPrice - p.StartingPrice) / p.StartingPrice
}

// ForecastPoint is one day of a model forecast.
type ForecastPoint struct {
	Date        time.Time
	Prediction  float64
	Uncertainty float64
}

// Forecast is a model forecast, ordered by date ascending.
type Forecast []ForecastPoint
