package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rustyeddy/autotrader/broker"
)

// apiPosition is the v2 position wire format.
type apiPosition struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	AvgEntryPrice string `json:"avg_entry_price"`
	MarketValue   string `json:"market_value"`
}

func (p apiPosition) toPosition() (broker.Position, error) {
	qty, err := parseInt(p.Qty)
	if err != nil {
		return broker.Position{}, fmt.Errorf("parse qty: %w", err)
	}
	avg, err := parseFloat(p.AvgEntryPrice)
	if err != nil {
		return broker.Position{}, fmt.Errorf("parse avg_entry_price: %w", err)
	}
	mv, err := parseFloat(p.MarketValue)
	if err != nil {
		return broker.Position{}, fmt.Errorf("parse market_value: %w", err)
	}

	return broker.Position{
		Symbol:        p.Symbol,
		Qty:           qty,
		AvgEntryPrice: avg,
		MarketValue:   mv,
	}, nil
}

// GetPosition returns the open position for symbol. A symbol with no open
// position yields broker.ErrNotFound.
func (c *Client) GetPosition(ctx context.Context, symbol string) (broker.Position, error) {
	var resp apiPosition
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/positions/"+symbol, nil, &resp); err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			return broker.Position{}, err
		}
		return broker.Position{}, fmt.Errorf("get position %s: %w", symbol, err)
	}
	return resp.toPosition()
}

// ListPositions returns all open positions.
func (c *Client) ListPositions(ctx context.Context) ([]broker.Position, error) {
	var resp []apiPosition
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/positions", nil, &resp); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	positions := make([]broker.Position, 0, len(resp))
	for _, ap := range resp {
		p, err := ap.toPosition()
		if err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// GetClock returns the market clock.
func (c *Client) GetClock(ctx context.Context) (broker.Clock, error) {
	var resp struct {
		IsOpen    bool      `json:"is_open"`
		NextOpen  time.Time `json:"next_open"`
		NextClose time.Time `json:"next_close"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/clock", nil, &resp); err != nil {
		return broker.Clock{}, fmt.Errorf("get clock: %w", err)
	}
	return broker.Clock{
		IsOpen:    resp.IsOpen,
		NextOpen:  resp.NextOpen,
		NextClose: resp.NextClose,
	}, nil
}

// LatestBar returns the most recent minute bar for symbol from the data
// API. A symbol with no recent bar yields broker.ErrNotFound.
func (c *Client) LatestBar(ctx context.Context, symbol string) (broker.Bar, error) {
	var resp struct {
		Bar struct {
			Time   time.Time `json:"t"`
			Open   float64   `json:"o"`
			High   float64   `json:"h"`
			Low    float64   `json:"l"`
			Close  float64   `json:"c"`
			Volume float64   `json:"v"`
		} `json:"bar"`
	}
	url := c.dataURL + "/v2/stocks/" + symbol + "/bars/latest"
	if err := c.do(ctx, http.MethodGet, url, nil, &resp); err != nil {
		if errors.Is(err, broker.ErrNotFound) {
			return broker.Bar{}, err
		}
		return broker.Bar{}, fmt.Errorf("latest bar %s: %w", symbol, err)
	}

	return broker.Bar{
		Time:   resp.Bar.Time,
		Open:   resp.Bar.Open,
		High:   resp.Bar.High,
		Low:    resp.Bar.Low,
		Close:  resp.Bar.Close,
		Volume: resp.Bar.Volume,
	}, nil
}
