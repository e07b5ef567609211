package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/autotrader/broker"
)

// apiOrder is the v2 order wire format. Quantities and prices are
// string-encoded decimals.
type apiOrder struct {
	ID             string     `json:"id"`
	ClientOrderID  string     `json:"client_order_id"`
	Symbol         string     `json:"symbol"`
	Side           string     `json:"side"`
	Qty            string     `json:"qty"`
	FilledQty      string     `json:"filled_qty"`
	FilledAvgPrice string     `json:"filled_avg_price"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	FilledAt       *time.Time `json:"filled_at"`
}

func (o apiOrder) toOrder() (broker.Order, error) {
	qty, err := parseInt(o.Qty)
	if err != nil {
		return broker.Order{}, fmt.Errorf("parse qty: %w", err)
	}
	filledQty, err := parseInt(o.FilledQty)
	if err != nil {
		return broker.Order{}, fmt.Errorf("parse filled_qty: %w", err)
	}
	filledAvg, err := parseFloat(o.FilledAvgPrice)
	if err != nil {
		return broker.Order{}, fmt.Errorf("parse filled_avg_price: %w", err)
	}

	out := broker.Order{
		ID:             o.ID,
		ClientOrderID:  o.ClientOrderID,
		Symbol:         o.Symbol,
		Side:           broker.Side(o.Side),
		Qty:            qty,
		FilledQty:      filledQty,
		FilledAvgPrice: filledAvg,
		Status:         broker.OrderStatus(o.Status),
		CreatedAt:      o.CreatedAt,
	}
	if o.FilledAt != nil {
		out.FilledAt = *o.FilledAt
	}
	return out, nil
}

// priceLeg is the take_profit / stop_loss sub-object on v2 order bodies.
type priceLeg struct {
	LimitPrice string `json:"limit_price,omitempty"`
	StopPrice  string `json:"stop_price,omitempty"`
}

// orderBody is the v2 order creation payload.
type orderBody struct {
	Symbol        string    `json:"symbol"`
	Qty           string    `json:"qty"`
	Side          string    `json:"side"`
	Type          string    `json:"type"`
	TimeInForce   string    `json:"time_in_force"`
	OrderClass    string    `json:"order_class,omitempty"`
	TakeProfit    *priceLeg `json:"take_profit,omitempty"`
	StopLoss      *priceLeg `json:"stop_loss,omitempty"`
	TrailPercent  string    `json:"trail_percent,omitempty"`
	ClientOrderID string    `json:"client_order_id,omitempty"`
}

func (c *Client) submitOrder(ctx context.Context, body orderBody) (broker.Order, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return broker.Order{}, fmt.Errorf("marshal order: %w", err)
	}

	var resp apiOrder
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/v2/orders", bytes.NewReader(payload), &resp); err != nil {
		return broker.Order{}, fmt.Errorf("submit order: %w", err)
	}
	return resp.toOrder()
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// SubmitMarket places a plain market order.
func (c *Client) SubmitMarket(ctx context.Context, req broker.MarketOrderRequest) (broker.Order, error) {
	return c.submitOrder(ctx, orderBody{
		Symbol:        req.Symbol,
		Qty:           strconv.FormatInt(req.Qty, 10),
		Side:          string(req.Side),
		Type:          "market",
		TimeInForce:   req.TimeInForce,
		ClientOrderID: req.ClientOrderID,
	})
}

// SubmitBracket places a market entry with attached take-profit and
// stop-loss legs, atomically.
func (c *Client) SubmitBracket(ctx context.Context, req broker.BracketOrderRequest) (broker.Order, error) {
	return c.submitOrder(ctx, orderBody{
		Symbol:        req.Symbol,
		Qty:           strconv.FormatInt(req.Qty, 10),
		Side:          string(req.Side),
		Type:          "market",
		TimeInForce:   req.TimeInForce,
		OrderClass:    "bracket",
		TakeProfit:    &priceLeg{LimitPrice: formatPrice(req.TakeProfit)},
		StopLoss:      &priceLeg{StopPrice: formatPrice(req.StopLoss)},
		ClientOrderID: req.ClientOrderID,
	})
}

// SubmitOCO places a one-cancels-other exit pair against an open position.
func (c *Client) SubmitOCO(ctx context.Context, req broker.OCOOrderRequest) (broker.Order, error) {
	return c.submitOrder(ctx, orderBody{
		Symbol:        req.Symbol,
		Qty:           strconv.FormatInt(req.Qty, 10),
		Side:          string(req.Side),
		Type:          "limit",
		TimeInForce:   req.TimeInForce,
		OrderClass:    "oco",
		TakeProfit:    &priceLeg{LimitPrice: formatPrice(req.TakeProfit)},
		StopLoss:      &priceLeg{StopPrice: formatPrice(req.StopLoss)},
		ClientOrderID: req.ClientOrderID,
	})
}

// SubmitTrailingStop places a trailing-stop order.
func (c *Client) SubmitTrailingStop(ctx context.Context, req broker.TrailingStopOrderRequest) (broker.Order, error) {
	return c.submitOrder(ctx, orderBody{
		Symbol:        req.Symbol,
		Qty:           strconv.FormatInt(req.Qty, 10),
		Side:          string(req.Side),
		Type:          "trailing_stop",
		TimeInForce:   req.TimeInForce,
		TrailPercent:  formatPrice(req.TrailPercent),
		ClientOrderID: req.ClientOrderID,
	})
}

// GetOrder fetches a single order by brokerage id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (broker.Order, error) {
	var resp apiOrder
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/orders/"+orderID, nil, &resp); err != nil {
		return broker.Order{}, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return resp.toOrder()
}

// CancelOrder cancels a working order by brokerage id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.do(ctx, http.MethodDelete, c.baseURL+"/v2/orders/"+orderID, nil, nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

// ListClosedOrders returns closed orders created after since, newest
// first, capped at limit.
func (c *Client) ListClosedOrders(ctx context.Context, since time.Time, limit int) ([]broker.Order, error) {
	params := url.Values{}
	params.Set("status", "closed")
	params.Set("after", since.UTC().Format(time.RFC3339))
	params.Set("direction", "desc")
	params.Set("limit", strconv.Itoa(limit))

	var resp []apiOrder
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/v2/orders?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("list closed orders: %w", err)
	}

	orders := make([]broker.Order, 0, len(resp))
	for _, ao := range resp {
		o, err := ao.toOrder()
		if err != nil {
			return nil, fmt.Errorf("list closed orders: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}
