package pick

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultBaseURL is the production forecast service endpoint.
const DefaultBaseURL = "https://predic.to"

// Client talks to the forecast service. Every request carries the static
// session credential; every failure surfaces as a wrapped "lookup" error,
// the caller does not get a typed taxonomy at this layer.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
}

// NewClient creates a forecast service client authenticated by sessionID.
func NewClient(baseURL, sessionID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		sessionID: sessionID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cookie", "session="+c.sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SupportedSymbols returns the tickers the forecast service covers.
func (c *Client) SupportedSymbols(ctx context.Context) ([]string, error) {
	var rows []struct {
		Ticker string `json:"Ticker"`
	}
	if err := c.get(ctx, "/stocks/all", &rows); err != nil {
		return nil, fmt.Errorf("supported symbols lookup: %w", err)
	}

	symbols := make([]string, 0, len(rows))
	for _, r := range rows {
		symbols = append(symbols, r.Ticker)
	}
	return symbols, nil
}

// TradePick returns the generated trade pick for symbol on date
// (YYYY-MM-DD), derived from that date's forecast.
func (c *Client) TradePick(ctx context.Context, symbol, date string) (TradePick, error) {
	var resp struct {
		Recommendations []TradePick `json:"Recommendations"`
	}
	path := fmt.Sprintf("/api/forecasting/tradepicks/%s/%s/_,0.0,0", symbol, date)
	if err := c.get(ctx, path, &resp); err != nil {
		return TradePick{}, fmt.Errorf("trade pick lookup %s: %w", symbol, err)
	}
	if len(resp.Recommendations) == 0 {
		return TradePick{}, fmt.Errorf("trade pick lookup %s: no recommendation for %s", symbol, date)
	}

	p := resp.Recommendations[0]
	if p.Symbol == "" {
		p.Symbol = symbol
	}
	return p, nil
}

// MyPicks returns the user-curated pick subset for date (YYYY-MM-DD), as
// selected on the forecast service's autotrader page.
func (c *Client) MyPicks(ctx context.Context, date string) ([]TradePick, error) {
	var resp struct {
		Recommendations []TradePick `json:"Recommendations"`
	}
	if err := c.get(ctx, "/api/forecasting/mypicks/"+date, &resp); err != nil {
		return nil, fmt.Errorf("my picks lookup: %w", err)
	}
	return resp.Recommendations, nil
}

// Forecast returns the model forecast for symbol on date (YYYY-MM-DD).
//
// The service nests the forecast as an index-oriented JSON document inside
// the response, keyed by date.
func (c *Client) Forecast(ctx context.Context, symbol, date string) (Forecast, error) {
	var rows []struct {
		PredictionsJson string `json:"PredictionsJson"`
	}
	path := fmt.Sprintf("/api/forecasting/%s/%s/-1", symbol, date)
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("forecast lookup %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("forecast lookup %s: no forecast for %s", symbol, date)
	}

	var points map[string]struct {
		Prediction  float64 `json:"Prediction"`
		Uncertainty float64 `json:"Uncertainty"`
	}
	if err := json.Unmarshal([]byte(rows[0].PredictionsJson), &points); err != nil {
		return nil, fmt.Errorf("forecast lookup %s: parse predictions: %w", symbol, err)
	}

	fc := make(Forecast, 0, len(points))
	for k, v := range points {
		// Keys are timestamps like "2026-09-01T00:00:00"; only the date
		// part matters.
		day, _, _ := strings.Cut(k, "T")
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("forecast lookup %s: parse date %s: %w", symbol, k, err)
		}
		fc = append(fc, ForecastPoint{Date: t, Prediction: v.Prediction, Uncertainty: v.Uncertainty})
	}
	sort.Slice(fc, func(i, j int) bool { return fc[i].Date.Before(fc[j].Date) })

	return fc, nil
}

// ModelPerformanceURL returns the recent-performance graph URL for symbol.
func (c *Client) ModelPerformanceURL(ctx context.Context, symbol string) (string, error) {
	var rows []struct {
		ForecastModelGifBlobUrl string `json:"ForecastModelGifBlobUrl"`
	}
	if err := c.get(ctx, "/api/history/blobs/"+symbol, &rows); err != nil {
		return "", fmt.Errorf("performance graph lookup %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("performance graph lookup %s: no blobs", symbol)
	}

	// Strip the SAS query string; the blob itself is public.
	url, _, _ := strings.Cut(rows[0].ForecastModelGifBlobUrl, "?")
	return url, nil
}
