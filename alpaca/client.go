package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rustyeddy/autotrader/broker"
)

const (
	// PaperURL is the paper-money (test) trading environment.
	PaperURL = "https://paper-api.alpaca.markets"
	// LiveURL is the real-money trading environment.
	LiveURL = "https://api.alpaca.markets"
	// DataURL serves market data for both environments.
	DataURL = "https://data.alpaca.markets"
)

// Client is an Alpaca v2 REST client implementing broker.Broker.
type Client struct {
	baseURL    string
	dataURL    string
	keyID      string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates an Alpaca client. With paper set, orders go to the
// paper-money environment.
func NewClient(keyID, secretKey string, paper bool) *Client {
	baseURL := LiveURL
	if paper {
		baseURL = PaperURL
	}

	return &Client{
		baseURL:   baseURL,
		dataURL:   DataURL,
		keyID:     keyID,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do executes an authenticated request and decodes the JSON response into
// out (when out is non-nil).
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return broker.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseFloat parses Alpaca's string-encoded decimals; empty means zero.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseInt parses Alpaca's string-encoded share counts; empty means zero.
func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	// Fractional share counts are rejected: this system trades whole shares.
	return strconv.ParseInt(s, 10, 64)
}
