package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/autotrader/broker"
	"github.com/rustyeddy/autotrader/pick"
)

// Credential environment variables. Secrets stay out of config files.
const (
	EnvAlpacaKeyID     = "ALPACA_API_KEY_ID"
	EnvAlpacaSecretKey = "ALPACA_API_SECRET_KEY"
	EnvPredictoSession = "PREDICTO_SESSION_ID"
)

// Config is the complete autotrader configuration.
type Config struct {
	Alpaca   AlpacaConfig   `json:"alpaca" yaml:"alpaca"`
	Predicto PredictoConfig `json:"predicto" yaml:"predicto"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AlpacaConfig selects the brokerage environment.
type AlpacaConfig struct {
	// Paper routes orders to the paper-money environment.
	Paper bool `json:"paper" yaml:"paper"`
}

// PredictoConfig points at the forecast service.
type PredictoConfig struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// TradingConfig holds the batch filters and per-trade parameters.
type TradingConfig struct {
	InvestmentPerTrade float64 `json:"investment_per_trade" yaml:"investment_per_trade"`
	// OrderType is "market", "bracket" or "trailing_stop".
	OrderType string `json:"order_type" yaml:"order_type"`
	// StopLossPct, when set, overrides the pick's stop with a fixed
	// percentage from the pick's entry (0.05 = 5%).
	StopLossPct float64 `json:"stop_loss_pct,omitempty" yaml:"stop_loss_pct,omitempty"`

	AbsChangePctThreshold float64 `json:"abs_change_pct_threshold" yaml:"abs_change_pct_threshold"`
	// Actions is the allowed action set: "buy", "sell".
	Actions           []string `json:"actions" yaml:"actions"`
	MaxAvgUncertainty float64  `json:"max_avg_uncertainty" yaml:"max_avg_uncertainty"`
	MinModelROI       float64  `json:"min_model_roi" yaml:"min_model_roi"`
	// Symbols restricts the batch to an allowlist; empty means all.
	Symbols []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`

	// PacingSeconds is the delay between symbols in a batch.
	PacingSeconds int `json:"pacing_seconds,omitempty" yaml:"pacing_seconds,omitempty"`
}

// JournalConfig locates the submission journal.
type JournalConfig struct {
	// Path of the sqlite database; empty disables journaling.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML first, JSON
// fallback) and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Trading.InvestmentPerTrade <= 0 {
		return fmt.Errorf("trading.investment_per_trade must be positive")
	}
	if !broker.OrderType(c.Trading.OrderType).Valid() {
		return fmt.Errorf("trading.order_type must be market, bracket or trailing_stop")
	}
	if c.Trading.StopLossPct < 0 || c.Trading.StopLossPct >= 1 {
		return fmt.Errorf("trading.stop_loss_pct must be in [0, 1)")
	}
	if c.Trading.AbsChangePctThreshold < 0 {
		return fmt.Errorf("trading.abs_change_pct_threshold must not be negative")
	}
	if len(c.Trading.Actions) == 0 {
		return fmt.Errorf("trading.actions must not be empty")
	}
	for _, a := range c.Trading.Actions {
		if _, err := parseAction(a); err != nil {
			return err
		}
	}
	if c.Trading.MaxAvgUncertainty <= 0 {
		return fmt.Errorf("trading.max_avg_uncertainty must be positive")
	}
	if c.Trading.PacingSeconds < 0 {
		return fmt.Errorf("trading.pacing_seconds must not be negative")
	}
	return nil
}

func parseAction(s string) (pick.TradeAction, error) {
	switch strings.ToLower(s) {
	case "buy":
		return pick.Buy, nil
	case "sell":
		return pick.Sell, nil
	}
	return pick.NoAction, fmt.Errorf("unknown trade action %q", s)
}

// Filters converts the trading section into pick filters.
func (c *Config) Filters() pick.Filters {
	actions := make([]pick.TradeAction, 0, len(c.Trading.Actions))
	for _, a := range c.Trading.Actions {
		if act, err := parseAction(a); err == nil {
			actions = append(actions, act)
		}
	}

	var symbols []string
	if len(c.Trading.Symbols) > 0 {
		symbols = c.Trading.Symbols
	}

	return pick.Filters{
		AbsChangePct:      c.Trading.AbsChangePctThreshold,
		Actions:           actions,
		MaxAvgUncertainty: c.Trading.MaxAvgUncertainty,
		MinModelROI:       c.Trading.MinModelROI,
		Symbols:           symbols,
	}
}

// OrderType returns the configured order type.
func (c *Config) OrderType() broker.OrderType {
	return broker.OrderType(c.Trading.OrderType)
}

// Pacing returns the inter-symbol batch delay.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.Trading.PacingSeconds) * time.Second
}

// Credentials reads the brokerage and forecast-service secrets from the
// environment.
func Credentials() (alpacaKeyID, alpacaSecret, predictoSession string, err error) {
	alpacaKeyID = os.Getenv(EnvAlpacaKeyID)
	alpacaSecret = os.Getenv(EnvAlpacaSecretKey)
	predictoSession = os.Getenv(EnvPredictoSession)

	if alpacaKeyID == "" || alpacaSecret == "" {
		return "", "", "", fmt.Errorf("%s and %s must be set", EnvAlpacaKeyID, EnvAlpacaSecretKey)
	}
	if predictoSession == "" {
		return "", "", "", fmt.Errorf("%s must be set", EnvPredictoSession)
	}
	return alpacaKeyID, alpacaSecret, predictoSession, nil
}

// Default returns a configuration with the documented autotrader
// defaults: $1000 per trade, bracket orders, 2% minimum move, buy and
// sell, 15% max uncertainty, non-negative model ROI, paper trading.
func Default() *Config {
	return &Config{
		Alpaca: AlpacaConfig{Paper: true},
		Trading: TradingConfig{
			InvestmentPerTrade:    1000,
			OrderType:             string(broker.TypeBracket),
			AbsChangePctThreshold: 0.02,
			Actions:               []string{"buy", "sell"},
			MaxAvgUncertainty:     0.15,
			MinModelROI:           0.0,
			PacingSeconds:         2,
		},
		Journal: JournalConfig{Path: "./autotrader.db"},
	}
}
