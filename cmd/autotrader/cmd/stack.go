package cmd

import (
	"fmt"

	"github.com/rustyeddy/autotrader/alpaca"
	"github.com/rustyeddy/autotrader/config"
	"github.com/rustyeddy/autotrader/journal"
	"github.com/rustyeddy/autotrader/oracle"
	"github.com/rustyeddy/autotrader/pick"
	"github.com/rustyeddy/autotrader/trade"
)

// stack is the wired component set shared by the commands.
type stack struct {
	cfg    *config.Config
	picks  *pick.Client
	broker *alpaca.Client
	oracle *oracle.Oracle
	orch   *trade.Orchestrator
	jrnl   journal.Journal
}

func buildStack(configPath string) (*stack, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	keyID, secret, session, err := config.Credentials()
	if err != nil {
		return nil, err
	}

	var jrnl journal.Journal = journal.Nop{}
	if cfg.Journal.Path != "" {
		jrnl, err = journal.NewSQLite(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
	}

	bk := alpaca.NewClient(keyID, secret, cfg.Alpaca.Paper)
	orc := oracle.New(bk, log)

	params := trade.DefaultParams()
	params.InvestmentPerTrade = cfg.Trading.InvestmentPerTrade
	params.OrderType = cfg.OrderType()
	params.StopLossPctOverride = cfg.Trading.StopLossPct

	return &stack{
		cfg:    cfg,
		picks:  pick.NewClient(cfg.Predicto.BaseURL, session),
		broker: bk,
		oracle: orc,
		orch:   trade.NewOrchestrator(bk, orc, jrnl, params, log),
		jrnl:   jrnl,
	}, nil
}

func (s *stack) close() {
	if s.jrnl != nil {
		_ = s.jrnl.Close()
	}
}
