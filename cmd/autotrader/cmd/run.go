package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/trade"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one batch of today's trade picks",
	Long: `Fetch the day's trade picks, apply the configured filters, and submit
an order for each pick that passes validation.

Schedule this to run daily before market open. With --my-picks only the
picks curated on the forecast service's autotrader page are considered.

Example:
  autotrader run --config autotrader.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runDate       string
	runMyPicks    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVar(&runDate, "date", "", "pick date YYYY-MM-DD (default today UTC)")
	runCmd.Flags().BoolVar(&runMyPicks, "my-picks", false, "trade only the user-curated pick list")
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := buildStack(runConfigPath)
	if err != nil {
		return err
	}
	defer s.close()

	date := runDate
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	runner := trade.NewRunner(s.picks, s.orch, s.cfg.Filters(), s.cfg.Pacing(), log)

	submitted, err := runner.Run(context.Background(), date, runMyPicks)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	fmt.Printf("Submitted %d order(s)\n", len(submitted))
	for _, sym := range submitted {
		fmt.Printf("  %s\n", sym)
	}
	return nil
}
