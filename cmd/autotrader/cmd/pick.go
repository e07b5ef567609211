package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick <symbol>",
	Short: "Show the forecast and trade pick for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runPick,
}

var (
	pickConfigPath string
	pickDate       string
)

func init() {
	rootCmd.AddCommand(pickCmd)

	pickCmd.Flags().StringVarP(&pickConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	pickCmd.Flags().StringVar(&pickDate, "date", "", "pick date YYYY-MM-DD (default today UTC)")
}

func runPick(cmd *cobra.Command, args []string) error {
	s, err := buildStack(pickConfigPath)
	if err != nil {
		return err
	}
	defer s.close()

	symbol := args[0]
	date := pickDate
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	ctx := context.Background()

	p, err := s.picks.TradePick(ctx, symbol, date)
	if err != nil {
		return fmt.Errorf("trade pick: %w", err)
	}

	fmt.Printf("Trade pick for %s on %s\n", symbol, date)
	fmt.Println("---------------------------------------")
	fmt.Printf("Action          : %s\n", p.Action)
	fmt.Printf("Entry price     : %.2f\n", p.StartingPrice)
	fmt.Printf("Target price    : %.2f\n", p.TargetSellPrice)
	fmt.Printf("StopLoss price  : %.2f\n", p.TargetStopLossPrice)
	fmt.Printf("Expiration date : %s\n", p.ExpirationDate)
	fmt.Printf("Predicted change: %.2f %%\n", p.ExpectedChangePct()*100)
	fmt.Printf("Avg uncertainty : %.2f\n", p.AvgUncertainty)
	fmt.Printf("Model avg ROI   : %.2f\n", p.AvgROI)
	fmt.Println("---------------------------------------")

	fc, err := s.picks.Forecast(ctx, symbol, date)
	if err != nil {
		log.Debug().Err(err).Msg("forecast unavailable")
		return nil
	}

	fmt.Println("\nForecast:")
	for _, pt := range fc {
		fmt.Printf("  %s  prediction %8.2f  uncertainty %.3f\n",
			pt.Date.Format("2006-01-02"), pt.Prediction, pt.Uncertainty)
	}

	if url, err := s.picks.ModelPerformanceURL(ctx, symbol); err == nil {
		fmt.Printf("\nRecent model performance: %s\n", url)
	}

	return nil
}
