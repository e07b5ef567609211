package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/trade"
)

var attachCmd = &cobra.Command{
	Use:   "attach <parent-order-id> <symbol>",
	Short: "Retrofit a protective OCO pair onto a filled market order",
	Long: `Attach a one-cancels-other take-profit/stop-loss pair to an
already-filled market order. The parent order must exist, match the
symbol, and be fully filled; the pair is sized to the held position.

Example:
  autotrader attach 904837e3-3b76-47ec-b432-046db621571b AAPL --target 142.50 --stop 131.00`,
	Args: cobra.ExactArgs(2),
	RunE: runAttach,
}

var (
	attachConfigPath string
	attachTarget     float64
	attachStop       float64
)

func init() {
	rootCmd.AddCommand(attachCmd)

	attachCmd.Flags().StringVarP(&attachConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	attachCmd.Flags().Float64Var(&attachTarget, "target", 0, "take-profit price (required)")
	attachCmd.Flags().Float64Var(&attachStop, "stop", 0, "stop-loss price (required)")
	attachCmd.MarkFlagRequired("target")
	attachCmd.MarkFlagRequired("stop")
}

func runAttach(cmd *cobra.Command, args []string) error {
	s, err := buildStack(attachConfigPath)
	if err != nil {
		return err
	}
	defer s.close()

	outcome, err := s.orch.AttachOCO(context.Background(), args[0], args[1], attachTarget, attachStop)
	if err != nil {
		return fmt.Errorf("attach oco: %w", err)
	}

	switch outcome.State {
	case trade.StateDone:
		fmt.Printf("OCO attached: order %s, %d shares, target %.2f stop %.2f\n",
			outcome.HedgeOrderID, outcome.Qty, outcome.Target, outcome.Stop)
	default:
		fmt.Printf("OCO not attached: %s\n", outcome.Reason)
	}
	return nil
}
