package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List open brokerage positions",
	Args:  cobra.NoArgs,
	RunE:  runPositions,
}

var positionsConfigPath string

func init() {
	rootCmd.AddCommand(positionsCmd)

	positionsCmd.Flags().StringVarP(&positionsConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runPositions(cmd *cobra.Command, args []string) error {
	s, err := buildStack(positionsConfigPath)
	if err != nil {
		return err
	}
	defer s.close()

	positions, err := s.broker.ListPositions(context.Background())
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}

	if len(positions) == 0 {
		fmt.Println("No open positions")
		return nil
	}

	for _, p := range positions {
		fmt.Printf("%-6s %6d shares  avg %.2f  value %.2f\n",
			p.Symbol, p.Qty, p.AvgEntryPrice, p.MarketValue)
	}
	return nil
}
