package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autotrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the submission journal",
	Long: `Query and display submission records from the sqlite journal.

Examples:
  autotrader journal recent
  autotrader journal symbol AAPL`,
}

var journalRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent submission decisions",
	Args:  cobra.NoArgs,
	RunE:  runJournalRecent,
}

var journalSymbolCmd = &cobra.Command{
	Use:   "symbol <symbol>",
	Short: "List submission decisions for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalSymbol,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRecentCmd)
	journalCmd.AddCommand(journalSymbolCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./autotrader.db", "path to sqlite journal DB")
	journalRecentCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of records")
}

func runJournalRecent(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.Recent(journalLimit)
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}

	printRecords(recs)
	return nil
}

func runJournalSymbol(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.BySymbol(args[0])
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}

	printRecords(recs)
	return nil
}

func printRecords(recs []journal.Record) {
	if len(recs) == 0 {
		fmt.Println("No records")
		return
	}
	for _, r := range recs {
		line := fmt.Sprintf("%s  %-6s %-4s %-13s %-8s",
			r.Time.Format("2006-01-02 15:04:05"), r.Symbol, r.Action, r.OrderType, r.State)
		if r.Reason != "" {
			line += "  " + r.Reason
		}
		if r.State == "done" {
			line += fmt.Sprintf("  qty %d entry %.2f target %.2f stop %.2f",
				r.Qty, r.Entry, r.Target, r.Stop)
		}
		fmt.Println(line)
	}
}
