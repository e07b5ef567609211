package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autotrader",
	Short: "Forecast-driven stock autotrader",
	Long: `Autotrader polls a forecasting service for daily trade picks and,
when picks pass the configured risk filters, submits hedged orders
(entry + stop-loss + take-profit) to the brokerage.

Credentials are read from the environment:
  ALPACA_API_KEY_ID, ALPACA_API_SECRET_KEY, PREDICTO_SESSION_ID`,
}

var (
	debug bool
	log   zerolog.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogger)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initLogger() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	log = zerolog.New(output).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
