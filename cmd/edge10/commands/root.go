// Package commands implements the edge10 CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edge10",
	Short: "Universe scoring pipeline",
	Long: `edge10 scores a US equity universe for a given session: it maps
broker instruments to market data tickers, acquires daily history,
derives leak-free features, labels historical outcomes and emits a
ranked candidate list with a full exclusion ledger.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(mappingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
}
