package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/edge10/backend/internal/contracts"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect the symbol mapping cache",
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached epic-to-ticker mappings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		mappings, err := a.mappings.List(cmd.Context())
		if err != nil {
			return err
		}
		printMappings(cmd.OutOrStdout(), mappings)
		return nil
	},
}

var mappingsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the mapping cache by confidence",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		mappings, err := a.mappings.List(cmd.Context())
		if err != nil {
			return err
		}
		byConfidence := map[contracts.MappingConfidence]int{}
		for _, m := range mappings {
			byConfidence[m.Confidence]++
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "total:   %d\n", len(mappings))
		fmt.Fprintf(out, "exact:   %d\n", byConfidence[contracts.MappingExact])
		fmt.Fprintf(out, "pattern: %d\n", byConfidence[contracts.MappingPattern])
		fmt.Fprintf(out, "manual:  %d\n", byConfidence[contracts.MappingManual])
		return nil
	},
}

var mappingsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Re-validate cached tickers and drop the ones the provider rejects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		mappings, err := a.mappings.List(cmd.Context())
		if err != nil {
			return err
		}
		removed := 0
		for _, m := range mappings {
			_, isEquity, err := a.yahoo.ValidateTicker(cmd.Context(), m.Ticker)
			if err != nil {
				// Transient provider failure, keep the mapping.
				a.log.WithError(err).WithField("ticker", m.Ticker).Warn("Skipping ticker during cleanup")
				continue
			}
			if isEquity {
				continue
			}
			if err := a.mappings.Delete(cmd.Context(), m.Epic); err != nil {
				return err
			}
			removed++
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d invalid mappings\n", removed)
		return nil
	},
}

var mappingsDeleteCmd = &cobra.Command{
	Use:   "delete <epic>",
	Short: "Drop a cached mapping so it re-resolves next run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.mappings.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted mapping for %s\n", args[0])
		return nil
	},
}

func init() {
	mappingsCmd.AddCommand(mappingsListCmd)
	mappingsCmd.AddCommand(mappingsStatsCmd)
	mappingsCmd.AddCommand(mappingsCleanupCmd)
	mappingsCmd.AddCommand(mappingsDeleteCmd)
}
