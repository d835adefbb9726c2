package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/edge10/backend/internal/pipeline"
)

var (
	scanDate        string
	scanSkipEnrich  bool
	scanSkipPersist bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the scoring pipeline once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		requested := time.Now().UTC()
		if scanDate != "" {
			requested, err = time.Parse("2006-01-02", scanDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", scanDate)
			}
		}

		res, err := a.pipe.Run(ctx, pipeline.RunConfig{
			RequestedDate: requested,
			SkipEnrich:    scanSkipEnrich,
			SkipPersist:   scanSkipPersist,
		})
		if err != nil {
			return err
		}

		printRunSummary(cmd.OutOrStdout(), res)
		printCandidates(cmd.OutOrStdout(), "TOP CANDIDATES", res.Top)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanDate, "date", "", "evaluation date (YYYY-MM-DD, default today)")
	scanCmd.Flags().BoolVar(&scanSkipEnrich, "skip-enrich", false, "skip earnings/market enrichment lookups")
	scanCmd.Flags().BoolVar(&scanSkipPersist, "skip-persist", false, "skip writing the run to the database")
}
