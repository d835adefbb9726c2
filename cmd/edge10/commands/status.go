package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent persisted run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		run, ok, err := a.store.LatestRun(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "no runs recorded yet")
			return nil
		}

		fmt.Fprintf(out, "run %d\n", run.ID)
		fmt.Fprintf(out, "  requested: %s\n", run.RequestedDate.Format("2006-01-02"))
		fmt.Fprintf(out, "  anchor:    %s (regressed %d)\n", run.AnchorDate.Format("2006-01-02"), run.Regressions)
		fmt.Fprintf(out, "  universe:  %d  survivors: %d  excluded: %d\n",
			run.UniverseSize, run.Survivors, run.Excluded)
		fmt.Fprintf(out, "  created:   %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}
