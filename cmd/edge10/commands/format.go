package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/internal/pipeline"
)

func printRunSummary(w io.Writer, res *pipeline.RunResult) {
	fmt.Fprintf(w, "\nRun complete for %s", res.Anchor.Date.Format("2006-01-02"))
	if res.Anchor.Regressions > 0 {
		fmt.Fprintf(w, " (regressed %d day(s))", res.Anchor.Regressions)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  universe: %d  survivors: %d  excluded: %d  duration: %s\n",
		res.UniverseSize, res.Survivors, len(res.Exclusions), res.Duration.Round(time.Millisecond))
	if res.ArtifactDir != "" {
		fmt.Fprintf(w, "  artifacts: %s\n", res.ArtifactDir)
	}
	if res.RunID != 0 {
		fmt.Fprintf(w, "  run id: %d\n", res.RunID)
	}
}

func printCandidates(w io.Writer, title string, cands []contracts.Candidate) {
	if len(cands) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tEPIC\tTICKER\tSCORE\tA_WIN\tB_WIN\tJUSTIFICATION")
	for _, c := range cands {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%.2f\t%.2f\t%s\n",
			c.Rank, c.Instrument.Epic, c.Ticker, c.Score.Composite,
			c.Labels.AWinRate, c.Labels.BWinRate, c.Justification)
	}
	tw.Flush()
}

func printMappings(w io.Writer, mappings []contracts.SymbolMapping) {
	if len(mappings) == 0 {
		fmt.Fprintln(w, "no mappings cached")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EPIC\tTICKER\tCONFIDENCE\tVALIDATED")
	for _, m := range mappings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			m.Epic, m.Ticker, m.Confidence, m.ValidatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
