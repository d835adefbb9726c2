// Package artifacts renders run outputs: the CSV files consumed by
// downstream order tooling and the Postgres run history consumed by
// the API.
package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// File names of a run's CSV artifacts.
const (
	FullUniverseFile = "full_universe_features.csv"
	Top100File       = "top_100.csv"
	Top10File        = "top_10.csv"
	ExcludedFile     = "excluded.csv"
)

var candidateHeader = []string{
	"Rank", "Epic", "Ticker", "Name", "Sector", "Date",
	"Open", "High", "Low", "Close", "AdjClose", "Volume",
	"RelVol10", "MA20", "MA50", "ATR14", "ATRfrac", "Trend20", "Trend50",
	"DayReturnPct", "SpreadPct",
	"A_WINRATE", "A_LOSERATE", "A_AMBIGRATE", "B_WINRATE",
	"SampleSizeA", "SampleSizeB", "EarningsFlag", "NewsFlag",
	"Score", "DayStrengthScore", "RelVolScore", "CatalystScore", "MarketScore", "VolFitScore",
	"Justification",
}

// CSVWriter writes one run's artifacts into a date-stamped directory
// under the configured output root.
type CSVWriter struct {
	outDir string
	log    *logger.Logger
}

func NewCSVWriter(outDir string, log *logger.Logger) *CSVWriter {
	return &CSVWriter{outDir: outDir, log: log.WithField("component", "artifacts")}
}

// WriteRun emits the four CSV files and returns the run directory.
func (w *CSVWriter) WriteRun(anchor contracts.AnchorDate, ranked, broad, top []contracts.Candidate, exclusions []contracts.ExclusionRecord) (string, error) {
	dir := filepath.Join(w.outDir, anchor.Date.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}

	files := []struct {
		name  string
		cands []contracts.Candidate
	}{
		{FullUniverseFile, ranked},
		{Top100File, broad},
		{Top10File, top},
	}
	for _, f := range files {
		if err := w.writeCandidates(filepath.Join(dir, f.name), f.cands); err != nil {
			return "", err
		}
	}
	if err := w.writeExclusions(filepath.Join(dir, ExcludedFile), exclusions); err != nil {
		return "", err
	}

	w.log.WithFields(map[string]interface{}{
		"dir":        dir,
		"ranked":     len(ranked),
		"exclusions": len(exclusions),
	}).Info("Wrote run artifacts")
	return dir, nil
}

func (w *CSVWriter) writeCandidates(path string, cands []contracts.Candidate) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(candidateHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range cands {
		if err := cw.Write(candidateRecord(c)); err != nil {
			return fmt.Errorf("write candidate %s: %w", c.Instrument.Epic, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *CSVWriter) writeExclusions(path string, records []contracts.ExclusionRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write([]string{"Epic", "Stage", "Reason", "Detail"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Epic, string(r.Stage), string(r.Reason), r.Detail}); err != nil {
			return fmt.Errorf("write exclusion %s: %w", r.Epic, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func candidateRecord(c contracts.Candidate) []string {
	f := c.Features
	return []string{
		strconv.Itoa(c.Rank),
		c.Instrument.Epic,
		c.Ticker,
		c.Instrument.Name,
		f.Sector,
		f.Date.Format("2006-01-02"),
		num(f.Open, 2), num(f.High, 2), num(f.Low, 2), num(f.Close, 2), num(f.AdjClose, 2),
		strconv.FormatInt(f.Volume, 10),
		num(f.RelVol10, 2),
		num(f.MA20, 2), num(f.MA50, 2),
		num(f.ATR14, 3), num(f.ATRFrac, 4),
		num(f.Trend20, 4), num(f.Trend50, 4),
		num(f.DayReturnPct, 2),
		num(f.SpreadPct, 4),
		num(c.Labels.AWinRate, 2), num(c.Labels.ALossRate, 2), num(c.Labels.AAmbigRate, 2),
		num(c.Labels.BWinRate, 2),
		strconv.Itoa(c.Labels.SampleA),
		strconv.Itoa(c.Labels.SampleB),
		flag(f.EarningsSoon),
		flag(f.NewsFlag),
		num(c.Score.Composite, 2),
		num(c.Score.Components.DayStrength, 1),
		num(c.Score.Components.RelVolume, 1),
		num(c.Score.Components.Catalyst, 1),
		num(c.Score.Components.Market, 1),
		num(c.Score.Components.VolFit, 1),
		c.Justification,
	}
}

func num(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
