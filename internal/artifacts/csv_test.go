package artifacts

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

func sampleCandidate(rank int, epic string) contracts.Candidate {
	return contracts.Candidate{
		Rank:       rank,
		Instrument: contracts.Instrument{Epic: epic, Name: epic + " Corp"},
		Ticker:     epic[3:],
		Features: contracts.FeatureRow{
			Sector: "Technology",
			Date:   time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC),
			Open:   100, High: 103, Low: 98, Close: 101.5, AdjClose: 101.5,
			Volume: 1_000_000, RelVol10: 1.2, MA20: 100.1, MA50: 99.8,
			ATR14: 2.345, ATRFrac: 0.0231, Trend20: 0.0140, Trend50: 0.0170,
			DayReturnPct: 1.5, SpreadPct: 0.0020,
		},
		Labels: contracts.LabelSet{
			AWinRate: 0.41, ALossRate: 0.30, AAmbigRate: 0.05, BWinRate: 0.52,
			SampleA: 120, SampleB: 120,
		},
		Score:         contracts.ScoreResult{Epic: epic, Composite: 87.25},
		Justification: "EdgeScore=87.3",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteRun(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, logger.NewNop())

	anchor := contracts.AnchorDate{Date: time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)}
	ranked := []contracts.Candidate{sampleCandidate(1, "US.AAA"), sampleCandidate(2, "US.BBB")}
	exclusions := []contracts.ExclusionRecord{
		{Epic: "US.SPY", Stage: contracts.StageMapping, Reason: contracts.ReasonNonEquity, Detail: "ETF"},
	}

	runDir, err := w.WriteRun(anchor, ranked, ranked, ranked[:1], exclusions)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025-08-22"), runDir)

	full := readCSV(t, filepath.Join(runDir, FullUniverseFile))
	require.Len(t, full, 3)
	assert.Equal(t, candidateHeader, full[0])
	assert.Equal(t, "1", full[1][0])
	assert.Equal(t, "US.AAA", full[1][1])
	assert.Equal(t, "101.50", full[1][9])
	assert.Equal(t, "0.41", full[1][21])
	assert.Equal(t, "EdgeScore=87.3", full[1][len(full[1])-1])

	top := readCSV(t, filepath.Join(runDir, Top10File))
	require.Len(t, top, 2)

	excluded := readCSV(t, filepath.Join(runDir, ExcludedFile))
	require.Len(t, excluded, 2)
	assert.Equal(t, []string{"US.SPY", "mapping", "non_equity", "ETF"}, excluded[1])
}
