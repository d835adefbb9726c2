package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/edge10/backend/internal/artifacts"
	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/internal/external/capital"
	"github.com/wonny/edge10/backend/internal/features"
	"github.com/wonny/edge10/backend/internal/labeling"
	"github.com/wonny/edge10/backend/internal/scoring"
	"github.com/wonny/edge10/backend/internal/selection"
	"github.com/wonny/edge10/backend/pkg/logger"
)

var anchorDate = time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)

type fakeFeed struct{ instruments []contracts.Instrument }

func (f *fakeFeed) Load() ([]contracts.Instrument, error) { return f.instruments, nil }

type fakeResolver struct {
	tickers   map[string]string
	nonEquity map[string]bool
}

func (r *fakeResolver) Resolve(_ context.Context, inst contracts.Instrument) (contracts.SymbolMapping, error) {
	if r.nonEquity[inst.Epic] {
		return contracts.SymbolMapping{}, contracts.ErrNonEquity
	}
	ticker, ok := r.tickers[inst.Epic]
	if !ok {
		return contracts.SymbolMapping{}, contracts.ErrNoValidMapping
	}
	return contracts.SymbolMapping{Epic: inst.Epic, Ticker: ticker, Confidence: contracts.MappingPattern}, nil
}

type fakeCalendar struct{}

func (fakeCalendar) Resolve(context.Context, time.Time) (contracts.AnchorDate, error) {
	return contracts.AnchorDate{
		Date:         anchorDate,
		SessionClose: anchorDate.Add(20 * time.Hour),
	}, nil
}

type fakeFetcher struct{ results map[string]contracts.FetchResult }

func (f *fakeFetcher) Fetch(_ context.Context, tickers []string, _ contracts.AnchorDate) map[string]contracts.FetchResult {
	out := make(map[string]contracts.FetchResult)
	for _, t := range tickers {
		if res, ok := f.results[t]; ok {
			out[t] = res
		}
	}
	return out
}

func series(ticker string, n int) *contracts.PriceSeries {
	s := &contracts.PriceSeries{Ticker: ticker}
	for i := n - 1; i >= 0; i-- {
		s.Bars = append(s.Bars, contracts.Bar{
			Date: anchorDate.AddDate(0, 0, -i),
			Open: 100, High: 103, Low: 98, Close: 101, AdjClose: 101, Volume: 1_000_000,
		})
	}
	return s
}

func usInst(epic string) contracts.Instrument {
	return contracts.Instrument{
		Epic: epic, Name: epic + " Corp", Sector: "Technology",
		Bid: 99.9, Ask: 100.1, SpreadPct: 0.002, IsUSStock: true,
	}
}

func newTestPipeline(t *testing.T, feed *fakeFeed, fetcher *fakeFetcher, resolver *fakeResolver) *Pipeline {
	t.Helper()
	log := logger.NewNop()
	return New(Deps{
		Feed:     feed,
		Filter:   capital.NewFilter(0.003, 2.0, log),
		Resolver: resolver,
		Calendar: fakeCalendar{},
		Fetcher:  fetcher,
		Deriver:  features.NewDeriver(),
		Labeler:  labeling.NewLabeler(),
		Scorer:   scoring.NewScorer(log),
		Selector: selection.NewSelector(1, 2, log),
		Sink:     artifacts.NewCSVWriter(t.TempDir(), log),
	}, log)
}

func TestRunPartitionsUniverse(t *testing.T) {
	feed := &fakeFeed{instruments: []contracts.Instrument{
		usInst("US.GOOD1"),
		usInst("US.GOOD2"),
		usInst("US.NOMAP"),   // mapping failure
		usInst("US.FUNDISH"), // provider classifies as non-equity
		usInst("US.NOFETCH"), // both fetch paths fail
		usInst("US.SHORT"),   // too little history for features
		{Epic: "DE.SAP", Name: "SAP", Bid: 100, Ask: 100.1, IsUSStock: false}, // universe gate
	}}
	resolver := &fakeResolver{
		tickers: map[string]string{
			"US.GOOD1": "GOOD1", "US.GOOD2": "GOOD2",
			"US.NOFETCH": "NOFETCH", "US.SHORT": "SHORT",
		},
		nonEquity: map[string]bool{"US.FUNDISH": true},
	}
	fetcher := &fakeFetcher{results: map[string]contracts.FetchResult{
		"GOOD1": {Series: series("GOOD1", 60)},
		"GOOD2": {Series: series("GOOD2", 60)},
		"NOFETCH": {Err: &contracts.FetchError{
			Ticker: "NOFETCH", Err: errors.New("provider down")}},
		"SHORT": {Series: series("SHORT", 10)},
	}}
	p := newTestPipeline(t, feed, fetcher, resolver)

	res, err := p.Run(context.Background(), RunConfig{RequestedDate: anchorDate})
	require.NoError(t, err)

	assert.Equal(t, 7, res.UniverseSize)
	assert.Equal(t, 2, res.Survivors)
	assert.Len(t, res.Exclusions, 5)
	assert.Len(t, res.Top, 1)
	assert.Len(t, res.Broad, 2)

	byEpic := make(map[string]contracts.ExclusionRecord)
	for _, e := range res.Exclusions {
		byEpic[e.Epic] = e
	}
	assert.Equal(t, contracts.ReasonNotUSStock, byEpic["DE.SAP"].Reason)
	assert.Equal(t, contracts.ReasonMappingFailure, byEpic["US.NOMAP"].Reason)
	assert.Equal(t, contracts.ReasonNonEquity, byEpic["US.FUNDISH"].Reason)
	assert.Equal(t, contracts.ReasonFetchFailure, byEpic["US.NOFETCH"].Reason)
	assert.Equal(t, contracts.ReasonInsufficientData, byEpic["US.SHORT"].Reason)
	assert.Equal(t, contracts.StageUniverse, byEpic["DE.SAP"].Stage)
	assert.Equal(t, contracts.StageAcquisition, byEpic["US.NOFETCH"].Stage)
	assert.Equal(t, contracts.StageFeatures, byEpic["US.SHORT"].Stage)

	assert.Equal(t, []string{
		"universe", "calendar", "mapping", "acquisition",
		"features", "labeling", "scoring", "selection", "artifacts",
	}, res.CompletedStages)
}

func TestRunWritesArtifacts(t *testing.T) {
	feed := &fakeFeed{instruments: []contracts.Instrument{usInst("US.GOOD1")}}
	resolver := &fakeResolver{tickers: map[string]string{"US.GOOD1": "GOOD1"}}
	fetcher := &fakeFetcher{results: map[string]contracts.FetchResult{
		"GOOD1": {Series: series("GOOD1", 60)},
	}}
	p := newTestPipeline(t, feed, fetcher, resolver)

	res, err := p.Run(context.Background(), RunConfig{RequestedDate: anchorDate})
	require.NoError(t, err)
	require.NotEmpty(t, res.ArtifactDir)

	for _, name := range []string{
		artifacts.FullUniverseFile, artifacts.Top100File,
		artifacts.Top10File, artifacts.ExcludedFile,
	} {
		_, err := os.Stat(filepath.Join(res.ArtifactDir, name))
		assert.NoError(t, err, name)
	}
	assert.Contains(t, filepath.Base(res.ArtifactDir), "2025-08-22")
}

func TestRunFatalOnZeroAcquisitions(t *testing.T) {
	feed := &fakeFeed{instruments: []contracts.Instrument{usInst("US.GOOD1")}}
	resolver := &fakeResolver{tickers: map[string]string{"US.GOOD1": "GOOD1"}}
	fetcher := &fakeFetcher{results: map[string]contracts.FetchResult{
		"GOOD1": {Err: &contracts.FetchError{Ticker: "GOOD1", Err: errors.New("down")}},
	}}
	p := newTestPipeline(t, feed, fetcher, resolver)

	_, err := p.Run(context.Background(), RunConfig{RequestedDate: anchorDate})
	assert.ErrorIs(t, err, contracts.ErrEmptyUniverse)
}

func TestRunRanksBetterCandidateFirst(t *testing.T) {
	feed := &fakeFeed{instruments: []contracts.Instrument{
		usInst("US.SLOW"),
		usInst("US.FAST"),
	}}
	resolver := &fakeResolver{tickers: map[string]string{"US.SLOW": "SLOW", "US.FAST": "FAST"}}

	fast := series("FAST", 60)
	last := &fast.Bars[len(fast.Bars)-1]
	last.Close = 110 // strong anchor day
	last.Volume = 3_000_000
	fetcher := &fakeFetcher{results: map[string]contracts.FetchResult{
		"SLOW": {Series: series("SLOW", 60)},
		"FAST": {Series: fast},
	}}
	p := newTestPipeline(t, feed, fetcher, resolver)

	res, err := p.Run(context.Background(), RunConfig{RequestedDate: anchorDate})
	require.NoError(t, err)
	require.Len(t, res.Ranked, 2)
	assert.Equal(t, "US.FAST", res.Ranked[0].Instrument.Epic)
	assert.Equal(t, 1, res.Ranked[0].Rank)
	assert.NotEmpty(t, res.Ranked[0].Justification)
}
