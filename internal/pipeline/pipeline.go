// Package pipeline orchestrates a full scoring run: universe load,
// anchor resolution, symbol mapping, series acquisition, feature
// derivation, labeling, scoring and selection, with every drop
// accounted for in the exclusion ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/edge10/backend/internal/artifacts"
	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/internal/selection"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// UniverseFeed supplies the raw broker instrument list.
type UniverseFeed interface {
	Load() ([]contracts.Instrument, error)
}

// UniverseFilter applies the pre-mapping gates.
type UniverseFilter interface {
	Apply(instruments []contracts.Instrument, ledger *contracts.Ledger) []contracts.Instrument
}

// Enricher fills the optional catalyst and market inputs of feature
// rows in place. Enrichment failures degrade the inputs, never the
// run.
type Enricher interface {
	Enrich(ctx context.Context, rows []contracts.FeatureRow, anchor contracts.AnchorDate) []contracts.FeatureRow
}

// ArtifactSink persists the run outputs. Either sink may be absent.
type ArtifactSink interface {
	WriteRun(anchor contracts.AnchorDate, ranked, broad, top []contracts.Candidate, exclusions []contracts.ExclusionRecord) (string, error)
}

// RunStore persists run history. Satisfied by artifacts.RunStore.
type RunStore interface {
	SaveRun(ctx context.Context, run artifacts.RunRecord, ranked []contracts.Candidate, exclusions []contracts.ExclusionRecord) (int64, error)
}

// RunConfig parameterizes one run.
type RunConfig struct {
	RequestedDate time.Time
	SkipEnrich    bool // leave catalyst/market inputs at their zero values
	SkipPersist   bool // skip the database sink
}

// RunResult summarizes a completed run.
type RunResult struct {
	Anchor          contracts.AnchorDate
	UniverseSize    int
	Survivors       int
	Ranked          []contracts.Candidate
	Top             []contracts.Candidate
	Broad           []contracts.Candidate
	Exclusions      []contracts.ExclusionRecord
	ArtifactDir     string
	RunID           int64
	CompletedStages []string
	Duration        time.Duration
}

// Pipeline wires the stages together.
type Pipeline struct {
	feed     UniverseFeed
	filter   UniverseFilter
	resolver contracts.SymbolResolver
	calendar contracts.CalendarResolver
	fetcher  contracts.SeriesFetcher
	deriver  contracts.FeatureDeriver
	labeler  contracts.Labeler
	scorer   contracts.Scorer
	selector *selection.Selector
	enricher Enricher
	sink     ArtifactSink
	store    RunStore
	log      *logger.Logger
}

type Deps struct {
	Feed     UniverseFeed
	Filter   UniverseFilter
	Resolver contracts.SymbolResolver
	Calendar contracts.CalendarResolver
	Fetcher  contracts.SeriesFetcher
	Deriver  contracts.FeatureDeriver
	Labeler  contracts.Labeler
	Scorer   contracts.Scorer
	Selector *selection.Selector
	Enricher Enricher     // optional
	Sink     ArtifactSink // optional
	Store    RunStore     // optional
}

func New(deps Deps, log *logger.Logger) *Pipeline {
	return &Pipeline{
		feed:     deps.Feed,
		filter:   deps.Filter,
		resolver: deps.Resolver,
		calendar: deps.Calendar,
		fetcher:  deps.Fetcher,
		deriver:  deps.Deriver,
		labeler:  deps.Labeler,
		scorer:   deps.Scorer,
		selector: deps.Selector,
		enricher: deps.Enricher,
		sink:     deps.Sink,
		store:    deps.Store,
		log:      log.WithField("component", "pipeline"),
	}
}

// mapped pairs an instrument with its resolved ticker and, later, its
// price history.
type mapped struct {
	inst   contracts.Instrument
	ticker string
	series *contracts.PriceSeries
}

// Run executes the full pipeline for one requested date.
func (p *Pipeline) Run(ctx context.Context, rc RunConfig) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{}
	ledger := contracts.NewLedger()
	done := func(stage string) { res.CompletedStages = append(res.CompletedStages, stage) }

	instruments, err := p.feed.Load()
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	res.UniverseSize = len(instruments)
	filtered := p.filter.Apply(instruments, ledger)
	done("universe")

	anchor, err := p.calendar.Resolve(ctx, rc.RequestedDate)
	if err != nil {
		return nil, fmt.Errorf("resolve anchor: %w", err)
	}
	res.Anchor = anchor
	done("calendar")

	survivors := p.mapSymbols(ctx, filtered, ledger)
	done("mapping")

	survivors, err = p.acquire(ctx, survivors, anchor, ledger)
	if err != nil {
		return nil, err
	}
	done("acquisition")

	rows, rowOwners := p.deriveFeatures(survivors, anchor, ledger)
	if p.enricher != nil && !rc.SkipEnrich {
		rows = p.enricher.Enrich(ctx, rows, anchor)
	}
	done("features")

	labels := make([]contracts.LabelSet, len(rows))
	for i := range rows {
		labels[i] = p.labeler.Label(rowOwners[i].series, anchor, rowOwners[i].inst.SpreadPct)
	}
	done("labeling")

	scores := p.scorer.Score(rows)
	done("scoring")

	candidates := make([]contracts.Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = contracts.Candidate{
			Instrument: rowOwners[i].inst,
			Ticker:     rowOwners[i].ticker,
			Features:   row,
			Labels:     labels[i],
			Score:      scores[row.Epic],
		}
	}
	sel := p.selector.Select(candidates)
	res.Ranked, res.Top, res.Broad = sel.Ranked, sel.Top, sel.Broad
	res.Survivors = len(sel.Ranked)
	res.Exclusions = ledger.Records()
	done("selection")

	if err := verifyPartition(instruments, sel.Ranked, ledger); err != nil {
		return nil, err
	}

	if p.sink != nil {
		dir, err := p.sink.WriteRun(anchor, sel.Ranked, sel.Broad, sel.Top, res.Exclusions)
		if err != nil {
			return nil, fmt.Errorf("write artifacts: %w", err)
		}
		res.ArtifactDir = dir
	}
	if p.store != nil && !rc.SkipPersist {
		runID, err := p.store.SaveRun(ctx, artifacts.RunRecord{
			RequestedDate: contracts.Day(rc.RequestedDate),
			AnchorDate:    anchor.Date,
			Regressions:   anchor.Regressions,
			UniverseSize:  res.UniverseSize,
			Survivors:     res.Survivors,
			Excluded:      len(res.Exclusions),
		}, sel.Ranked, res.Exclusions)
		if err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
		res.RunID = runID
	}
	done("artifacts")

	res.Duration = time.Since(start)
	p.log.WithFields(map[string]interface{}{
		"anchor":    anchor.Date.Format("2006-01-02"),
		"universe":  res.UniverseSize,
		"survivors": res.Survivors,
		"excluded":  len(res.Exclusions),
		"duration":  res.Duration.String(),
	}).Info("Run complete")
	return res, nil
}

func (p *Pipeline) mapSymbols(ctx context.Context, instruments []contracts.Instrument, ledger *contracts.Ledger) []mapped {
	out := make([]mapped, 0, len(instruments))
	for _, inst := range instruments {
		m, err := p.resolver.Resolve(ctx, inst)
		switch {
		case errors.Is(err, contracts.ErrNonEquity):
			ledger.Add(inst.Epic, contracts.StageMapping, contracts.ReasonNonEquity, err.Error())
		case err != nil:
			ledger.Add(inst.Epic, contracts.StageMapping, contracts.ReasonMappingFailure, err.Error())
		default:
			out = append(out, mapped{inst: inst, ticker: m.Ticker})
		}
	}
	return out
}

func (p *Pipeline) acquire(ctx context.Context, survivors []mapped, anchor contracts.AnchorDate, ledger *contracts.Ledger) ([]mapped, error) {
	tickers := make([]string, len(survivors))
	for i, s := range survivors {
		tickers[i] = s.ticker
	}
	results := p.fetcher.Fetch(ctx, tickers, anchor)

	out := make([]mapped, 0, len(survivors))
	for _, s := range survivors {
		res, ok := results[s.ticker]
		if !ok || res.Err != nil {
			detail := "no result returned"
			if ok {
				detail = res.Err.Error()
			}
			ledger.Add(s.inst.Epic, contracts.StageAcquisition, contracts.ReasonFetchFailure, detail)
			continue
		}
		s.series = res.Series
		out = append(out, s)
	}
	if len(survivors) > 0 && len(out) == 0 {
		return nil, fmt.Errorf("acquisition: %w", contracts.ErrEmptyUniverse)
	}
	return out, nil
}

// deriveFeatures returns the rows and, index-aligned, their owning
// mapped entries.
func (p *Pipeline) deriveFeatures(survivors []mapped, anchor contracts.AnchorDate, ledger *contracts.Ledger) ([]contracts.FeatureRow, []mapped) {
	rows := make([]contracts.FeatureRow, 0, len(survivors))
	owners := make([]mapped, 0, len(survivors))
	for _, s := range survivors {
		row, err := p.deriver.Derive(s.series, s.inst, anchor)
		if err != nil {
			ledger.Add(s.inst.Epic, contracts.StageFeatures, contracts.ReasonInsufficientData, err.Error())
			continue
		}
		rows = append(rows, row)
		owners = append(owners, s)
	}
	return rows, owners
}

// verifyPartition checks that every input instrument ended up either
// ranked or excluded, never both, never neither.
func verifyPartition(instruments []contracts.Instrument, ranked []contracts.Candidate, ledger *contracts.Ledger) error {
	rankedSet := make(map[string]bool, len(ranked))
	for _, c := range ranked {
		rankedSet[c.Instrument.Epic] = true
	}
	for _, inst := range instruments {
		inRanked := rankedSet[inst.Epic]
		inLedger := ledger.Contains(inst.Epic)
		if inRanked == inLedger {
			return fmt.Errorf("partition violation for %s: ranked=%v excluded=%v",
				inst.Epic, inRanked, inLedger)
		}
	}
	return nil
}
