package contracts

import (
	"context"
	"time"
)

// SymbolResolver maps a broker instrument to a validated market data
// ticker.
type SymbolResolver interface {
	Resolve(ctx context.Context, inst Instrument) (SymbolMapping, error)
}

// CalendarResolver turns a requested evaluation date into the most
// recent session whose close has passed.
type CalendarResolver interface {
	Resolve(ctx context.Context, requested time.Time) (AnchorDate, error)
}

// FetchResult is the per-ticker outcome of series acquisition.
type FetchResult struct {
	Series *PriceSeries
	Err    error
}

// SeriesFetcher acquires daily bars for a set of tickers. The result
// map holds one entry per requested ticker.
type SeriesFetcher interface {
	Fetch(ctx context.Context, tickers []string, anchor AnchorDate) map[string]FetchResult
}

// FeatureDeriver computes the anchor-session indicator snapshot of one
// instrument.
type FeatureDeriver interface {
	Derive(series *PriceSeries, inst Instrument, anchor AnchorDate) (FeatureRow, error)
}

// Labeler computes historical outcome rates from sessions strictly
// before the anchor.
type Labeler interface {
	Label(series *PriceSeries, anchor AnchorDate, spreadPct float64) LabelSet
}

// Scorer rank-normalizes feature rows into composite scores, keyed by
// epic.
type Scorer interface {
	Score(rows []FeatureRow) map[string]ScoreResult
}
