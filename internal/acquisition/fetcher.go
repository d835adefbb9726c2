// Package acquisition loads daily price history for the mapped
// universe. Tickers are fetched in batches through a worker pool and
// every gap falls back to a single-ticker request before the ticker is
// declared failed.
package acquisition

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/config"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// Client is the provider surface the fetcher needs.
type Client interface {
	FetchDailyBatch(ctx context.Context, tickers []string, from, to time.Time) (map[string]*contracts.PriceSeries, error)
	FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) (*contracts.PriceSeries, error)
}

var (
	errEmptySeries = errors.New("provider returned no bars")
	errShortSeries = errors.New("provider returned too few bars")
)

// Fetcher acquires bar history batch-first with per-ticker fallback.
type Fetcher struct {
	client  Client
	limiter *rate.Limiter
	cfg     config.YahooConfig
	now     func() time.Time
	log     *logger.Logger
}

func NewFetcher(client Client, limiter *rate.Limiter, cfg config.YahooConfig, log *logger.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
		log:     log.WithField("component", "acquisition"),
	}
}

// Fetch loads history for every ticker and returns one result per
// ticker. A ticker is failed only after both the batch and the
// fallback path came up empty.
func (f *Fetcher) Fetch(ctx context.Context, tickers []string, anchor contracts.AnchorDate) map[string]contracts.FetchResult {
	from := anchor.Date.AddDate(0, 0, -f.cfg.LookbackDays)
	to := anchor.Date.AddDate(0, 0, 1)

	batches := partition(tickers, f.cfg.BatchSize)
	jobs := make(chan []string, len(batches))
	for _, b := range batches {
		jobs <- b
	}
	close(jobs)

	var (
		mu      sync.Mutex
		results = make(map[string]contracts.FetchResult, len(tickers))
		wg      sync.WaitGroup
	)
	for w := 0; w < f.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				batchResults := f.fetchBatch(ctx, batch, from, to, anchor)
				mu.Lock()
				for t, res := range batchResults {
					results[t] = res
				}
				mu.Unlock()

				select {
				case <-ctx.Done():
					return
				case <-time.After(f.cfg.BatchPause):
				}
			}
		}()
	}
	wg.Wait()

	ok := 0
	for _, res := range results {
		if res.Err == nil {
			ok++
		}
	}
	f.log.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"succeeded": ok,
		"failed":    len(results) - ok,
	}).Info("Completed series acquisition")
	return results
}

func (f *Fetcher) fetchBatch(ctx context.Context, batch []string, from, to time.Time, anchor contracts.AnchorDate) map[string]contracts.FetchResult {
	out := make(map[string]contracts.FetchResult, len(batch))

	var fetched map[string]*contracts.PriceSeries
	if err := f.limiter.Wait(ctx); err == nil {
		fetched, err = f.client.FetchDailyBatch(ctx, batch, from, to)
		if err != nil {
			f.log.WithError(err).WithField("size", len(batch)).Warn("Batch request failed, falling back per ticker")
			fetched = nil
		}
	}

	for _, ticker := range batch {
		series := fetched[ticker]
		if usable(series, f.cfg.MinBars) {
			out[ticker] = contracts.FetchResult{Series: f.sanitize(series, anchor)}
			continue
		}
		out[ticker] = f.fallback(ctx, ticker, from, to, anchor)
	}
	return out
}

// fallback retries one ticker individually after a pause. This also
// rescues tickers the batch endpoint silently omits.
func (f *Fetcher) fallback(ctx context.Context, ticker string, from, to time.Time, anchor contracts.AnchorDate) contracts.FetchResult {
	select {
	case <-ctx.Done():
		return contracts.FetchResult{Err: &contracts.FetchError{Ticker: ticker, Err: ctx.Err()}}
	case <-time.After(f.cfg.FallbackPause):
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return contracts.FetchResult{Err: &contracts.FetchError{Ticker: ticker, Err: err}}
	}

	series, err := f.client.FetchDailyBars(ctx, ticker, from, to)
	if err != nil {
		return contracts.FetchResult{Err: &contracts.FetchError{Ticker: ticker, Err: err}}
	}
	if series == nil || series.Len() == 0 {
		return contracts.FetchResult{Err: &contracts.FetchError{Ticker: ticker, Err: errEmptySeries}}
	}
	if !usable(series, f.cfg.MinBars) {
		return contracts.FetchResult{Err: &contracts.FetchError{Ticker: ticker, Err: errShortSeries}}
	}
	return contracts.FetchResult{Series: f.sanitize(series, anchor)}
}

// sanitize trims the series to the anchor session. Bars past the
// anchor date are dropped, and a bar on the anchor date itself is only
// kept once that session has closed.
func (f *Fetcher) sanitize(series *contracts.PriceSeries, anchor contracts.AnchorDate) *contracts.PriceSeries {
	series.Bars = series.BarsThrough(anchor.Date)
	if last, ok := series.Last(); ok &&
		contracts.SameDay(last.Date, anchor.Date) && !anchor.Closed(f.now()) {
		series.DropLast()
	}
	return series
}

// usable reports whether a batch payload covers the ticker well enough
// to skip the fallback.
func usable(series *contracts.PriceSeries, minBars int) bool {
	return series != nil && series.Len() >= minBars
}

func partition(tickers []string, size int) [][]string {
	if size <= 0 {
		size = len(tickers)
	}
	var out [][]string
	for start := 0; start < len(tickers); start += size {
		end := start + size
		if end > len(tickers) {
			end = len(tickers)
		}
		out = append(out, tickers[start:end])
	}
	return out
}
