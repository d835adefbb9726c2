package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

type fakeMarketData struct {
	mu             sync.Mutex
	earnings       map[string]bool
	bias           int
	biasErr        error
	strengths      map[string]float64
	strengthCalls  int
	earningsErrFor string
}

func (f *fakeMarketData) EarningsNear(_ context.Context, ticker string, _ time.Time, _ int) (bool, error) {
	if ticker == f.earningsErrFor {
		return false, errors.New("scrape failed")
	}
	return f.earnings[ticker], nil
}

func (f *fakeMarketData) IndexBias(context.Context, string, time.Time) (int, error) {
	return f.bias, f.biasErr
}

func (f *fakeMarketData) DayStrength(_ context.Context, symbol string, _ time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strengthCalls++
	v, ok := f.strengths[symbol]
	if !ok {
		return 0, errors.New("unknown etf")
	}
	return v, nil
}

func TestEnrichFillsInputs(t *testing.T) {
	data := &fakeMarketData{
		earnings:  map[string]bool{"AAPL": true},
		bias:      1,
		strengths: map[string]float64{"XLK": 0.012},
	}
	e := NewMarketEnricher(data, logger.NewNop())

	rows := []contracts.FeatureRow{
		{Epic: "US.AAPL", Ticker: "AAPL", Sector: "Technology"},
		{Epic: "US.MSFT", Ticker: "MSFT", Sector: "Technology"},
	}
	out := e.Enrich(context.Background(), rows, contracts.AnchorDate{Date: anchorDate})

	require.Len(t, out, 2)
	assert.True(t, out[0].EarningsSoon)
	assert.False(t, out[1].EarningsSoon)
	require.NotNil(t, out[0].IndexBias)
	assert.Equal(t, 1, *out[0].IndexBias)
	require.NotNil(t, out[0].SectorStrength)
	assert.InDelta(t, 0.012, *out[0].SectorStrength, 1e-9)
	assert.Equal(t, 1, data.strengthCalls, "sector strength must be fetched once per ETF")
}

func TestEnrichDegradesOnProviderFailure(t *testing.T) {
	data := &fakeMarketData{
		biasErr:        errors.New("index down"),
		strengths:      map[string]float64{},
		earningsErrFor: "AAPL",
	}
	e := NewMarketEnricher(data, logger.NewNop())

	rows := []contracts.FeatureRow{
		{Epic: "US.AAPL", Ticker: "AAPL", Sector: "Technology"},
		{Epic: "US.ODD", Ticker: "ODD", Sector: "Unmapped Sector"},
	}
	out := e.Enrich(context.Background(), rows, contracts.AnchorDate{Date: anchorDate})

	assert.False(t, out[0].EarningsSoon)
	assert.Nil(t, out[0].IndexBias)
	assert.Nil(t, out[0].SectorStrength, "failed ETF lookup leaves the input unset")
	assert.Nil(t, out[1].SectorStrength, "unmapped sector has no proxy")
}
