package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/edge10/backend/internal/contracts"
)

var anchorDate = time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)

func flatSeries(n int, close float64, volume int64) *contracts.PriceSeries {
	s := &contracts.PriceSeries{Ticker: "TEST"}
	for i := n - 1; i >= 0; i-- {
		s.Bars = append(s.Bars, contracts.Bar{
			Date:     anchorDate.AddDate(0, 0, -i),
			Open:     close,
			High:     close + 1,
			Low:      close - 1,
			Close:    close,
			AdjClose: close,
			Volume:   volume,
		})
	}
	return s
}

func testInst() contracts.Instrument {
	return contracts.Instrument{Epic: "US.TEST", Name: "Test Corp", Sector: "Technology", SpreadPct: 0.001}
}

func anchor() contracts.AnchorDate {
	return contracts.AnchorDate{Date: anchorDate, SessionClose: anchorDate.Add(20 * time.Hour)}
}

func TestDeriveFlatSeries(t *testing.T) {
	s := flatSeries(60, 100, 1_000_000)
	row, err := NewDeriver().Derive(s, testInst(), anchor())
	require.NoError(t, err)

	assert.Equal(t, "US.TEST", row.Epic)
	assert.Equal(t, anchorDate, row.Date)
	assert.InDelta(t, 100.0, row.MA20, 1e-9)
	assert.InDelta(t, 100.0, row.MA50, 1e-9)
	assert.InDelta(t, 0.0, row.Trend20, 1e-9)
	assert.InDelta(t, 0.0, row.Trend50, 1e-9)
	// Constant range of 2 keeps the smoothed ATR at 2.
	assert.InDelta(t, 2.0, row.ATR14, 1e-9)
	assert.InDelta(t, 0.02, row.ATRFrac, 1e-9)
	assert.InDelta(t, 1.0, row.RelVol10, 1e-9)
	assert.InDelta(t, 0.0, row.DayReturnPct, 1e-9)
	assert.InDelta(t, 0.001, row.SpreadPct, 1e-9)
}

func TestDeriveTrendAndDayReturn(t *testing.T) {
	s := flatSeries(60, 100, 1_000_000)
	// Anchor bar gaps up and doubles its volume.
	last := &s.Bars[len(s.Bars)-1]
	last.Open = 100
	last.Close = 110
	last.AdjClose = 110
	last.High = 111
	last.Low = 99
	last.Volume = 2_000_000

	row, err := NewDeriver().Derive(s, testInst(), anchor())
	require.NoError(t, err)

	assert.InDelta(t, 10.0, row.DayReturnPct, 1e-9)
	assert.InDelta(t, 2.0, row.RelVol10, 1e-9)
	// MA20 now averages 19 bars at 100 and one at 110.
	assert.InDelta(t, 100.5, row.MA20, 1e-9)
	assert.InDelta(t, 110.0/100.5-1, row.Trend20, 1e-9)
}

func TestDeriveAveragesAdjustedCloses(t *testing.T) {
	s := flatSeries(60, 100, 1_000_000)
	// Dividend-adjusted history sits below the raw closes.
	for i := range s.Bars {
		s.Bars[i].AdjClose = 90
	}

	row, err := NewDeriver().Derive(s, testInst(), anchor())
	require.NoError(t, err)
	assert.InDelta(t, 90.0, row.MA20, 1e-9)
	assert.InDelta(t, 90.0, row.MA50, 1e-9)
	// Trend still compares the raw close against the adjusted average.
	assert.InDelta(t, 100.0/90.0-1, row.Trend20, 1e-9)
}

func TestDeriveIgnoresBarsPastAnchor(t *testing.T) {
	s := flatSeries(60, 100, 1_000_000)
	// A stray bar dated after the anchor must not contribute.
	s.Bars = append(s.Bars, contracts.Bar{
		Date: anchorDate.AddDate(0, 0, 3), Open: 500, High: 510, Low: 490, Close: 505, Volume: 9_000_000,
	})

	row, err := NewDeriver().Derive(s, testInst(), anchor())
	require.NoError(t, err)
	assert.Equal(t, anchorDate, row.Date)
	assert.InDelta(t, 100.0, row.Close, 1e-9)
	assert.InDelta(t, 100.0, row.MA20, 1e-9)
}

func TestDeriveInsufficientHistory(t *testing.T) {
	s := flatSeries(30, 100, 1_000_000)
	_, err := NewDeriver().Derive(s, testInst(), anchor())
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestDeriveDegenerateAnchorBar(t *testing.T) {
	s := flatSeries(60, 100, 1_000_000)
	s.Bars[len(s.Bars)-1].Open = 0
	_, err := NewDeriver().Derive(s, testInst(), anchor())
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestWilderATRSmoothing(t *testing.T) {
	bars := []contracts.Bar{
		{High: 12, Low: 10, Close: 11}, // seed TR = 2
		{High: 15, Low: 11, Close: 14}, // TR = max(4, |15-11|, |11-11|) = 4
	}
	// atr = 2 + (1/14)*(4-2)
	assert.InDelta(t, 2.0+2.0/14.0, wilderATR(bars, 14), 1e-9)
}
