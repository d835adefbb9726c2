package labeling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/edge10/backend/internal/contracts"
)

var anchorDate = time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)

func anchor() contracts.AnchorDate {
	return contracts.AnchorDate{Date: anchorDate, SessionClose: anchorDate.Add(20 * time.Hour)}
}

// barAt places a bar n sessions before the anchor.
func barAt(n int, open, high, low, close float64) contracts.Bar {
	return contracts.Bar{
		Date: anchorDate.AddDate(0, 0, -n),
		Open: open, High: high, Low: low, Close: close,
	}
}

func TestLabelBracketOutcomes(t *testing.T) {
	// Spread 0: TP at open*1.03, SL at open*0.98.
	series := &contracts.PriceSeries{Ticker: "TEST", Bars: []contracts.Bar{
		barAt(4, 100, 104, 99, 103),  // TP touched, SL safe: win
		barAt(3, 100, 101, 97, 98),   // SL touched, TP never: loss
		barAt(2, 100, 104, 97, 99.5), // both inside the range: ambiguous
		barAt(1, 100, 101, 99, 100.5), // neither touched: sample only
	}}

	set := NewLabeler().Label(series, anchor(), 0)
	require.Equal(t, 4, set.SampleA)
	assert.InDelta(t, 0.25, set.AWinRate, 1e-9)
	assert.InDelta(t, 0.25, set.ALossRate, 1e-9)
	assert.InDelta(t, 0.25, set.AAmbigRate, 1e-9)
	// Rule B: closes above open on days 4 and 1.
	assert.Equal(t, 4, set.SampleB)
	assert.InDelta(t, 0.5, set.BWinRate, 1e-9)
}

func TestLabelSpreadWidensBracket(t *testing.T) {
	// High of 103.5 beats the zero-spread TP of 103 but not the
	// spread-adjusted TP of 104.
	series := &contracts.PriceSeries{Ticker: "TEST", Bars: []contracts.Bar{
		barAt(1, 100, 103.5, 99.5, 102),
	}}

	noSpread := NewLabeler().Label(series, anchor(), 0)
	assert.InDelta(t, 1.0, noSpread.AWinRate, 1e-9)

	withSpread := NewLabeler().Label(series, anchor(), 0.01)
	assert.InDelta(t, 0.0, withSpread.AWinRate, 1e-9)
}

func TestLabelExcludesAnchorAndLater(t *testing.T) {
	series := &contracts.PriceSeries{Ticker: "TEST", Bars: []contracts.Bar{
		barAt(1, 100, 110, 99, 109), // the only in-sample day, a win
		barAt(0, 100, 90, 80, 85),   // anchor day itself, out of sample
		{Date: anchorDate.AddDate(0, 0, 1), Open: 100, High: 100, Low: 50, Close: 60},
	}}

	set := NewLabeler().Label(series, anchor(), 0)
	assert.Equal(t, 1, set.SampleA)
	assert.InDelta(t, 1.0, set.AWinRate, 1e-9)
	assert.InDelta(t, 0.0, set.ALossRate, 1e-9)
}

func TestLabelLowSampleFlag(t *testing.T) {
	series := &contracts.PriceSeries{Ticker: "TEST"}
	for i := 1; i <= 10; i++ {
		series.Bars = append(series.Bars, barAt(11-i, 100, 104, 99, 103))
	}

	set := NewLabeler().Label(series, anchor(), 0)
	assert.Equal(t, 10, set.SampleA)
	assert.True(t, set.LowSampleA())
	assert.True(t, set.LowSampleB())
	// Rates are still reported, low sample is a warning not a veto.
	assert.InDelta(t, 1.0, set.AWinRate, 1e-9)
}

func TestLabelSkipsDegenerateBars(t *testing.T) {
	series := &contracts.PriceSeries{Ticker: "TEST", Bars: []contracts.Bar{
		barAt(2, 0, 0, 0, 0),
		barAt(1, 100, 104, 99, 103),
	}}
	set := NewLabeler().Label(series, anchor(), 0)
	assert.Equal(t, 1, set.SampleA)
}
