package yahoo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "TSLA", "exchangeTimezoneName": "America/New_York"},
      "timestamp": [1755613800, 1755700200, 1755786600],
      "indicators": {
        "quote": [{
          "open":   [330.1, 334.5, 331.0],
          "high":   [336.0, 338.2, 335.5],
          "low":    [328.4, 332.0, 329.9],
          "close":  [335.2, null, 333.1],
          "volume": [91000000, 88000000, 76000000]
        }],
        "adjclose": [{"adjclose": [335.2, null, 333.1]}]
      }
    }],
    "error": null
  }
}`

func TestParseChartResult(t *testing.T) {
	result := gjson.Get(chartFixture, "chart.result.0")
	require.True(t, result.Exists())

	series, err := parseChartResult(result, "TSLA")
	require.NoError(t, err)

	// The middle bar has a null close and must be dropped.
	require.Equal(t, 2, series.Len())
	assert.Equal(t, "TSLA", series.Ticker)

	first := series.Bars[0]
	assert.Equal(t, time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 330.1, first.Open)
	assert.Equal(t, 335.2, first.Close)
	assert.Equal(t, 335.2, first.AdjClose)
	assert.Equal(t, int64(91000000), first.Volume)

	last := series.Bars[1]
	assert.Equal(t, time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC), last.Date)
	assert.Equal(t, 333.1, last.Close)
}

func TestParseChartResultNoQuote(t *testing.T) {
	result := gjson.Parse(`{"timestamp": [], "indicators": {"quote": [{}]}}`)
	_, err := parseChartResult(result, "XXXX")
	assert.Error(t, err)
}

func TestParseEarningsDate(t *testing.T) {
	d, ok := parseEarningsDate("Nov 15, 2025, 4 PMEST")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC), d)

	_, ok = parseEarningsDate("Tesla, Inc.")
	assert.False(t, ok)
}
