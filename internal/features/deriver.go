// Package features computes the anchor-session indicator snapshot of
// each instrument. Every value is derived from bars dated on or before
// the anchor, nothing later may leak in.
package features

import (
	"fmt"
	"math"

	"github.com/wonny/edge10/backend/internal/contracts"
)

const (
	// MinBars is the shortest history the indicator windows support.
	MinBars = 50

	maShort    = 20
	maLong     = 50
	atrWindow  = 14
	relVolDays = 10
)

// Deriver computes feature rows.
type Deriver struct{}

func NewDeriver() *Deriver { return &Deriver{} }

// Derive builds the feature row for one instrument at the anchor
// session. Series shorter than the indicator windows fail with
// ErrInsufficientData.
func (d *Deriver) Derive(series *contracts.PriceSeries, inst contracts.Instrument, anchor contracts.AnchorDate) (contracts.FeatureRow, error) {
	bars := series.BarsThrough(anchor.Date)
	if len(bars) < MinBars {
		return contracts.FeatureRow{},
			fmt.Errorf("%s has %d bars, need %d: %w", series.Ticker, len(bars), MinBars, contracts.ErrInsufficientData)
	}

	last := bars[len(bars)-1]
	if last.Open <= 0 || last.Close <= 0 {
		return contracts.FeatureRow{},
			fmt.Errorf("%s has a degenerate anchor bar: %w", series.Ticker, contracts.ErrInsufficientData)
	}

	row := contracts.FeatureRow{
		Epic:      inst.Epic,
		Ticker:    series.Ticker,
		Name:      inst.Name,
		Sector:    inst.Sector,
		Date:      last.Date,
		Open:      last.Open,
		High:      last.High,
		Low:       last.Low,
		Close:     last.Close,
		AdjClose:  last.AdjClose,
		Volume:    last.Volume,
		SpreadPct: inst.SpreadPct,
	}

	row.MA20 = meanAdjClose(bars, maShort)
	row.MA50 = meanAdjClose(bars, maLong)
	if row.MA20 > 0 {
		row.Trend20 = last.Close/row.MA20 - 1
	}
	if row.MA50 > 0 {
		row.Trend50 = last.Close/row.MA50 - 1
	}

	row.ATR14 = wilderATR(bars, atrWindow)
	if last.Close > 0 {
		row.ATRFrac = row.ATR14 / last.Close
	}

	row.RelVol10 = relativeVolume(bars, relVolDays)
	row.DayReturnPct = (last.Close/last.Open - 1) * 100

	return row, nil
}

// meanAdjClose averages the adjusted closes of the trailing n bars.
// Bars without an adjusted close fall back to the raw close.
func meanAdjClose(bars []contracts.Bar, n int) float64 {
	if len(bars) < n || n == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars[len(bars)-n:] {
		if b.AdjClose > 0 {
			sum += b.AdjClose
		} else {
			sum += b.Close
		}
	}
	return sum / float64(n)
}

// wilderATR is the exponentially smoothed true range with alpha 1/n,
// seeded on the first true range.
func wilderATR(bars []contracts.Bar, n int) float64 {
	if len(bars) == 0 {
		return 0
	}
	alpha := 1.0 / float64(n)
	atr := bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		tr := math.Max(bars[i].High-bars[i].Low,
			math.Max(math.Abs(bars[i].High-prevClose), math.Abs(bars[i].Low-prevClose)))
		atr += alpha * (tr - atr)
	}
	return atr
}

// relativeVolume compares the anchor volume to the mean volume of the
// n sessions before it.
func relativeVolume(bars []contracts.Bar, n int) float64 {
	if len(bars) < n+1 {
		return 0
	}
	window := bars[len(bars)-1-n : len(bars)-1]
	sum := 0.0
	for _, b := range window {
		sum += float64(b.Volume)
	}
	avg := sum / float64(n)
	if avg == 0 {
		return 0
	}
	return float64(bars[len(bars)-1].Volume) / avg
}
