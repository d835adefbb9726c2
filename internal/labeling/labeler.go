// Package labeling computes historical outcome rates. Only sessions
// strictly before the anchor contribute, the anchor bar itself is
// out of sample.
package labeling

import (
	"github.com/wonny/edge10/backend/internal/contracts"
)

// Bracket levels as decimals of the entry price. The quoted spread is
// added on both sides so the bracket reflects net fills.
const (
	takeProfitPct = 0.03
	stopLossPct   = 0.02
)

// Labeler computes the two outcome rules.
type Labeler struct{}

func NewLabeler() *Labeler { return &Labeler{} }

// Label tallies both rules over the sessions before the anchor date.
// Rates are on a 0..1 scale. A day where both bracket sides are inside
// the range counts as ambiguous, a day where neither is touched counts
// in the sample but in no bucket.
func (l *Labeler) Label(series *contracts.PriceSeries, anchor contracts.AnchorDate, spreadPct float64) contracts.LabelSet {
	train := series.BarsBefore(anchor.Date)

	var set contracts.LabelSet
	var wins, losses, ambigs, bWins int
	for _, bar := range train {
		if bar.Open <= 0 {
			continue
		}

		tp := bar.Open * (1 + takeProfitPct + spreadPct)
		sl := bar.Open * (1 - stopLossPct - spreadPct)
		tpHit := bar.High >= tp
		slHit := bar.Low <= sl
		switch {
		case tpHit && slHit:
			ambigs++
		case tpHit:
			wins++
		case slHit:
			losses++
		}
		set.SampleA++

		if bar.Close >= bar.Open*(1+spreadPct) {
			bWins++
		}
		set.SampleB++
	}

	if set.SampleA > 0 {
		n := float64(set.SampleA)
		set.AWinRate = float64(wins) / n
		set.ALossRate = float64(losses) / n
		set.AAmbigRate = float64(ambigs) / n
	}
	if set.SampleB > 0 {
		set.BWinRate = float64(bWins) / float64(set.SampleB)
	}
	return set
}
