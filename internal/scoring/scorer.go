// Package scoring rank-normalizes feature rows into composite scores.
// Components are ranked against the surviving universe of the run, not
// a fixed historical distribution.
package scoring

import (
	"sort"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// Scorer computes the five component scores and their weighted
// composite.
type Scorer struct {
	log *logger.Logger
}

func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{log: log.WithField("component", "scoring")}
}

// Score ranks every row on each component and returns the results
// keyed by epic. Input order is preserved as the tie-break, so calls
// with the same rows yield identical scores.
func (s *Scorer) Score(rows []contracts.FeatureRow) map[string]contracts.ScoreResult {
	n := len(rows)
	out := make(map[string]contracts.ScoreResult, n)
	if n == 0 {
		return out
	}

	dayStrength := rankNormalize(rows, func(r contracts.FeatureRow) float64 { return r.DayReturnPct })
	relVolume := rankNormalize(rows, func(r contracts.FeatureRow) float64 { return r.RelVol10 })
	catalyst := rankNormalize(rows, catalystRaw)
	market := rankNormalize(rows, marketRaw)
	// Lower volatility ranks higher, so the raw value is negated.
	volFit := rankNormalize(rows, func(r contracts.FeatureRow) float64 { return -r.ATRFrac })

	for i, row := range rows {
		components := contracts.ScoreComponents{
			DayStrength: dayStrength[i],
			RelVolume:   relVolume[i],
			Catalyst:    catalyst[i],
			Market:      market[i],
			VolFit:      volFit[i],
		}
		out[row.Epic] = contracts.ScoreResult{
			Epic:       row.Epic,
			Composite:  components.Composite(),
			Components: components,
		}
	}
	s.log.WithField("universe", n).Info("Scored surviving universe")
	return out
}

// catalystRaw weights an earnings announcement double a generic news
// event.
func catalystRaw(r contracts.FeatureRow) float64 {
	raw := 0.0
	if r.EarningsSoon {
		raw += 2
	}
	if r.NewsFlag {
		raw++
	}
	return raw
}

// marketRaw folds the sector strength and the index direction into one
// sentiment value. Missing inputs contribute nothing.
func marketRaw(r contracts.FeatureRow) float64 {
	raw := 0.0
	if r.SectorStrength != nil {
		raw += *r.SectorStrength
	}
	if r.IndexBias != nil {
		raw += 0.01 * float64(*r.IndexBias)
	}
	return raw
}

// rankNormalize maps raw values onto 0..100 by ascending ordinal rank.
// Ties keep input order. A single-row universe scores 100.
func rankNormalize(rows []contracts.FeatureRow, raw func(contracts.FeatureRow) float64) []float64 {
	n := len(rows)
	scores := make([]float64, n)
	if n == 1 {
		scores[0] = 100
		return scores
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return raw(rows[order[a]]) < raw(rows[order[b]])
	})
	for pos, idx := range order {
		scores[idx] = float64(pos) / float64(n-1) * 100
	}
	return scores
}
