// Package selection ranks the scored universe and carves out the
// final candidate lists.
package selection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/edge10/backend/internal/contracts"
	"github.com/wonny/edge10/backend/pkg/logger"
)

// Result holds the outcome of a selection pass. Ranked carries the
// whole surviving universe in final order, Top is its leading slice,
// and Broad is ordered by composite score alone.
type Result struct {
	Ranked []contracts.Candidate
	Top    []contracts.Candidate
	Broad  []contracts.Candidate
}

// Selector orders candidates and attaches justifications.
type Selector struct {
	topN   int
	broadN int
	log    *logger.Logger
}

func NewSelector(topN, broadN int, log *logger.Logger) *Selector {
	return &Selector{topN: topN, broadN: broadN, log: log.WithField("component", "selection")}
}

// Select sorts candidates by composite score, then Rule-A win rate,
// then Rule-B win rate, all descending, keeping input order on full
// ties. Ranks and justifications are assigned in place.
func (s *Selector) Select(candidates []contracts.Candidate) Result {
	ranked := make([]contracts.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Score.Composite != ranked[b].Score.Composite {
			return ranked[a].Score.Composite > ranked[b].Score.Composite
		}
		if ranked[a].Labels.AWinRate != ranked[b].Labels.AWinRate {
			return ranked[a].Labels.AWinRate > ranked[b].Labels.AWinRate
		}
		return ranked[a].Labels.BWinRate > ranked[b].Labels.BWinRate
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Justification = justification(ranked[i])
	}

	res := Result{
		Ranked: ranked,
		Top:    head(ranked, s.topN),
		Broad:  broadPool(candidates, s.broadN),
	}
	s.log.WithFields(map[string]interface{}{
		"universe": len(ranked),
		"top":      len(res.Top),
		"broad":    len(res.Broad),
	}).Info("Selected candidates")
	return res
}

// justification renders the human-readable score summary, annotated
// with low-sample warnings where a rate rests on thin history.
func justification(c contracts.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "EdgeScore=%.1f", c.Score.Composite)

	var warnings []string
	if c.Labels.LowSampleA() {
		warnings = append(warnings, fmt.Sprintf("SampleA=%d<%d", c.Labels.SampleA, contracts.MinLabelSample))
	}
	if c.Labels.LowSampleB() {
		warnings = append(warnings, fmt.Sprintf("SampleB=%d<%d", c.Labels.SampleB, contracts.MinLabelSample))
	}
	if len(warnings) > 0 {
		fmt.Fprintf(&b, " [%s;]", strings.Join(warnings, "; "))
	}
	return b.String()
}

// broadPool orders the universe by composite score alone, keeping
// input order on ties, and takes the leading n.
func broadPool(candidates []contracts.Candidate, n int) []contracts.Candidate {
	broad := make([]contracts.Candidate, len(candidates))
	copy(broad, candidates)
	sort.SliceStable(broad, func(a, b int) bool {
		return broad[a].Score.Composite > broad[b].Score.Composite
	})
	for i := range broad {
		broad[i].Rank = i + 1
		broad[i].Justification = justification(broad[i])
	}
	return head(broad, n)
}

func head(ranked []contracts.Candidate, n int) []contracts.Candidate {
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
