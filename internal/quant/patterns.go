package quant

import (
	"sort"

	"github.com/bobmcallan/quanta/internal/models"
)

// PatternMatchOptions controls historical pattern matching.
type PatternMatchOptions struct {
	MinSimilarity float64 // retain matches at or above this overlap
	MaxMatches    int     // truncate to the top N
}

// DefaultPatternMatchOptions returns the reference matching policy.
func DefaultPatternMatchOptions() PatternMatchOptions {
	return PatternMatchOptions{
		MinSimilarity: 0.5,
		MaxMatches:    10,
	}
}

// MatchPatterns finds historical days whose active-factor set overlaps the
// current active set. Similarity is |C∩H| / max(|C|,|H|,1). An empty
// current set returns no matches: a trivial full overlap against every day
// would be meaningless. The actual return recorded for a matched day is the
// next day's percent change; the final day of the series has no forward
// return and is skipped.
func MatchPatterns(current []models.Factor, states []models.FactorState, series []models.EnrichedPoint, opts PatternMatchOptions) []models.HistoricalPatternMatch {
	if len(current) == 0 {
		return nil
	}

	currentSet := make(map[models.Factor]bool, len(current))
	for _, f := range current {
		currentSet[f] = true
	}

	n := len(states)
	if len(series) < n {
		n = len(series)
	}

	var matches []models.HistoricalPatternMatch
	for i := 0; i < n-1; i++ {
		active := states[i].ActiveFactors()
		overlap := 0
		for _, f := range active {
			if currentSet[f] {
				overlap++
			}
		}

		denom := len(currentSet)
		if len(active) > denom {
			denom = len(active)
		}
		if denom < 1 {
			denom = 1
		}
		similarity := float64(overlap) / float64(denom)
		if similarity < opts.MinSimilarity {
			continue
		}

		matches = append(matches, models.HistoricalPatternMatch{
			Date:         states[i].Date,
			Similarity:   similarity,
			ActualReturn: series[i+1].PctChange,
			Factors:      active,
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Similarity != matches[b].Similarity {
			return matches[a].Similarity > matches[b].Similarity
		}
		return matches[a].Date.After(matches[b].Date)
	})

	if opts.MaxMatches > 0 && len(matches) > opts.MaxMatches {
		matches = matches[:opts.MaxMatches]
	}
	return matches
}
