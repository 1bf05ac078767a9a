package quant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quanta/internal/models"
)

// historyOf builds aligned states and series where each day's active set is
// given explicitly and every next-day return is 1%.
func historyOf(activeSets ...[]models.Factor) ([]models.FactorState, []models.EnrichedPoint) {
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	states := make([]models.FactorState, len(activeSets)+1)
	series := make([]models.EnrichedPoint, len(activeSets)+1)

	for i := 0; i <= len(activeSets); i++ {
		factors := make(map[models.Factor]bool)
		for _, f := range models.AllFactors() {
			factors[f] = false
		}
		if i < len(activeSets) {
			for _, f := range activeSets[i] {
				factors[f] = true
			}
		}
		date := base.AddDate(0, 0, i)
		states[i] = models.FactorState{Date: date, Factors: factors}
		series[i] = models.EnrichedPoint{
			PricePoint: models.PricePoint{Date: date, Close: 100, PctChange: 1.0},
		}
	}
	return states, series
}

func TestMatchPatternsSimilarity(t *testing.T) {
	current := []models.Factor{models.FactorVolumeSpike, models.FactorBreakMA50}

	states, series := historyOf(
		// |C∩H|=2, max(2,3)=3 => 2/3, retained
		[]models.Factor{models.FactorVolumeSpike, models.FactorBreakMA50, models.FactorRSIOver60},
		// disjoint => 0, excluded
		[]models.Factor{models.FactorRSIOver60, models.FactorMarketUp},
		// identical => 1.0, retained
		[]models.Factor{models.FactorVolumeSpike, models.FactorBreakMA50},
	)

	matches := MatchPatterns(current, states, series, DefaultPatternMatchOptions())
	require.Len(t, matches, 2)

	// Sorted descending by similarity.
	assert.InDelta(t, 1.0, matches[0].Similarity, 0.0001)
	assert.InDelta(t, 2.0/3.0, matches[1].Similarity, 0.001)
	assert.InDelta(t, 1.0, matches[0].ActualReturn, 0.0001)
}

func TestMatchPatternsEmptyCurrentSet(t *testing.T) {
	states, series := historyOf(
		[]models.Factor{models.FactorVolumeSpike},
		[]models.Factor{},
	)
	matches := MatchPatterns(nil, states, series, DefaultPatternMatchOptions())
	assert.Empty(t, matches)
}

func TestMatchPatternsBelowThresholdExcluded(t *testing.T) {
	current := []models.Factor{models.FactorVolumeSpike}

	states, series := historyOf(
		// overlap 1, max(1,3)=3 => 1/3 < 0.5, excluded
		[]models.Factor{models.FactorVolumeSpike, models.FactorBreakMA50, models.FactorRSIOver60},
	)

	matches := MatchPatterns(current, states, series, DefaultPatternMatchOptions())
	assert.Empty(t, matches)
}

func TestMatchPatternsTruncation(t *testing.T) {
	sets := make([][]models.Factor, 25)
	for i := range sets {
		sets[i] = []models.Factor{models.FactorBreakMA200}
	}
	states, series := historyOf(sets...)

	matches := MatchPatterns([]models.Factor{models.FactorBreakMA200}, states, series, DefaultPatternMatchOptions())
	assert.Len(t, matches, 10)
}

func TestMatchPatternsLastDayHasNoForwardReturn(t *testing.T) {
	// Only one historical day exists beyond it; the final day of the
	// series cannot contribute a match.
	states, series := historyOf([]models.Factor{models.FactorMarketUp})
	matches := MatchPatterns([]models.Factor{models.FactorMarketUp}, states[1:], series[1:], DefaultPatternMatchOptions())
	assert.Empty(t, matches)
}
