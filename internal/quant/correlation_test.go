package quant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quanta/internal/models"
)

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		y        []float64
		expected float64
	}{
		{
			name:     "perfect positive",
			x:        []float64{1, 2, 3, 4},
			y:        []float64{2, 4, 6, 8},
			expected: 1.0,
		},
		{
			name:     "perfect negative",
			x:        []float64{1, 2, 3, 4},
			y:        []float64{8, 6, 4, 2},
			expected: -1.0,
		},
		{
			name:     "zero variance in x",
			x:        []float64{5, 5, 5, 5},
			y:        []float64{1, 2, 3, 4},
			expected: 0.0,
		},
		{
			name:     "zero variance in y",
			x:        []float64{1, 2, 3, 4},
			y:        []float64{7, 7, 7, 7},
			expected: 0.0,
		},
		{
			name:     "length mismatch",
			x:        []float64{1, 2},
			y:        []float64{1, 2, 3},
			expected: 0.0,
		},
		{
			name:     "empty",
			x:        nil,
			y:        nil,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PearsonCorrelation(tt.x, tt.y), 0.0001)
		})
	}
}

func TestPearsonCorrelationSymmetricAndBounded(t *testing.T) {
	x := []float64{1.2, -0.5, 3.1, 0.0, 2.2, -1.7, 0.9}
	y := []float64{0.3, 1.1, -2.0, 0.7, 1.9, -0.4, 0.1}

	rxy := PearsonCorrelation(x, y)
	ryx := PearsonCorrelation(y, x)
	assert.InDelta(t, rxy, ryx, 1e-12)
	assert.GreaterOrEqual(t, rxy, -1.0)
	assert.LessOrEqual(t, rxy, 1.0)
}

// buildAlignedSeries creates factor states and enriched points where the
// given factor is active on activeDays, and each day's pct change is taken
// from returns.
func buildAlignedSeries(factor models.Factor, activeDays []int, returns []float64) ([]models.FactorState, []models.EnrichedPoint) {
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	activeSet := make(map[int]bool)
	for _, d := range activeDays {
		activeSet[d] = true
	}

	states := make([]models.FactorState, len(returns))
	series := make([]models.EnrichedPoint, len(returns))
	for i := range returns {
		factors := make(map[models.Factor]bool)
		for _, f := range models.AllFactors() {
			factors[f] = false
		}
		factors[factor] = activeSet[i]
		date := base.AddDate(0, 0, i)
		states[i] = models.FactorState{Date: date, Factors: factors}
		series[i] = models.EnrichedPoint{
			PricePoint: models.PricePoint{Date: date, Close: 100, PctChange: returns[i]},
		}
	}
	return states, series
}

func TestCorrelateFactors(t *testing.T) {
	// Factor active on days 0 and 2; forward returns are next-day pct
	// changes: day0 -> +2.0, day2 -> +4.0.
	states, series := buildAlignedSeries(
		models.FactorVolumeSpike,
		[]int{0, 2},
		[]float64{0, 2.0, -1.0, 4.0, 0.5},
	)

	table := CorrelateFactors(states, series)
	entry, ok := table.Entries[models.FactorVolumeSpike]
	require.True(t, ok)

	assert.Equal(t, 2, entry.Occurrences)
	assert.InDelta(t, 3.0, entry.AvgReturn, 0.0001)
	assert.Equal(t, 4, table.SampleDays)

	// Inactive factors have zero stats but remain present.
	idle := table.Entries[models.FactorMacroTailwind]
	assert.Equal(t, 0, idle.Occurrences)
	assert.Equal(t, 0.0, idle.AvgReturn)
	assert.Equal(t, 0.0, idle.Correlation)
}

func TestCorrelateFactorsAllFactorsPresent(t *testing.T) {
	states, series := buildAlignedSeries(models.FactorBreakMA50, []int{1}, []float64{0, 1, 2})
	table := CorrelateFactors(states, series)
	assert.Len(t, table.Entries, len(models.AllFactors()))
}

func TestCorrelateFactorsAlwaysActiveHasZeroCorrelation(t *testing.T) {
	// Zero variance in the activation vector resolves to correlation 0.
	states, series := buildAlignedSeries(
		models.FactorMarketUp,
		[]int{0, 1, 2, 3},
		[]float64{0, 1.5, -0.5, 2.0},
	)
	table := CorrelateFactors(states, series)
	assert.Equal(t, 0.0, table.Entries[models.FactorMarketUp].Correlation)
}

func TestCorrelateFactorsEmptySeries(t *testing.T) {
	table := CorrelateFactors(nil, nil)
	assert.Equal(t, 0, table.SampleDays)
	assert.Len(t, table.Entries, len(models.AllFactors()))
}
