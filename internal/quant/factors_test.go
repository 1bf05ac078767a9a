package quant

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/quanta/internal/models"
)

func enrichedDay(date time.Time, close float64, volume int64, ind models.IndicatorSet) models.EnrichedPoint {
	return models.EnrichedPoint{
		PricePoint: models.PricePoint{Date: date, Close: close, Volume: volume},
		Indicators: ind,
	}
}

func TestClassifyFactorsTechnical(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		point    models.EnrichedPoint
		factor   models.Factor
		expected bool
	}{
		{
			name: "volume spike above 1.5x average",
			point: enrichedDay(date, 100, 2000000, models.IndicatorSet{
				VolumeMA20: 1000000, MA50: math.NaN(), MA200: math.NaN(), RSI14: math.NaN(), MA20: math.NaN(), BandWidth20: math.NaN(),
			}),
			factor:   models.FactorVolumeSpike,
			expected: true,
		},
		{
			name: "volume at exactly 1.5x is not a spike",
			point: enrichedDay(date, 100, 1500000, models.IndicatorSet{
				VolumeMA20: 1000000, MA50: math.NaN(), MA200: math.NaN(), RSI14: math.NaN(), MA20: math.NaN(), BandWidth20: math.NaN(),
			}),
			factor:   models.FactorVolumeSpike,
			expected: false,
		},
		{
			name: "close above MA50",
			point: enrichedDay(date, 105, 0, models.IndicatorSet{
				MA50: 100, VolumeMA20: math.NaN(), MA200: math.NaN(), RSI14: math.NaN(), MA20: math.NaN(), BandWidth20: math.NaN(),
			}),
			factor:   models.FactorBreakMA50,
			expected: true,
		},
		{
			name: "close above MA200",
			point: enrichedDay(date, 105, 0, models.IndicatorSet{
				MA200: 100, VolumeMA20: math.NaN(), MA50: math.NaN(), RSI14: math.NaN(), MA20: math.NaN(), BandWidth20: math.NaN(),
			}),
			factor:   models.FactorBreakMA200,
			expected: true,
		},
		{
			name: "RSI over 60",
			point: enrichedDay(date, 100, 0, models.IndicatorSet{
				RSI14: 65, VolumeMA20: math.NaN(), MA50: math.NaN(), MA200: math.NaN(), MA20: math.NaN(), BandWidth20: math.NaN(),
			}),
			factor:   models.FactorRSIOver60,
			expected: true,
		},
		{
			name: "undefined RSI is inactive",
			point: enrichedDay(date, 100, 0, models.IndicatorSet{
				RSI14: math.NaN(), VolumeMA20: math.NaN(), MA50: math.NaN(), MA200: math.NaN(), MA20: math.NaN(), BandWidth20: math.NaN(),
			}),
			factor:   models.FactorRSIOver60,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := ClassifyFactors([]models.EnrichedPoint{tt.point}, nil, DefaultClassifierOptions())
			require.Len(t, states, 1)
			assert.Equal(t, tt.expected, states[0].Factors[tt.factor])
		})
	}
}

func TestClassifyFactorsContext(t *testing.T) {
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	key := models.DateKey(date)
	point := enrichedDay(date, 100, 0, models.IndicatorSet{
		MA20: math.NaN(), MA50: math.NaN(), MA200: math.NaN(), RSI14: math.NaN(), VolumeMA20: math.NaN(), BandWidth20: math.NaN(),
	})

	mc := &models.MarketContext{
		MarketIndexPct: map[string]float64{key: 0.8},
		SectorIndexPct: map[string]float64{key: -0.3},
		EarningsDates:  []time.Time{date.AddDate(0, 0, 2)},
		NewsSentiment:  map[string]string{key: "positive"},
		ShortCovering:  map[string]bool{key: true},
		MacroTailwind:  map[string]bool{key: false},
	}

	states := ClassifyFactors([]models.EnrichedPoint{point}, mc, DefaultClassifierOptions())
	require.Len(t, states, 1)
	factors := states[0].Factors

	assert.True(t, factors[models.FactorMarketUp])
	assert.False(t, factors[models.FactorSectorUp])
	assert.True(t, factors[models.FactorEarningsWindow])
	assert.True(t, factors[models.FactorNewsPositive])
	assert.True(t, factors[models.FactorShortCovering])
	assert.False(t, factors[models.FactorMacroTailwind])
}

func TestClassifyFactorsMissingContextIsInactive(t *testing.T) {
	point := enrichedDay(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 100, 0, models.IndicatorSet{
		MA20: math.NaN(), MA50: math.NaN(), MA200: math.NaN(), RSI14: math.NaN(), VolumeMA20: math.NaN(), BandWidth20: math.NaN(),
	})

	states := ClassifyFactors([]models.EnrichedPoint{point}, nil, DefaultClassifierOptions())
	require.Len(t, states, 1)

	// Every factor key must be present and false.
	assert.Len(t, states[0].Factors, len(models.AllFactors()))
	for _, f := range models.AllFactors() {
		active, ok := states[0].Factors[f]
		assert.True(t, ok, "factor %s missing from state", f)
		assert.False(t, active, "factor %s should be inactive without context", f)
	}
}

func TestWithinEarningsWindow(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		earnings []time.Time
		window   int
		expected bool
	}{
		{"inside window", []time.Time{date.AddDate(0, 0, 3)}, 3, true},
		{"outside window", []time.Time{date.AddDate(0, 0, 4)}, 3, false},
		{"before date inside window", []time.Time{date.AddDate(0, 0, -2)}, 3, true},
		{"no earnings dates", nil, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, withinEarningsWindow(date, tt.earnings, tt.window))
		})
	}
}
