package quant

import (
	"math"
	"time"

	"github.com/bobmcallan/quanta/internal/models"
)

// CorrelateFactors computes per-factor statistics over an aligned factor
// state and enriched series: active-day count, mean next-day percent change
// on active days, and Pearson correlation between the 0/1 activation vector
// and the next-day return vector. The last day has no forward return and
// contributes no observation.
func CorrelateFactors(states []models.FactorState, series []models.EnrichedPoint) models.CorrelationTable {
	n := len(states)
	if len(series) < n {
		n = len(series)
	}

	table := models.CorrelationTable{
		Entries:     make(map[models.Factor]models.CorrelationEntry, len(models.AllFactors())),
		SampleDays:  0,
		GeneratedAt: time.Now(),
	}

	// Forward return for day i is day i+1's pct change.
	sample := 0
	if n > 1 {
		sample = n - 1
	}
	table.SampleDays = sample

	returns := make([]float64, sample)
	for i := 0; i < sample; i++ {
		returns[i] = series[i+1].PctChange
	}

	for _, f := range models.AllFactors() {
		activation := make([]float64, sample)
		occurrences := 0
		sumReturn := 0.0
		activeDays := 0
		for i := 0; i < n; i++ {
			active := states[i].Factors[f]
			if active {
				occurrences++
			}
			if i < sample {
				if active {
					activation[i] = 1
					sumReturn += returns[i]
					activeDays++
				}
			}
		}

		avgReturn := 0.0
		if activeDays > 0 {
			avgReturn = sumReturn / float64(activeDays)
		}

		table.Entries[f] = models.CorrelationEntry{
			Factor:      f,
			Occurrences: occurrences,
			AvgReturn:   avgReturn,
			Correlation: PearsonCorrelation(activation, returns),
		}
	}

	return table
}

// PearsonCorrelation computes the product-moment correlation of two
// equal-length vectors. Mismatched lengths, empty input, or zero variance
// in either vector yield 0.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	n := float64(len(x))

	var sumX, sumY float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}

	r := cov / math.Sqrt(varX*varY)
	if !models.IsDefined(r) {
		return 0
	}
	return r
}
