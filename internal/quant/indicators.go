// Package quant implements the quantitative analysis core: technical
// indicators, factor classification, scoring, correlation and
// feature-importance statistics, pattern matching, and the price-path
// simulator. Everything here is pure: plain data in, plain data out.
package quant

import (
	"math"

	"github.com/bobmcallan/quanta/internal/models"
)

// Default indicator windows.
const (
	RSIWindow       = 14
	BollingerWindow = 20
	BollingerStdDev = 2.0
)

// MovingAverage returns a series the same length as values. Indices below
// window-1 are NaN; each defined element is the arithmetic mean of the
// trailing window values.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// RSISeries computes a Wilder-smoothed RSI over closes. Indices below
// window are NaN. A flat window (no gains and no losses) yields 50.
func RSISeries(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(closes) <= window {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

// rsiValue maps smoothed gain/loss averages to [0,100].
// Both zero means a flat series: 50 by convention.
func rsiValue(avgGain, avgLoss float64) float64 {
	if avgGain == 0 && avgLoss == 0 {
		return 50
	}
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// BollingerBandWidth returns (upper-lower)/middle per index, where middle
// is the window moving average and the bands sit stdMultiplier population
// standard deviations away. NaN before the window fills.
func BollingerBandWidth(closes []float64, window int, stdMultiplier float64) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 {
		return out
	}

	middle := MovingAverage(closes, window)
	for i := window - 1; i < len(closes); i++ {
		m := middle[i]
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := closes[j] - m
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(window))
		if m == 0 {
			out[i] = 0
			continue
		}
		out[i] = (2 * stdMultiplier * sd) / m
	}
	return out
}

// PctChange computes the daily percent change series. Index 0 is 0; any
// zero or non-finite previous close also yields 0 rather than an error.
func PctChange(closes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 || !models.IsDefined(prev) {
			out[i] = 0
			continue
		}
		out[i] = (closes[i] - prev) / prev * 100
	}
	return out
}

// FillPctChange recomputes each point's PctChange in place from closes.
func FillPctChange(points []models.PricePoint) {
	pct := PctChange(models.Closes(points))
	for i := range points {
		points[i].PctChange = pct[i]
	}
}

// Enrich attaches the standard IndicatorSet to every point. Values whose
// lookback window is unsatisfied are NaN, never fabricated.
func Enrich(points []models.PricePoint) []models.EnrichedPoint {
	closes := models.Closes(points)
	volumes := models.Volumes(points)

	ma20 := MovingAverage(closes, 20)
	ma50 := MovingAverage(closes, 50)
	ma200 := MovingAverage(closes, 200)
	rsi := RSISeries(closes, RSIWindow)
	volMA := MovingAverage(volumes, 20)
	bbw := BollingerBandWidth(closes, BollingerWindow, BollingerStdDev)

	out := make([]models.EnrichedPoint, len(points))
	for i, p := range points {
		out[i] = models.EnrichedPoint{
			PricePoint: p,
			Indicators: models.IndicatorSet{
				MA20:        ma20[i],
				MA50:        ma50[i],
				MA200:       ma200[i],
				RSI14:       rsi[i],
				VolumeMA20:  volMA[i],
				BandWidth20: bbw[i],
			},
		}
	}
	return out
}
