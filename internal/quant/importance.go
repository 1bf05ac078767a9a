package quant

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bobmcallan/quanta/internal/models"
)

// Feature names produced by buildFeatureRows, order fixed. Only the
// short-window indicators participate: the 50/200-day averages would mark
// every row of a minimum-length series as missing and starve the dataset.
var featureNames = []string{
	"ma20",
	"rsi14",
	"volume_ma20",
	"bollinger_band_width20",
	"pct_change",
	"volume",
}

// featureRow is one valid observation: yesterday's numeric features and
// whether today's close exceeded today's open by the target percentage.
type featureRow struct {
	features []float64
	target   bool
}

// ComputeFeatureImportance ranks the lagged indicator features by how well
// they predict a same-day move of targetMovePct from open to close.
// Importance blends normalized absolute Pearson correlation (0.6) with
// normalized median-split information gain (0.4). Results are sorted
// descending; topN > 0 truncates.
func ComputeFeatureImportance(series []models.EnrichedPoint, targetMovePct float64, topN int) (*models.FeatureImportanceResult, error) {
	if len(series) < MinRawDays {
		return nil, fmt.Errorf("%w: %d days of history, need at least %d", ErrInsufficientData, len(series), MinRawDays)
	}

	rows := buildFeatureRows(series, targetMovePct)
	if len(rows) < MinFeatureRows {
		return nil, fmt.Errorf("%w: %d valid feature rows after filtering, need at least %d", ErrInsufficientData, len(rows), MinFeatureRows)
	}

	target := make([]float64, len(rows))
	targetBits := make([]bool, len(rows))
	for i, r := range rows {
		targetBits[i] = r.target
		if r.target {
			target[i] = 1
		}
	}

	correlations := make([]float64, len(featureNames))
	gains := make([]float64, len(featureNames))
	for j := range featureNames {
		column := make([]float64, len(rows))
		for i, r := range rows {
			column[i] = r.features[j]
		}
		correlations[j] = math.Abs(PearsonCorrelation(column, target))
		gains[j] = InformationGain(column, targetBits)
	}

	normCorr := Normalize(correlations)
	normGain := Normalize(gains)

	items := make([]models.FeatureImportanceItem, len(featureNames))
	for j, name := range featureNames {
		importance := 0.6*normCorr[j] + 0.4*normGain[j]
		items[j] = models.FeatureImportanceItem{
			Feature:         name,
			Correlation:     correlations[j],
			InformationGain: gains[j],
			Importance:      importance,
			Weight:          importance,
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Importance > items[b].Importance
	})
	if topN > 0 && topN < len(items) {
		items = items[:topN]
	}

	return &models.FeatureImportanceResult{
		TargetMovePct: targetMovePct,
		Items:         items,
		DaysUsed:      len(series),
		RowsUsed:      len(rows),
		GeneratedAt:   time.Now(),
	}, nil
}

// buildFeatureRows assembles the lagged dataset: day i's row uses day i-1's
// feature values to predict day i's open-to-close move. Rows with any
// undefined feature, or without a usable open, are dropped.
func buildFeatureRows(series []models.EnrichedPoint, targetMovePct float64) []featureRow {
	var rows []featureRow
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		cur := series[i]
		if cur.Open <= 0 {
			continue
		}

		features := []float64{
			prev.Indicators.MA20,
			prev.Indicators.RSI14,
			prev.Indicators.VolumeMA20,
			prev.Indicators.BandWidth20,
			prev.PctChange,
			float64(prev.Volume),
		}

		valid := true
		for _, v := range features {
			if !models.IsDefined(v) {
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		rows = append(rows, featureRow{
			features: features,
			target:   cur.Close > cur.Open*(1+targetMovePct/100),
		})
	}
	return rows
}

// InformationGain measures the entropy reduction in a binary target from
// splitting the feature at its median (buckets "<= median" and "> median").
// A constant target has zero base entropy, so the gain is 0.
func InformationGain(feature []float64, target []bool) float64 {
	if len(feature) != len(target) || len(feature) == 0 {
		return 0
	}

	base := binaryEntropy(positiveRate(target))
	if base == 0 {
		return 0
	}

	median := medianOf(feature)
	var lowTarget, highTarget []bool
	for i, v := range feature {
		if v <= median {
			lowTarget = append(lowTarget, target[i])
		} else {
			highTarget = append(highTarget, target[i])
		}
	}

	n := float64(len(target))
	conditional := 0.0
	if len(lowTarget) > 0 {
		conditional += float64(len(lowTarget)) / n * binaryEntropy(positiveRate(lowTarget))
	}
	if len(highTarget) > 0 {
		conditional += float64(len(highTarget)) / n * binaryEntropy(positiveRate(highTarget))
	}

	gain := base - conditional
	if gain < 0 {
		return 0
	}
	return gain
}

// Normalize divides every element by the vector maximum, mapping the max
// to 1. An all-zero (or non-positive-max) vector is returned as all zeros.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / max
	}
	return out
}

func positiveRate(bits []bool) float64 {
	if len(bits) == 0 {
		return 0
	}
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return float64(n) / float64(len(bits))
}

// binaryEntropy is -p*log2(p) - (1-p)*log2(1-p), with 0 at p in {0,1}.
func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
