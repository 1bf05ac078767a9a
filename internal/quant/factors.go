package quant

import (
	"time"

	"github.com/bobmcallan/quanta/internal/models"
)

// ClassifierOptions holds the factor thresholds.
type ClassifierOptions struct {
	VolumeSpikeRatio   float64 // volume > ratio * volumeMA20
	RSIThreshold       float64 // rsi > threshold
	EarningsWindowDays int     // days either side of a known earnings date
}

// DefaultClassifierOptions returns the reference thresholds.
func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{
		VolumeSpikeRatio:   1.5,
		RSIThreshold:       60,
		EarningsWindowDays: 3,
	}
}

// ClassifyFactors evaluates every factor for every day of an enriched
// series. Each factor is independent; when its required context is absent
// the factor is inactive, never an error. The returned states always carry
// all factor keys.
func ClassifyFactors(series []models.EnrichedPoint, mc *models.MarketContext, opts ClassifierOptions) []models.FactorState {
	states := make([]models.FactorState, len(series))
	for i, p := range series {
		states[i] = classifyDay(p, mc, opts)
	}
	return states
}

// classifyDay builds the FactorState for one enriched point.
func classifyDay(p models.EnrichedPoint, mc *models.MarketContext, opts ClassifierOptions) models.FactorState {
	key := models.DateKey(p.Date)
	factors := make(map[models.Factor]bool, len(models.AllFactors()))
	for _, f := range models.AllFactors() {
		factors[f] = false
	}

	ind := p.Indicators
	if models.IsDefined(ind.VolumeMA20) && ind.VolumeMA20 > 0 && p.Volume > 0 {
		factors[models.FactorVolumeSpike] = float64(p.Volume) > opts.VolumeSpikeRatio*ind.VolumeMA20
	}
	if models.IsDefined(ind.MA50) {
		factors[models.FactorBreakMA50] = p.Close > ind.MA50
	}
	if models.IsDefined(ind.MA200) {
		factors[models.FactorBreakMA200] = p.Close > ind.MA200
	}
	if models.IsDefined(ind.RSI14) {
		factors[models.FactorRSIOver60] = ind.RSI14 > opts.RSIThreshold
	}

	if mc != nil {
		if pct, ok := mc.MarketIndexPct[key]; ok {
			factors[models.FactorMarketUp] = pct > 0
		}
		if pct, ok := mc.SectorIndexPct[key]; ok {
			factors[models.FactorSectorUp] = pct > 0
		}
		factors[models.FactorEarningsWindow] = withinEarningsWindow(p.Date, mc.EarningsDates, opts.EarningsWindowDays)
		if sentiment, ok := mc.NewsSentiment[key]; ok {
			factors[models.FactorNewsPositive] = sentiment == "positive"
		}
		if v, ok := mc.ShortCovering[key]; ok {
			factors[models.FactorShortCovering] = v
		}
		if v, ok := mc.MacroTailwind[key]; ok {
			factors[models.FactorMacroTailwind] = v
		}
	}

	return models.FactorState{Date: p.Date, Factors: factors}
}

// withinEarningsWindow reports whether date falls within windowDays of any
// known earnings date.
func withinEarningsWindow(date time.Time, earnings []time.Time, windowDays int) bool {
	if windowDays < 0 {
		return false
	}
	for _, e := range earnings {
		diff := date.Sub(e)
		if diff < 0 {
			diff = -diff
		}
		if diff <= time.Duration(windowDays)*24*time.Hour {
			return true
		}
	}
	return false
}
