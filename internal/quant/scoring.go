package quant

import "github.com/bobmcallan/quanta/internal/models"

// Score combines one day's factor state with configured weights into a
// DailyScore. Factors absent from the weight map contribute 0; inactive
// factors contribute 0 but stay listed in the breakdown.
func Score(state models.FactorState, cfg models.ScoreConfig) models.DailyScore {
	score := 0.0
	count := 0
	breakdown := make(map[models.Factor]float64, len(models.AllFactors()))

	for _, f := range models.AllFactors() {
		contribution := 0.0
		if state.Factors[f] {
			count++
			contribution = cfg.Weights[f]
			score += contribution
		}
		breakdown[f] = contribution
	}

	return models.DailyScore{
		Date:           state.Date,
		Score:          score,
		FactorCount:    count,
		AboveThreshold: score >= cfg.Threshold && count >= cfg.MinFactorsRequired,
		Tier:           Tier(score, cfg),
		Confidence:     Confidence(score, cfg),
		Breakdown:      breakdown,
	}
}

// ScoreSeries scores every state in order.
func ScoreSeries(states []models.FactorState, cfg models.ScoreConfig) []models.DailyScore {
	out := make([]models.DailyScore, len(states))
	for i, s := range states {
		out[i] = Score(s, cfg)
	}
	return out
}

// Tier bands a score: HIGH_PROBABILITY at or above the threshold, MODERATE
// at or above the moderate bound (threshold/2 unless configured), LOW below.
func Tier(score float64, cfg models.ScoreConfig) models.PredictionTier {
	switch {
	case score >= cfg.Threshold:
		return models.TierHighProbability
	case score >= cfg.ModerateBound():
		return models.TierModerate
	default:
		return models.TierLow
	}
}

// Confidence normalizes a score against the maximum attainable score,
// clipped to [0,1]. A non-positive weight sum yields 0.
func Confidence(score float64, cfg models.ScoreConfig) float64 {
	max := cfg.MaxScore()
	if max <= 0 {
		return 0
	}
	c := score / max
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
