package models

import "time"

// Factor is a named boolean market/technical condition evaluated per day.
type Factor string

// The fixed factor set. Every FactorState carries all of these keys.
const (
	FactorVolumeSpike    Factor = "volume_spike"
	FactorBreakMA50      Factor = "break_ma50"
	FactorBreakMA200     Factor = "break_ma200"
	FactorRSIOver60      Factor = "rsi_over_60"
	FactorMarketUp       Factor = "market_up"
	FactorSectorUp       Factor = "sector_up"
	FactorEarningsWindow Factor = "earnings_window"
	FactorNewsPositive   Factor = "news_positive"
	FactorShortCovering  Factor = "short_covering"
	FactorMacroTailwind  Factor = "macro_tailwind"
)

// AllFactors lists the factor set in canonical order.
func AllFactors() []Factor {
	return []Factor{
		FactorVolumeSpike,
		FactorBreakMA50,
		FactorBreakMA200,
		FactorRSIOver60,
		FactorMarketUp,
		FactorSectorUp,
		FactorEarningsWindow,
		FactorNewsPositive,
		FactorShortCovering,
		FactorMacroTailwind,
	}
}

// FactorState maps every factor to its activation for one day.
type FactorState struct {
	Date    time.Time       `json:"date"`
	Factors map[Factor]bool `json:"factors"`
}

// ActiveFactors returns the active subset in canonical order.
func (s FactorState) ActiveFactors() []Factor {
	var active []Factor
	for _, f := range AllFactors() {
		if s.Factors[f] {
			active = append(active, f)
		}
	}
	return active
}

// ActiveCount returns the number of active factors.
func (s FactorState) ActiveCount() int {
	n := 0
	for _, on := range s.Factors {
		if on {
			n++
		}
	}
	return n
}

// FactorStateTable is the persisted classification output for a symbol.
type FactorStateTable struct {
	Symbol      string        `json:"symbol"`
	States      []FactorState `json:"states"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ScoreConfig controls scoring: factor weights, the prediction threshold,
// and the minimum active-factor gate. Weights need not sum to 1.
type ScoreConfig struct {
	Weights            map[Factor]float64 `json:"weights"`
	Threshold          float64            `json:"threshold"`
	MinFactorsRequired int                `json:"min_factors_required"`
	// ModerateBand is the lower bound of the MODERATE prediction tier.
	// Zero means "derive as Threshold * 0.5".
	ModerateBand float64 `json:"moderate_band,omitempty"`
}

// DefaultScoreConfig returns the standard weighting used when a caller
// supplies none. Every field is overridable.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		Weights: map[Factor]float64{
			FactorVolumeSpike:    1.5,
			FactorBreakMA50:      2.0,
			FactorBreakMA200:     2.5,
			FactorRSIOver60:      1.0,
			FactorMarketUp:       1.0,
			FactorSectorUp:       1.0,
			FactorEarningsWindow: 0.5,
			FactorNewsPositive:   1.0,
			FactorShortCovering:  1.5,
			FactorMacroTailwind:  1.0,
		},
		Threshold:          5.0,
		MinFactorsRequired: 2,
	}
}

// MaxScore returns the sum of all configured weights (the maximum
// attainable score), used to normalize confidence.
func (c ScoreConfig) MaxScore() float64 {
	sum := 0.0
	for _, w := range c.Weights {
		sum += w
	}
	return sum
}

// ModerateBound resolves the MODERATE tier lower bound.
func (c ScoreConfig) ModerateBound() float64 {
	if c.ModerateBand > 0 {
		return c.ModerateBand
	}
	return c.Threshold * 0.5
}

// PredictionTier classifies a daily score relative to the threshold.
type PredictionTier string

const (
	TierHighProbability PredictionTier = "HIGH_PROBABILITY"
	TierModerate        PredictionTier = "MODERATE"
	TierLow             PredictionTier = "LOW"
)

// DailyScore is the scoring output for one day.
type DailyScore struct {
	Date           time.Time          `json:"date"`
	Score          float64            `json:"score"`
	FactorCount    int                `json:"factor_count"`
	AboveThreshold bool               `json:"above_threshold"`
	Tier           PredictionTier     `json:"tier"`
	Confidence     float64            `json:"confidence"`
	Breakdown      map[Factor]float64 `json:"breakdown"` // weight if active, else 0; all factors listed
}

// DailyScoreTable is the persisted scoring output for a symbol.
type DailyScoreTable struct {
	Symbol      string       `json:"symbol"`
	Config      ScoreConfig  `json:"config"`
	Scores      []DailyScore `json:"scores"`
	GeneratedAt time.Time    `json:"generated_at"`
}
