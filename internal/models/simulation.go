package models

import "time"

// ScenarioType names one of the three forward projections.
type ScenarioType string

const (
	ScenarioOptimistic  ScenarioType = "optimistic"
	ScenarioBase        ScenarioType = "base"
	ScenarioPessimistic ScenarioType = "pessimistic"
)

// SimulationParameters configures one price-path simulation.
// FactorStates is the static activation map driving every simulated day.
type SimulationParameters struct {
	Symbol          string             `json:"symbol"`
	InitialPrice    float64            `json:"initial_price"` // must be > 0
	TimeHorizon     int                `json:"time_horizon"`  // trading days, must be >= 1
	FactorWeights   map[Factor]float64 `json:"factor_weights,omitempty"`
	Threshold       *float64           `json:"threshold,omitempty"`
	FactorStates    map[Factor]bool    `json:"factor_states"`
	StockAnalysisID string             `json:"stock_analysis_id,omitempty"`
	StartDate       time.Time          `json:"start_date,omitempty"` // defaults to now
}

// SimulationConfig carries the simulator's policy constants. They are
// configuration rather than hardcoded values so tests and callers can
// adjust them.
type SimulationConfig struct {
	ScoreMethodWeight   float64 `json:"score_method_weight"`
	FactorMethodWeight  float64 `json:"factor_method_weight"`
	PatternMethodWeight float64 `json:"pattern_method_weight"`

	// BelowThresholdDamping scales the score-method signal when the score
	// does not clear the threshold.
	BelowThresholdDamping float64 `json:"below_threshold_damping"`

	// FallbackReturnPerScore is used when no historical data is available
	// to estimate the average return per score unit.
	FallbackReturnPerScore float64 `json:"fallback_return_per_score"`

	OptimisticMultiplier  float64 `json:"optimistic_multiplier"`
	PessimisticMultiplier float64 `json:"pessimistic_multiplier"`

	OptimisticProbability  float64 `json:"optimistic_probability"`
	BaseProbability        float64 `json:"base_probability"`
	PessimisticProbability float64 `json:"pessimistic_probability"`

	// PriceFloor prevents non-positive prices.
	PriceFloor float64 `json:"price_floor"`
}

// DefaultSimulationConfig returns the standard policy constants.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		ScoreMethodWeight:      0.40,
		FactorMethodWeight:     0.40,
		PatternMethodWeight:    0.20,
		BelowThresholdDamping:  0.5,
		FallbackReturnPerScore: 2.0,
		OptimisticMultiplier:   1.20,
		PessimisticMultiplier:  0.80,
		OptimisticProbability:  0.25,
		BaseProbability:        0.50,
		PessimisticProbability: 0.25,
		PriceFloor:             0.01,
	}
}

// PricePathPoint is one simulated trading day.
type PricePathPoint struct {
	Day                int       `json:"day"` // 1-based
	Date               time.Time `json:"date"`
	PredictedPrice     float64   `json:"predicted_price"`
	PriceChange        float64   `json:"price_change"`
	PriceChangePercent float64   `json:"price_change_percent"`
	Score              float64   `json:"score"`
	ActiveFactors      []Factor  `json:"active_factors"`
	Confidence         float64   `json:"confidence"`
}

// SimulationScenario is one named forward projection.
type SimulationScenario struct {
	Type               ScenarioType     `json:"type"`
	PricePath          []PricePathPoint `json:"price_path"`
	FinalPrice         float64          `json:"final_price"`
	TotalReturn        float64          `json:"total_return"`
	TotalReturnPercent float64          `json:"total_return_percent"`
	Probability        float64          `json:"probability"`
}

// ConfidenceInterval is a statistical band around projected final prices.
type ConfidenceInterval struct {
	ConfidenceLevel float64 `json:"confidence_level"` // 0.68 or 0.95
	LowerBound      float64 `json:"lower_bound"`      // floored at 0
	UpperBound      float64 `json:"upper_bound"`
}

// FactorBreakdown attributes the simulation inputs per factor.
type FactorBreakdown struct {
	Factor              Factor  `json:"factor"`
	Contribution        float64 `json:"contribution"` // weight if active, else 0
	Weight              float64 `json:"weight"`
	Active              bool    `json:"active"`
	HistoricalAvgReturn float64 `json:"historical_avg_return"`
}

// SimulationResult is the full simulation output.
type SimulationResult struct {
	ID                  string               `json:"id"`
	Symbol              string               `json:"symbol"`
	StockAnalysisID     string               `json:"stock_analysis_id,omitempty"`
	InitialPrice        float64              `json:"initial_price"`
	TimeHorizon         int                  `json:"time_horizon"`
	StartDate           time.Time            `json:"start_date"`
	Score               float64              `json:"score"`
	Tier                PredictionTier       `json:"tier"`
	BaseCase            []PricePathPoint     `json:"base_case"`
	Scenarios           []SimulationScenario `json:"scenarios"`
	ConfidenceIntervals []ConfidenceInterval `json:"confidence_intervals"`
	FactorBreakdowns    []FactorBreakdown    `json:"factor_breakdowns"`
	Narrative           string               `json:"narrative,omitempty"`
	ChartKey            string               `json:"chart_key,omitempty"` // key of the rendered scenario PNG
	GeneratedAt         time.Time            `json:"generated_at"`
}

// FinalPrice returns the last base-case price, or the initial price for a
// zero-length path.
func (r *SimulationResult) FinalPrice() float64 {
	if len(r.BaseCase) == 0 {
		return r.InitialPrice
	}
	return r.BaseCase[len(r.BaseCase)-1].PredictedPrice
}
