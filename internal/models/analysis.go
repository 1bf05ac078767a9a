package models

import "time"

// CorrelationEntry links one factor's activation history to forward returns.
type CorrelationEntry struct {
	Factor      Factor  `json:"factor"`
	Occurrences int     `json:"occurrences"` // days the factor was active
	AvgReturn   float64 `json:"avg_return"`  // mean next-day % change over active days
	Correlation float64 `json:"correlation"` // Pearson vs next-day % change, 0 on zero variance
}

// CorrelationTable holds per-factor correlation statistics for a symbol.
type CorrelationTable struct {
	Symbol      string                      `json:"symbol"`
	Entries     map[Factor]CorrelationEntry `json:"entries"`
	SampleDays  int                         `json:"sample_days"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// FeatureImportanceItem ranks one lagged feature's predictive value.
type FeatureImportanceItem struct {
	Feature         string  `json:"feature"`
	Correlation     float64 `json:"correlation"` // absolute Pearson vs the binary target
	InformationGain float64 `json:"information_gain"`
	Importance      float64 `json:"importance"` // 0.6*norm(correlation) + 0.4*norm(gain)
	Weight          float64 `json:"weight"`     // alias of importance for scoring reuse
}

// FeatureImportanceResult is the ranked output of the feature analyzer.
type FeatureImportanceResult struct {
	Symbol        string                  `json:"symbol"`
	TargetMovePct float64                 `json:"target_move_pct"` // close must exceed open by this %
	Items         []FeatureImportanceItem `json:"items"`           // sorted descending by importance
	DaysUsed      int                     `json:"days_used"`
	RowsUsed      int                     `json:"rows_used"` // valid rows after lagged-feature filtering
	GeneratedAt   time.Time               `json:"generated_at"`
}

// FeatureImportanceParams configures a feature-importance request.
// Either Symbol or AnalysisID must be supplied.
type FeatureImportanceParams struct {
	Symbol        string  `json:"symbol,omitempty"`
	AnalysisID    string  `json:"analysis_id,omitempty"`
	TargetMovePct float64 `json:"target_move_pct,omitempty"` // default 1.0
	TopN          int     `json:"top_n,omitempty"`           // 0 = all
}

// HistoricalPatternMatch is a past day whose active-factor set overlaps
// the current state.
type HistoricalPatternMatch struct {
	Date         time.Time `json:"date"`
	Similarity   float64   `json:"similarity"` // 0..1
	ActualReturn float64   `json:"actual_return"`
	Factors      []Factor  `json:"factors"` // active set on that day
}

// AnalysisResult bundles the full pipeline output for a symbol.
type AnalysisResult struct {
	Symbol       string            `json:"symbol"`
	AnalysisID   string            `json:"analysis_id,omitempty"`
	Days         int               `json:"days"`
	Enriched     []EnrichedPoint   `json:"enriched,omitempty"`
	FactorStates []FactorState     `json:"factor_states"`
	Scores       []DailyScore      `json:"scores"`
	Correlations *CorrelationTable `json:"correlations,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
}
