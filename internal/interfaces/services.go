package interfaces

import (
	"context"

	"github.com/bobmcallan/quanta/internal/models"
)

// AnalysisService runs the full analysis pipeline for a symbol: price data,
// indicators, factor classification, scoring and factor correlations.
type AnalysisService interface {
	// AnalyzeSeries analyzes the last days trading days for symbol, fetching
	// market data when the stored series is missing or stale.
	AnalyzeSeries(ctx context.Context, symbol string, days int) (*models.AnalysisResult, error)

	// FeatureImportance ranks indicator features by their power to predict a
	// next-day move of at least params.TargetMovePct.
	FeatureImportance(ctx context.Context, params models.FeatureImportanceParams) (*models.FeatureImportanceResult, error)
}

// SimulationService projects forward price paths from a factor activation
// state and persists the results.
type SimulationService interface {
	Simulate(ctx context.Context, params models.SimulationParameters) (*models.SimulationResult, error)
	GetSimulation(ctx context.Context, id string) (*models.SimulationResult, error)
}
