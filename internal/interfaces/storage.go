package interfaces

import (
	"context"

	"github.com/bobmcallan/quanta/internal/models"
)

// StorageManager coordinates the storage areas: an internal KV store for
// runtime configuration and a file-based market store for series, analyses
// and simulations.
type StorageManager interface {
	Internal() InternalStore
	Market() MarketDataStorage
	Close() error
}

// InternalStore provides system key-value storage backed by BadgerHold.
type InternalStore interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error
	DeleteSystemKV(ctx context.Context, key string) error
	Close() error
}

// MarketDataStorage persists market data and derived analysis artifacts as
// JSON files keyed by symbol.
type MarketDataStorage interface {
	SavePriceSeries(ctx context.Context, series *models.PriceSeries) error
	GetPriceSeries(ctx context.Context, symbol string) (*models.PriceSeries, error)

	SaveAnalysis(ctx context.Context, result *models.AnalysisResult) error
	GetAnalysis(ctx context.Context, symbol string) (*models.AnalysisResult, error)
	FindAnalysisByID(ctx context.Context, analysisID string) (*models.AnalysisResult, error)

	SaveSimulation(ctx context.Context, result *models.SimulationResult) error
	GetSimulation(ctx context.Context, id string) (*models.SimulationResult, error)
	ListSimulations(ctx context.Context, symbol string) ([]*models.SimulationResult, error)

	// WriteRaw stores an opaque artifact (e.g. a rendered chart) under key.
	WriteRaw(ctx context.Context, key string, data []byte) error

	Close() error
}
