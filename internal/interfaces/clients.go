package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/quanta/internal/models"
)

// MarketDataClient fetches end-of-day market data from an external provider.
type MarketDataClient interface {
	// GetEODData returns daily bars for symbol between from and to inclusive,
	// oldest first.
	GetEODData(ctx context.Context, symbol string, from, to time.Time) ([]models.PricePoint, error)

	// GetLastPrice returns the most recent traded price for symbol.
	GetLastPrice(ctx context.Context, symbol string) (float64, error)
}

// NarrativeClient generates plain-language commentary for simulation results.
type NarrativeClient interface {
	GenerateSimulationNarrative(ctx context.Context, result *models.SimulationResult) (string, error)
}
