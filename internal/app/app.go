// Package app wires configuration, storage, clients and services into a
// single application core shared by all entry points.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/quanta/internal/clients/eodhd"
	"github.com/bobmcallan/quanta/internal/clients/gemini"
	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/services/analysis"
	"github.com/bobmcallan/quanta/internal/services/simulation"
	"github.com/bobmcallan/quanta/internal/storage"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config            *common.Config
	Logger            *common.Logger
	Storage           interfaces.StorageManager
	MarketClient      interfaces.MarketDataClient
	NarrativeClient   interfaces.NarrativeClient
	AnalysisService   interfaces.AnalysisService
	SimulationService interfaces.SimulationService
	StartupTime       time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, QUANTA_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("QUANTA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "quanta.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/quanta.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage and log paths to the binary directory
	if config.Storage.Internal.Path != "" && !filepath.IsAbs(config.Storage.Internal.Path) {
		config.Storage.Internal.Path = filepath.Join(binDir, config.Storage.Internal.Path)
	}
	if config.Storage.Market.Path != "" && !filepath.IsAbs(config.Storage.Market.Path) {
		config.Storage.Market.Path = filepath.Join(binDir, config.Storage.Market.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Resolve API keys: environment, then system KV, then config file
	ctx := context.Background()
	internalStore := storageManager.Internal()

	eodhdKey, err := common.ResolveAPIKey(ctx, internalStore, "eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - market data fetching will be unavailable")
	}

	geminiKey, err := common.ResolveAPIKey(ctx, internalStore, "gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("Gemini API key not configured - simulation narratives will be empty")
	}

	var marketClient interfaces.MarketDataClient
	if eodhdKey != "" {
		marketClient = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	var narrativeClient interfaces.NarrativeClient
	if geminiKey != "" {
		geminiClient, err := gemini.NewClient(ctx, geminiKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			narrativeClient = geminiClient
		}
	}

	analysisService := analysis.NewService(storageManager, marketClient, logger, config.Analysis)
	simulationService := simulation.NewService(storageManager, marketClient, narrativeClient, logger)

	a := &App{
		Config:            config,
		Logger:            logger,
		Storage:           storageManager,
		MarketClient:      marketClient,
		NarrativeClient:   narrativeClient,
		AnalysisService:   analysisService,
		SimulationService: simulationService,
		StartupTime:       startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close shuts down storage and releases resources.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing storage")
		}
	}
	a.Logger.Info().Msg("App closed")
}
