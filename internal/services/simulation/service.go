// Package simulation provides the forward price-path simulation service.
package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
	"github.com/bobmcallan/quanta/internal/quant"
)

// scoreConfigKey is the system KV slot the analysis pipeline also reads, so
// both pipelines score a symbol with the same runtime override.
const scoreConfigKey = "score_config"

// Service implements SimulationService
type Service struct {
	storage   interfaces.StorageManager
	market    interfaces.MarketDataClient
	narrative interfaces.NarrativeClient
	logger    *common.Logger
}

// NewService creates a new simulation service. The narrative client may be
// nil; simulations then carry a placeholder narrative.
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, narrative interfaces.NarrativeClient, logger *common.Logger) *Service {
	return &Service{
		storage:   storage,
		market:    market,
		narrative: narrative,
		logger:    logger,
	}
}

// Simulate validates params, runs the price-path simulator against the
// stored analysis history, and persists the result with a narrative and a
// rendered scenario chart.
func (s *Service) Simulate(ctx context.Context, params models.SimulationParameters) (*models.SimulationResult, error) {
	params.Symbol = strings.ToUpper(strings.TrimSpace(params.Symbol))
	if params.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", quant.ErrMissingParameter)
	}
	if params.TimeHorizon < 1 {
		return nil, fmt.Errorf("time horizon must be at least 1 trading day, got %d", params.TimeHorizon)
	}

	if params.InitialPrice <= 0 {
		if s.market == nil {
			return nil, fmt.Errorf("initial price not supplied and no market data client configured for '%s'", params.Symbol)
		}
		price, err := s.market.GetLastPrice(ctx, params.Symbol)
		if err != nil {
			return nil, fmt.Errorf("initial price not supplied and no recent price for '%s': %w", params.Symbol, err)
		}
		params.InitialPrice = price
	}

	history := s.loadHistory(ctx, params)

	cfg := models.DefaultSimulationConfig()
	scoreCfg := s.loadScoreConfig(ctx)

	if params.FactorStates == nil && history.latestState != nil {
		params.FactorStates = history.latestState
	}

	returnPerScore := quant.EstimateReturnPerScore(history.scores, history.enriched, cfg.FallbackReturnPerScore)

	var matches []models.HistoricalPatternMatch
	current := activeFactors(params.FactorStates)
	if len(history.states) > 0 {
		matches = quant.MatchPatterns(current, history.states, history.enriched, quant.DefaultPatternMatchOptions())
	}

	result, err := quant.Simulate(params, cfg, scoreCfg, history.correlations, matches, returnPerScore)
	if err != nil {
		return nil, err
	}
	result.ID = uuid.NewString()

	result.Narrative = s.generateNarrative(ctx, result)

	if chartKey, err := s.renderChart(ctx, result); err != nil {
		s.logger.Warn().Str("simulation_id", result.ID).Err(err).Msg("Chart render failed")
	} else {
		result.ChartKey = chartKey
	}

	if err := s.storage.Market().SaveSimulation(ctx, result); err != nil {
		s.logger.Warn().Str("simulation_id", result.ID).Err(err).Msg("Failed to persist simulation")
	}

	s.logger.Info().
		Str("simulation_id", result.ID).
		Str("symbol", result.Symbol).
		Int("horizon", result.TimeHorizon).
		Float64("final_price", result.FinalPrice()).
		Msg("Simulation complete")

	return result, nil
}

// GetSimulation returns a stored simulation by ID.
func (s *Service) GetSimulation(ctx context.Context, id string) (*models.SimulationResult, error) {
	return s.storage.Market().GetSimulation(ctx, id)
}

// simulationHistory bundles the stored analysis tables the simulator draws
// on. All fields may be empty; the simulator degrades to fallbacks.
type simulationHistory struct {
	enriched     []models.EnrichedPoint
	states       []models.FactorState
	scores       []models.DailyScore
	correlations models.CorrelationTable
	latestState  map[models.Factor]bool
}

// loadHistory fetches the stored analysis for the simulation target, by
// analysis ID when given, otherwise by symbol. A missing analysis is not an
// error: the simulation runs on fallback constants.
func (s *Service) loadHistory(ctx context.Context, params models.SimulationParameters) simulationHistory {
	var analysis *models.AnalysisResult
	var err error
	if params.StockAnalysisID != "" {
		analysis, err = s.storage.Market().FindAnalysisByID(ctx, params.StockAnalysisID)
	} else {
		analysis, err = s.storage.Market().GetAnalysis(ctx, params.Symbol)
	}
	if err != nil {
		s.logger.Debug().Str("symbol", params.Symbol).Err(err).Msg("No stored analysis, simulating without history")
		return simulationHistory{correlations: models.CorrelationTable{Entries: map[models.Factor]models.CorrelationEntry{}}}
	}

	h := simulationHistory{
		enriched: analysis.Enriched,
		states:   analysis.FactorStates,
		scores:   analysis.Scores,
	}
	if analysis.Correlations != nil {
		h.correlations = *analysis.Correlations
	}
	if h.correlations.Entries == nil {
		h.correlations.Entries = map[models.Factor]models.CorrelationEntry{}
	}
	if len(analysis.FactorStates) > 0 {
		h.latestState = analysis.FactorStates[len(analysis.FactorStates)-1].Factors
	}
	return h
}

// loadScoreConfig reads the runtime score configuration override from the
// system KV store, falling back to the defaults.
func (s *Service) loadScoreConfig(ctx context.Context) models.ScoreConfig {
	raw, err := s.storage.Internal().GetSystemKV(ctx, scoreConfigKey)
	if err != nil || raw == "" {
		return models.DefaultScoreConfig()
	}
	var cfg models.ScoreConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil || len(cfg.Weights) == 0 {
		s.logger.Warn().Err(err).Msg("Malformed score config override, using defaults")
		return models.DefaultScoreConfig()
	}
	return cfg
}

// generateNarrative asks the narrative client for commentary. Failures are
// surfaced in the result text, never as errors.
func (s *Service) generateNarrative(ctx context.Context, result *models.SimulationResult) string {
	if s.narrative == nil {
		return "Narrative generation is not configured."
	}
	text, err := s.narrative.GenerateSimulationNarrative(ctx, result)
	if err != nil {
		s.logger.Warn().Str("simulation_id", result.ID).Err(err).Msg("Narrative generation failed")
		return fmt.Sprintf("Narrative generation failed: %v", err)
	}
	return text
}

// renderChart renders the scenario chart PNG into the market store and
// returns its key.
func (s *Service) renderChart(ctx context.Context, result *models.SimulationResult) (string, error) {
	png, err := RenderScenarioChart(result)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("charts/%s.png", result.ID)
	if err := s.storage.Market().WriteRaw(ctx, key, png); err != nil {
		return "", err
	}
	return key, nil
}

func activeFactors(states map[models.Factor]bool) []models.Factor {
	var active []models.Factor
	for _, f := range models.AllFactors() {
		if states[f] {
			active = append(active, f)
		}
	}
	return active
}

// Ensure Service implements SimulationService
var _ interfaces.SimulationService = (*Service)(nil)
