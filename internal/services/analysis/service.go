// Package analysis provides the symbol analysis pipeline: price data,
// indicators, factor classification, scoring and factor correlations.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
	"github.com/bobmcallan/quanta/internal/quant"
)

// System KV keys consulted at analysis time.
const (
	scoreConfigKey      = "score_config"
	marketContextPrefix = "market_context:"
)

// Service implements AnalysisService
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataClient
	logger  *common.Logger
	cfg     common.AnalysisConfig
}

// NewService creates a new analysis service
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, logger *common.Logger, cfg common.AnalysisConfig) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
		cfg:     cfg,
	}
}

// AnalyzeSeries runs the full pipeline for symbol over the last days trading
// days and persists the result as an idempotent snapshot.
func (s *Service) AnalyzeSeries(ctx context.Context, symbol string, days int) (*models.AnalysisResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", quant.ErrMissingParameter)
	}
	if days <= 0 {
		days = s.cfg.DefaultDays
	}

	series, err := s.loadSeries(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	points := series.Points
	if len(points) > days {
		points = points[len(points)-days:]
	}
	if len(points) < quant.MinRawDays {
		return nil, fmt.Errorf("%w: %d days of history for '%s', need at least %d",
			quant.ErrInsufficientData, len(points), symbol, quant.MinRawDays)
	}

	quant.FillPctChange(points)
	enriched := quant.Enrich(points)

	mc := s.loadMarketContext(ctx, symbol)
	states := quant.ClassifyFactors(enriched, mc, quant.DefaultClassifierOptions())

	scoreCfg := s.loadScoreConfig(ctx)
	scores := quant.ScoreSeries(states, scoreCfg)
	correlations := quant.CorrelateFactors(states, enriched)

	result := &models.AnalysisResult{
		Symbol:       symbol,
		AnalysisID:   uuid.NewString(),
		Days:         len(points),
		Enriched:     enriched,
		FactorStates: states,
		Scores:       scores,
		Correlations: &correlations,
		GeneratedAt:  time.Now(),
	}

	if err := s.storage.Market().SaveAnalysis(ctx, result); err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Failed to persist analysis")
	}

	s.logger.Info().
		Str("symbol", symbol).
		Str("analysis_id", result.AnalysisID).
		Int("days", result.Days).
		Msg("Analysis complete")

	return result, nil
}

// FeatureImportance ranks indicator features by predictive power for a
// next-day move of at least params.TargetMovePct.
func (s *Service) FeatureImportance(ctx context.Context, params models.FeatureImportanceParams) (*models.FeatureImportanceResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(params.Symbol))
	if symbol == "" && params.AnalysisID == "" {
		return nil, fmt.Errorf("%w: symbol or analysis id is required", quant.ErrMissingParameter)
	}

	var enriched []models.EnrichedPoint
	if symbol == "" {
		stored, err := s.storage.Market().FindAnalysisByID(ctx, params.AnalysisID)
		if err != nil {
			return nil, fmt.Errorf("analysis '%s': %w", params.AnalysisID, err)
		}
		symbol = stored.Symbol
		enriched = stored.Enriched
	} else {
		series, err := s.loadSeries(ctx, symbol, s.cfg.DefaultDays)
		if err != nil {
			return nil, err
		}
		quant.FillPctChange(series.Points)
		enriched = quant.Enrich(series.Points)
	}

	target := params.TargetMovePct
	if target <= 0 {
		target = s.cfg.TargetMovePct
	}

	result, err := quant.ComputeFeatureImportance(enriched, target, params.TopN)
	if err != nil {
		return nil, err
	}
	result.Symbol = symbol

	s.logger.Info().
		Str("symbol", symbol).
		Float64("target_move_pct", target).
		Int("rows_used", result.RowsUsed).
		Msg("Feature importance computed")

	return result, nil
}

// loadSeries returns the stored price series for symbol when it is fresh
// enough, otherwise fetches from the market-data client and persists.
func (s *Service) loadSeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	stored, err := s.storage.Market().GetPriceSeries(ctx, symbol)
	if err == nil && len(stored.Points) >= days && time.Since(stored.LastUpdated) < s.cfg.GetStaleAfter() {
		return stored, nil
	}

	series, fetchErr := s.fetchSeries(ctx, symbol, days)
	if fetchErr != nil {
		// A stale stored series still beats no series.
		if stored != nil && len(stored.Points) > 0 {
			s.logger.Warn().Str("symbol", symbol).Err(fetchErr).Msg("Fetch failed, using stale stored series")
			return stored, nil
		}
		return nil, fetchErr
	}

	if err := s.storage.Market().SavePriceSeries(ctx, series); err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Failed to persist price series")
	}
	return series, nil
}

// fetchSeries pulls EOD bars from the market-data client, retrying on the
// fallback exchange listing when the primary returns nothing.
func (s *Service) fetchSeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	if s.market == nil {
		return nil, fmt.Errorf("no market data client configured, cannot fetch '%s': set an EODHD API key", symbol)
	}

	to := time.Now()
	// Calendar buffer: weekends and holidays thin out trading days.
	from := to.AddDate(0, 0, -days*2)

	points, err := s.market.GetEODData(ctx, symbol, from, to)
	if err == nil && len(points) > 0 {
		return &models.PriceSeries{Symbol: symbol, Exchange: exchangeOf(symbol), Points: points}, nil
	}
	if err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Primary EOD fetch failed")
	}

	alt := alternateSymbol(symbol, s.cfg.FallbackExchange)
	if alt == symbol {
		if err != nil {
			return nil, fmt.Errorf("failed to fetch price data for '%s': %w", symbol, err)
		}
		return nil, fmt.Errorf("no price data available for '%s'", symbol)
	}

	s.logger.Info().Str("symbol", symbol).Str("fallback", alt).Msg("Trying fallback exchange listing")

	var altPoints []models.PricePoint
	operation := func() error {
		p, opErr := s.market.GetEODData(ctx, alt, from, to)
		if opErr != nil {
			return opErr
		}
		altPoints = p
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if retryErr := backoff.Retry(operation, policy); retryErr != nil || len(altPoints) == 0 {
		if retryErr == nil {
			retryErr = fmt.Errorf("empty response")
		}
		return nil, fmt.Errorf("failed to fetch price data for '%s' (fallback '%s'): %w", symbol, alt, retryErr)
	}

	return &models.PriceSeries{Symbol: symbol, Exchange: exchangeOf(alt), Points: altPoints}, nil
}

// loadMarketContext reads optional per-symbol context (index moves, earnings
// dates, news sentiment) from the system KV store. Missing or malformed
// context degrades to none: context factors simply stay inactive.
func (s *Service) loadMarketContext(ctx context.Context, symbol string) *models.MarketContext {
	raw, err := s.storage.Internal().GetSystemKV(ctx, marketContextPrefix+symbol)
	if err != nil || raw == "" {
		return nil
	}
	var mc models.MarketContext
	if err := json.Unmarshal([]byte(raw), &mc); err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Malformed market context, ignoring")
		return nil
	}
	return &mc
}

// loadScoreConfig reads a runtime score configuration override from the
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

// exchangeOf returns the exchange suffix of a symbol like "BHP.AU".
func exchangeOf(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		return symbol[i+1:]
	}
	return ""
}

// alternateSymbol swaps the exchange suffix for the fallback exchange.
func alternateSymbol(symbol, fallback string) string {
	if fallback == "" {
		return symbol
	}
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		return symbol[:i+1] + fallback
	}
	return symbol + "." + fallback
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
