// Package marketfs implements file-based JSON storage for price series and
// derived analysis artifacts.
package marketfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/quanta/internal/common"
	"github.com/bobmcallan/quanta/internal/interfaces"
	"github.com/bobmcallan/quanta/internal/models"
)

// Store provides file-based JSON storage for market data and analysis results.
type Store struct {
	basePath       string
	seriesDir      string
	analysisDir    string
	simulationsDir string
	logger         *common.Logger
}

// NewMarketStore creates a new market file store.
func NewMarketStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create market store path %s: %w", path, err)
	}
	seriesDir := filepath.Join(path, "series")
	analysisDir := filepath.Join(path, "analysis")
	simulationsDir := filepath.Join(path, "simulations")
	os.MkdirAll(seriesDir, 0755)
	os.MkdirAll(analysisDir, 0755)
	os.MkdirAll(simulationsDir, 0755)

	logger.Info().Str("path", path).Msg("MarketFS store opened")
	return &Store{
		basePath:       path,
		seriesDir:      seriesDir,
		analysisDir:    analysisDir,
		simulationsDir: simulationsDir,
		logger:         logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// --- price series ---

func (s *Store) SavePriceSeries(_ context.Context, series *models.PriceSeries) error {
	series.LastUpdated = time.Now()
	if err := writeJSON(s.seriesDir, series.Symbol, series); err != nil {
		return fmt.Errorf("failed to save price series: %w", err)
	}
	s.logger.Debug().Str("symbol", series.Symbol).Int("points", len(series.Points)).Msg("Price series saved")
	return nil
}

func (s *Store) GetPriceSeries(_ context.Context, symbol string) (*models.PriceSeries, error) {
	var series models.PriceSeries
	if err := readJSON(s.seriesDir, symbol, &series); err != nil {
		return nil, fmt.Errorf("price series for '%s' not found", symbol)
	}
	return &series, nil
}

// --- analysis results ---

func (s *Store) SaveAnalysis(_ context.Context, result *models.AnalysisResult) error {
	if err := writeJSON(s.analysisDir, result.Symbol, result); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	s.logger.Debug().Str("symbol", result.Symbol).Str("analysis_id", result.AnalysisID).Msg("Analysis saved")
	return nil
}

func (s *Store) GetAnalysis(_ context.Context, symbol string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := readJSON(s.analysisDir, symbol, &result); err != nil {
		return nil, fmt.Errorf("analysis for '%s' not found", symbol)
	}
	return &result, nil
}

// FindAnalysisByID scans stored analyses for a matching analysis ID.
func (s *Store) FindAnalysisByID(_ context.Context, analysisID string) (*models.AnalysisResult, error) {
	keys, err := listKeys(s.analysisDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	for _, key := range keys {
		var result models.AnalysisResult
		if err := readJSON(s.analysisDir, key, &result); err != nil {
			continue
		}
		if result.AnalysisID == analysisID {
			return &result, nil
		}
	}
	return nil, fmt.Errorf("analysis '%s' not found", analysisID)
}

// --- simulations ---

func (s *Store) SaveSimulation(_ context.Context, result *models.SimulationResult) error {
	if err := writeJSON(s.simulationsDir, result.ID, result); err != nil {
		return fmt.Errorf("failed to save simulation: %w", err)
	}
	s.logger.Debug().Str("simulation_id", result.ID).Str("symbol", result.Symbol).Msg("Simulation saved")
	return nil
}

func (s *Store) GetSimulation(_ context.Context, id string) (*models.SimulationResult, error) {
	var result models.SimulationResult
	if err := readJSON(s.simulationsDir, id, &result); err != nil {
		return nil, fmt.Errorf("simulation '%s' not found", id)
	}
	return &result, nil
}

// ListSimulations returns stored simulations for symbol, newest first. An
// empty symbol matches everything.
func (s *Store) ListSimulations(_ context.Context, symbol string) ([]*models.SimulationResult, error) {
	keys, err := listKeys(s.simulationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	var results []*models.SimulationResult
	for _, key := range keys {
		var result models.SimulationResult
		if err := readJSON(s.simulationsDir, key, &result); err != nil {
			continue
		}
		if symbol == "" || strings.EqualFold(result.Symbol, symbol) {
			r := result
			results = append(results, &r)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].GeneratedAt.After(results[j].GeneratedAt)
	})
	return results, nil
}

// WriteRaw writes arbitrary binary data atomically. The key may carry a
// subdirectory prefix, e.g. "charts/sim-123.png".
func (s *Store) WriteRaw(_ context.Context, key string, data []byte) error {
	dir := filepath.Join(s.basePath, filepath.Dir(key))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, sanitizeKey(filepath.Base(key)))

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Close is a no-op for file-based storage.
func (s *Store) Close() error {
	return nil
}

// --- helpers ---

func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func filePath(dir, key string) string {
	return filepath.Join(dir, sanitizeKey(key)+".json")
}

func readJSON(dir, key string, dest interface{}) error {
	path := filePath(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("'%s' not found", key)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("'%s' is empty", key)
	}
	return json.Unmarshal(data, dest)
}

func writeJSON(dir, key string, data interface{}) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	target := filePath(dir, key)
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func listKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".tmp-") {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}

// Compile-time check
var _ interfaces.MarketDataStorage = (*Store)(nil)
