package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/quanta/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Analysis
	mux.HandleFunc("/api/analysis/", s.routeAnalysis)

	// Simulations
	mux.HandleFunc("/api/simulations/", s.handleSimulationGet)
	mux.HandleFunc("/api/simulations", s.handleSimulations)
}

// routeAnalysis dispatches /api/analysis/{symbol}[/importance] to the
// appropriate handler.
func (s *Server) routeAnalysis(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/analysis/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	symbol := parts[0]

	if len(parts) == 1 {
		s.handleAnalyze(w, r, symbol)
		return
	}

	switch parts[1] {
	case "importance":
		s.handleFeatureImportance(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	store := s.app.Storage.Internal()

	// Build runtime settings from system KV
	kvAll := map[string]string{}
	for _, key := range []string{"score_config", "eodhd_api_key", "gemini_api_key"} {
		if val, err := store.GetSystemKV(ctx, key); err == nil && val != "" {
			kvAll[key] = val
		}
	}
	// Mask secrets
	for k, v := range kvAll {
		if strings.Contains(k, "api_key") {
			kvAll[k] = maskSecret(v)
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runtime_settings":  kvAll,
		"environment":       s.app.Config.Environment,
		"internal_path":     s.app.Config.Storage.Internal.Path,
		"market_path":       s.app.Config.Storage.Market.Path,
		"logging_level":     s.app.Config.Logging.Level,
		"default_days":      s.app.Config.Analysis.DefaultDays,
		"fallback_exchange": s.app.Config.Analysis.FallbackExchange,
		"eodhd_configured":  s.app.MarketClient != nil,
		"gemini_configured": s.app.NarrativeClient != nil,
	})
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
