package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bobmcallan/quanta/internal/models"
	"github.com/bobmcallan/quanta/internal/quant"
)

// writeServiceError maps pipeline errors onto HTTP status codes. Missing or
// invalid request parameters are the caller's fault; a price history too
// short to analyze is a semantic failure rather than a bad request.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quant.ErrMissingParameter):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quant.ErrInsufficientData):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Analysis handlers ---

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Days int `json:"days"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if d := r.URL.Query().Get("days"); d != "" {
		if v, err := parseInt(d); err == nil && v > 0 {
			req.Days = v
		}
	}

	result, err := s.app.AnalysisService.AnalyzeSeries(r.Context(), symbol, req.Days)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleFeatureImportance(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	params := models.FeatureImportanceParams{
		Symbol:     symbol,
		AnalysisID: r.URL.Query().Get("analysis_id"),
	}
	if t := r.URL.Query().Get("target_move_pct"); t != "" {
		if v, err := parseFloat(t); err == nil && v > 0 {
			params.TargetMovePct = v
		}
	}
	if n := r.URL.Query().Get("top_n"); n != "" {
		if v, err := parseInt(n); err == nil && v > 0 {
			params.TopN = v
		}
	}

	result, err := s.app.AnalysisService.FeatureImportance(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// --- Simulation handlers ---

// handleSimulations handles POST /api/simulations (create) and
// GET /api/simulations?symbol=X (list).
func (s *Server) handleSimulations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSimulationCreate(w, r)
	case http.MethodGet:
		s.handleSimulationList(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleSimulationCreate(w http.ResponseWriter, r *http.Request) {
	var params models.SimulationParameters
	if !DecodeJSON(w, r, &params) {
		return
	}

	result, err := s.app.SimulationService.Simulate(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimulationList(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	simulations, err := s.app.Storage.Market().ListSimulations(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing simulations: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"simulations": simulations,
	})
}

func (s *Server) handleSimulationGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/simulations/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "simulation id is required in path")
		return
	}

	result, err := s.app.SimulationService.GetSimulation(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Simulation not found: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
