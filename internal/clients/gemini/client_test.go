package gemini

import (
	"strings"
	"testing"

	"github.com/bobmcallan/quanta/internal/models"
)

func TestBuildSimulationPrompt(t *testing.T) {
	result := &models.SimulationResult{
		Symbol:       "BHP.AU",
		InitialPrice: 42.50,
		TimeHorizon:  30,
		Score:        6.5,
		Tier:         models.TierHighProbability,
		Scenarios: []models.SimulationScenario{
			{Type: models.ScenarioOptimistic, FinalPrice: 48.0, TotalReturnPercent: 12.9, Probability: 0.25},
			{Type: models.ScenarioBase, FinalPrice: 45.0, TotalReturnPercent: 5.9, Probability: 0.50},
			{Type: models.ScenarioPessimistic, FinalPrice: 43.0, TotalReturnPercent: 1.2, Probability: 0.25},
		},
		ConfidenceIntervals: []models.ConfidenceInterval{
			{ConfidenceLevel: 0.68, LowerBound: 43.5, UpperBound: 47.0},
		},
		FactorBreakdowns: []models.FactorBreakdown{
			{Factor: models.FactorVolumeSpike, Active: true, Weight: 1.5, HistoricalAvgReturn: 1.2},
			{Factor: models.FactorMacroTailwind, Active: false, Weight: 1.0},
		},
	}

	prompt := buildSimulationPrompt(result)

	for _, want := range []string{"BHP.AU", "$42.50", "30 trading days", "HIGH_PROBABILITY", "volume_spike", "68% confidence"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "macro_tailwind") {
		t.Error("inactive factors should not be listed")
	}
}

func TestBuildSimulationPrompt_NoActiveFactors(t *testing.T) {
	result := &models.SimulationResult{
		Symbol:       "CBA.AU",
		InitialPrice: 100,
		TimeHorizon:  5,
		Tier:         models.TierLow,
	}

	prompt := buildSimulationPrompt(result)
	if !strings.Contains(prompt, "No factors are currently active") {
		t.Errorf("prompt should note absence of active factors:\n%s", prompt)
	}
}
