package quant

import (
	"fmt"
	"math"
	"time"

	"github.com/bobmcallan/quanta/internal/models"
)

// EstimateReturnPerScore estimates the average next-day percent return per
// score unit as mean(return)/mean(score) over historical days with a
// positive score. With no usable history the fallback constant is returned.
func EstimateReturnPerScore(scores []models.DailyScore, series []models.EnrichedPoint, fallback float64) float64 {
	n := len(scores)
	if len(series) < n {
		n = len(series)
	}

	var sumScore, sumReturn float64
	count := 0
	for i := 0; i < n-1; i++ {
		if scores[i].Score <= 0 {
			continue
		}
		sumScore += scores[i].Score
		sumReturn += series[i+1].PctChange
		count++
	}
	if count == 0 || sumScore == 0 {
		return fallback
	}

	est := (sumReturn / float64(count)) / (sumScore / float64(count))
	if !models.IsDefined(est) {
		return fallback
	}
	return est
}

// AddBusinessDays returns the nth business day strictly after start,
// skipping Saturdays and Sundays.
func AddBusinessDays(start time.Time, n int) time.Time {
	d := start
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}

// Simulate projects a forward price path from the static factor state in
// params, blending three expected-return methods per day:
//
//	score method:   score * returnPerScore (damped below threshold)
//	factor method:  sum of active-factor weight * historical avg return
//	pattern method: similarity-weighted average of matched days' returns
//
// The base case compounds the blended daily change from the initial price;
// the optimistic and pessimistic scenarios scale each day's change by a
// fixed multiplier and recompound independently. Confidence intervals are
// derived from the dispersion of the scenario final prices.
func Simulate(
	params models.SimulationParameters,
	cfg models.SimulationConfig,
	scoreCfg models.ScoreConfig,
	corr models.CorrelationTable,
	matches []models.HistoricalPatternMatch,
	returnPerScore float64,
) (*models.SimulationResult, error) {
	if params.InitialPrice <= 0 {
		return nil, fmt.Errorf("initial price must be positive, got %v", params.InitialPrice)
	}
	if params.TimeHorizon < 1 {
		return nil, fmt.Errorf("time horizon must be at least 1 trading day, got %d", params.TimeHorizon)
	}

	effective := scoreCfg
	if len(params.FactorWeights) > 0 {
		effective.Weights = params.FactorWeights
	}
	if params.Threshold != nil {
		effective.Threshold = *params.Threshold
		effective.ModerateBand = 0
	}

	state := normalizeState(params.FactorStates)
	daily := Score(state, effective)
	active := state.ActiveFactors()

	scoreChange := daily.Score * returnPerScore
	if daily.Score < effective.Threshold {
		scoreChange *= cfg.BelowThresholdDamping
	}

	factorChange := 0.0
	for _, f := range active {
		if entry, ok := corr.Entries[f]; ok {
			factorChange += effective.Weights[f] * entry.AvgReturn
		}
	}

	patternChange := patternWeightedReturn(matches)

	combined := cfg.ScoreMethodWeight*scoreChange +
		cfg.FactorMethodWeight*factorChange +
		cfg.PatternMethodWeight*patternChange

	start := params.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	base := compoundPath(params, cfg, start, combined, 1.0, daily, active)
	optimistic := compoundPath(params, cfg, start, combined, cfg.OptimisticMultiplier, daily, active)
	pessimistic := compoundPath(params, cfg, start, combined, cfg.PessimisticMultiplier, daily, active)

	scenarios := []models.SimulationScenario{
		buildScenario(models.ScenarioOptimistic, optimistic, params.InitialPrice, cfg.OptimisticProbability),
		buildScenario(models.ScenarioBase, base, params.InitialPrice, cfg.BaseProbability),
		buildScenario(models.ScenarioPessimistic, pessimistic, params.InitialPrice, cfg.PessimisticProbability),
	}

	finals := []float64{
		scenarios[0].FinalPrice,
		scenarios[1].FinalPrice,
		scenarios[2].FinalPrice,
		base[len(base)-1].PredictedPrice,
	}
	intervals := confidenceIntervals(finals)

	return &models.SimulationResult{
		Symbol:              params.Symbol,
		StockAnalysisID:     params.StockAnalysisID,
		InitialPrice:        params.InitialPrice,
		TimeHorizon:         params.TimeHorizon,
		StartDate:           start,
		Score:               daily.Score,
		Tier:                daily.Tier,
		BaseCase:            base,
		Scenarios:           scenarios,
		ConfidenceIntervals: intervals,
		FactorBreakdowns:    factorBreakdowns(state, effective, corr),
		GeneratedAt:         time.Now(),
	}, nil
}

// normalizeState fills a complete FactorState from a possibly-sparse
// activation map.
func normalizeState(activations map[models.Factor]bool) models.FactorState {
	factors := make(map[models.Factor]bool, len(models.AllFactors()))
	for _, f := range models.AllFactors() {
		factors[f] = activations[f]
	}
	return models.FactorState{Factors: factors}
}

// patternWeightedReturn is the similarity-weighted average of matched
// days' actual returns, 0 with no matches.
func patternWeightedReturn(matches []models.HistoricalPatternMatch) float64 {
	var weighted, totalSim float64
	for _, m := range matches {
		weighted += m.Similarity * m.ActualReturn
		totalSim += m.Similarity
	}
	if totalSim == 0 {
		return 0
	}
	return weighted / totalSim
}

// compoundPath walks the horizon applying dailyPct*multiplier each business
// day, flooring the price so it can never reach zero.
func compoundPath(
	params models.SimulationParameters,
	cfg models.SimulationConfig,
	start time.Time,
	dailyPct, multiplier float64,
	daily models.DailyScore,
	active []models.Factor,
) []models.PricePathPoint {
	path := make([]models.PricePathPoint, params.TimeHorizon)
	price := params.InitialPrice
	date := start
	pct := dailyPct * multiplier

	for day := 1; day <= params.TimeHorizon; day++ {
		date = AddBusinessDays(date, 1)
		next := price + price*pct/100
		if next < cfg.PriceFloor {
			next = cfg.PriceFloor
		}
		path[day-1] = models.PricePathPoint{
			Day:                day,
			Date:               date,
			PredictedPrice:     next,
			PriceChange:        next - price,
			PriceChangePercent: pct,
			Score:              daily.Score,
			ActiveFactors:      active,
			Confidence:         daily.Confidence,
		}
		price = next
	}
	return path
}

func buildScenario(t models.ScenarioType, path []models.PricePathPoint, initial, probability float64) models.SimulationScenario {
	final := initial
	if len(path) > 0 {
		final = path[len(path)-1].PredictedPrice
	}
	return models.SimulationScenario{
		Type:               t,
		PricePath:          path,
		FinalPrice:         final,
		TotalReturn:        final - initial,
		TotalReturnPercent: (final - initial) / initial * 100,
		Probability:        probability,
	}
}

// confidenceIntervals builds 68% and 95% bands from the scenario final
// prices (mean ± 1σ and ± 2σ, population standard deviation), with lower
// bounds floored at 0.
func confidenceIntervals(finals []float64) []models.ConfidenceInterval {
	mean := 0.0
	for _, v := range finals {
		mean += v
	}
	mean /= float64(len(finals))

	variance := 0.0
	for _, v := range finals {
		d := v - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(finals)))

	interval := func(level, mult float64) models.ConfidenceInterval {
		lower := mean - mult*sd
		if lower < 0 {
			lower = 0
		}
		return models.ConfidenceInterval{
			ConfidenceLevel: level,
			LowerBound:      lower,
			UpperBound:      mean + mult*sd,
		}
	}
	return []models.ConfidenceInterval{interval(0.68, 1), interval(0.95, 2)}
}

// factorBreakdowns lists every factor's weight, activation, contribution,
// and historical average return for result transparency.
func factorBreakdowns(state models.FactorState, cfg models.ScoreConfig, corr models.CorrelationTable) []models.FactorBreakdown {
	out := make([]models.FactorBreakdown, 0, len(models.AllFactors()))
	for _, f := range models.AllFactors() {
		weight := cfg.Weights[f]
		active := state.Factors[f]
		contribution := 0.0
		if active {
			contribution = weight
		}
		avgReturn := 0.0
		if entry, ok := corr.Entries[f]; ok {
			avgReturn = entry.AvgReturn
		}
		out = append(out, models.FactorBreakdown{
			Factor:              f,
			Contribution:        contribution,
			Weight:              weight,
			Active:              active,
			HistoricalAvgReturn: avgReturn,
		})
	}
	return out
}
