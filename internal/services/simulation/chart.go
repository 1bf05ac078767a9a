package simulation

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/quanta/internal/models"
)

// RenderScenarioChart renders a PNG line chart of the three scenario price
// paths. Optimistic green, base blue, pessimistic red dashed. Returns raw
// PNG bytes.
func RenderScenarioChart(result *models.SimulationResult) ([]byte, error) {
	if len(result.BaseCase) < 2 {
		return nil, fmt.Errorf("need at least 2 path points, got %d", len(result.BaseCase))
	}

	styles := map[models.ScenarioType]chart.Style{
		models.ScenarioOptimistic: {
			StrokeColor: drawing.ColorFromHex("16a34a"), // green-600
			StrokeWidth: 1.5,
		},
		models.ScenarioBase: {
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		models.ScenarioPessimistic: {
			StrokeColor:     drawing.ColorFromHex("dc2626"), // red-600
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
	}

	series := make([]chart.Series, 0, len(result.Scenarios))
	for _, scenario := range result.Scenarios {
		xValues := make([]time.Time, len(scenario.PricePath))
		yValues := make([]float64, len(scenario.PricePath))
		for i, p := range scenario.PricePath {
			xValues[i] = p.Date
			yValues[i] = p.PredictedPrice
		}
		series = append(series, chart.TimeSeries{
			Name:    string(scenario.Type),
			Style:   styles[scenario.Type],
			XValues: xValues,
			YValues: yValues,
		})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s %d-day projection", result.Symbol, result.TimeHorizon),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
