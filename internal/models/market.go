// Package models defines data structures for Quanta
package models

import (
	"encoding/json"
	"math"
	"time"
)

// DateKeyFormat is the canonical key format for date-indexed context maps.
const DateKeyFormat = "2006-01-02"

// DateKey formats a time as the canonical context-map key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyFormat)
}

// PricePoint represents a single day's price/volume bar.
// Produced once per ingestion and treated as immutable downstream.
type PricePoint struct {
	Date      time.Time `json:"date"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
	PctChange float64   `json:"pct_change"` // percent change vs previous close, 0 for the first point
}

// IndicatorSet holds per-day derived indicator values.
// A value is NaN whenever its lookback window is unsatisfied.
type IndicatorSet struct {
	MA20        float64
	MA50        float64
	MA200       float64
	RSI14       float64
	VolumeMA20  float64
	BandWidth20 float64
}

// indicatorSetJSON is the wire form of IndicatorSet. encoding/json cannot
// represent NaN, so unsatisfied windows travel as null.
type indicatorSetJSON struct {
	MA20        *float64 `json:"ma20"`
	MA50        *float64 `json:"ma50"`
	MA200       *float64 `json:"ma200"`
	RSI14       *float64 `json:"rsi14"`
	VolumeMA20  *float64 `json:"volume_ma20"`
	BandWidth20 *float64 `json:"bollinger_band_width20"`
}

// MarshalJSON encodes undefined (NaN/Inf) indicator values as null.
func (s IndicatorSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(indicatorSetJSON{
		MA20:        nullable(s.MA20),
		MA50:        nullable(s.MA50),
		MA200:       nullable(s.MA200),
		RSI14:       nullable(s.RSI14),
		VolumeMA20:  nullable(s.VolumeMA20),
		BandWidth20: nullable(s.BandWidth20),
	})
}

// UnmarshalJSON restores null indicator values to NaN.
func (s *IndicatorSet) UnmarshalJSON(data []byte) error {
	var raw indicatorSetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.MA20 = fromNullable(raw.MA20)
	s.MA50 = fromNullable(raw.MA50)
	s.MA200 = fromNullable(raw.MA200)
	s.RSI14 = fromNullable(raw.RSI14)
	s.VolumeMA20 = fromNullable(raw.VolumeMA20)
	s.BandWidth20 = fromNullable(raw.BandWidth20)
	return nil
}

func nullable(v float64) *float64 {
	if !IsDefined(v) {
		return nil
	}
	return &v
}

func fromNullable(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// EnrichedPoint pairs a price point with its computed indicators.
type EnrichedPoint struct {
	PricePoint
	Indicators IndicatorSet `json:"indicators"`
}

// PriceSeries is a date-ordered sequence of price points for one symbol.
type PriceSeries struct {
	Symbol      string       `json:"symbol"`
	Exchange    string       `json:"exchange,omitempty"`
	AnalysisID  string       `json:"analysis_id,omitempty"`
	Points      []PricePoint `json:"points"`
	LastUpdated time.Time    `json:"last_updated"`
}

// MarketContext carries optional external signals for factor classification.
// All maps are keyed by DateKey; absent entries mean the signal is unknown
// and the corresponding factor stays inactive.
type MarketContext struct {
	MarketIndexPct map[string]float64 `json:"market_index_pct,omitempty"` // market index daily % change
	SectorIndexPct map[string]float64 `json:"sector_index_pct,omitempty"` // sector index daily % change
	EarningsDates  []time.Time        `json:"earnings_dates,omitempty"`
	NewsSentiment  map[string]string  `json:"news_sentiment,omitempty"` // positive, negative, neutral
	ShortCovering  map[string]bool    `json:"short_covering,omitempty"`
	MacroTailwind  map[string]bool    `json:"macro_tailwind,omitempty"`
}

// Closes extracts the close column from a point slice.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// Volumes extracts the volume column as floats.
func Volumes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = float64(p.Volume)
	}
	return out
}

// IsDefined reports whether an indicator value is usable (not NaN/Inf).
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
