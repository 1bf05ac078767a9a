package eodhd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetEODData_ParsesResponse(t *testing.T) {
	mockResp := []map[string]interface{}{
		{"date": "2025-01-06", "open": 40.0, "high": 41.0, "low": 39.5, "close": 40.5, "adjusted_close": 40.5, "volume": float64(1000000)},
		{"date": "2025-01-07", "open": 40.5, "high": 42.0, "low": 40.2, "close": 41.8, "adjusted_close": 41.8, "volume": float64(1200000)},
	}

	var capturedPath string
	var capturedQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	points, err := client.GetEODData(context.Background(), "BHP.AU", from, to)
	if err != nil {
		t.Fatalf("GetEODData failed: %v", err)
	}

	if capturedPath != "/eod/BHP.AU" {
		t.Errorf("expected path /eod/BHP.AU, got %s", capturedPath)
	}
	if got := capturedQuery["order"]; len(got) != 1 || got[0] != "a" {
		t.Errorf("expected order=a, got %v", got)
	}
	if got := capturedQuery["from"]; len(got) != 1 || got[0] != "2025-01-06" {
		t.Errorf("expected from=2025-01-06, got %v", got)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Close != 40.5 || points[1].Close != 41.8 {
		t.Errorf("closes = %v, %v", points[0].Close, points[1].Close)
	}
	if !points[0].Date.Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", points[0].Date)
	}
	if points[1].Volume != 1200000 {
		t.Errorf("volume = %d", points[1].Volume)
	}
}

func TestGetEODData_PrefersAdjustedClose(t *testing.T) {
	mockResp := []map[string]interface{}{
		{"date": "2025-01-06", "open": 40.0, "high": 41.0, "low": 39.5, "close": 80.0, "adjusted_close": 40.0, "volume": float64(100)},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	points, err := client.GetEODData(context.Background(), "BHP.AU", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetEODData failed: %v", err)
	}
	if points[0].Close != 40.0 {
		t.Errorf("expected adjusted close 40.0, got %v", points[0].Close)
	}
}

func TestGetEODData_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("ticker not found"))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.GetEODData(context.Background(), "INVALID.XX", time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("expected error for invalid ticker")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestGetLastPrice_ParsesResponse(t *testing.T) {
	mockResp := map[string]interface{}{
		"code":      "BHP.AU",
		"timestamp": int64(1711670340),
		"open":      42.10,
		"high":      43.50,
		"low":       41.80,
		"close":     43.25,
		"volume":    float64(5000000),
	}

	var capturedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	price, err := client.GetLastPrice(context.Background(), "BHP.AU")
	if err != nil {
		t.Fatalf("GetLastPrice failed: %v", err)
	}
	if capturedPath != "/real-time/BHP.AU" {
		t.Errorf("expected path /real-time/BHP.AU, got %s", capturedPath)
	}
	if price != 43.25 {
		t.Errorf("price = %v, want 43.25", price)
	}
}

func TestGetLastPrice_StringFields(t *testing.T) {
	// EODHD sometimes returns numeric fields as strings
	mockResp := map[string]interface{}{
		"code":      "CBA.AU",
		"timestamp": "1711670340",
		"open":      "42.10",
		"high":      "43.50",
		"low":       "41.80",
		"close":     "43.25",
		"volume":    "5000000",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	price, err := client.GetLastPrice(context.Background(), "CBA.AU")
	if err != nil {
		t.Fatalf("GetLastPrice failed with string fields: %v", err)
	}
	if price != 43.25 {
		t.Errorf("price = %v, want 43.25", price)
	}
}

func TestGetLastPrice_ZeroCloseIsError(t *testing.T) {
	// Market closed: EODHD returns zero values
	mockResp := map[string]interface{}{
		"code": "BHP.AU", "timestamp": int64(0),
		"open": 0.0, "high": 0.0, "low": 0.0, "close": 0.0, "volume": float64(0),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mockResp)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	if _, err := client.GetLastPrice(context.Background(), "BHP.AU"); err == nil {
		t.Fatal("expected error for zero close")
	}
}

func TestGetEODData_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithTimeout(100*time.Millisecond))
	_, err := client.GetEODData(context.Background(), "BHP.AU", time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFlexFloat64_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"number", "43.25", 43.25},
		{"string", `"43.25"`, 43.25},
		{"empty_string", `""`, 0},
		{"na_string", `"N/A"`, 0},
		{"negative", "-1.5", -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexFloat64
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON(%s) error: %v", tt.input, err)
			}
			if float64(f) != tt.expected {
				t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, float64(f), tt.expected)
			}
		})
	}
}
