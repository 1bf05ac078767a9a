package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_DefaultPort(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port default = %d, want %d", cfg.Server.Port, 8080)
	}
}

func TestConfig_PortEnvOverride(t *testing.T) {
	t.Setenv("QUANTA_PORT", "9090")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d after env override, want %d", cfg.Server.Port, 9090)
	}
}

func TestConfig_DataPathEnvOverride(t *testing.T) {
	t.Setenv("QUANTA_DATA_PATH", "/tmp/quanta")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Storage.Internal.Path != filepath.Join("/tmp/quanta", "internal") {
		t.Errorf("Storage.Internal.Path = %q", cfg.Storage.Internal.Path)
	}
	if cfg.Storage.Market.Path != filepath.Join("/tmp/quanta", "market") {
		t.Errorf("Storage.Market.Path = %q", cfg.Storage.Market.Path)
	}
}

func TestConfig_EODHDKeyEnvOverride(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.EODHD.APIKey != "from-env" {
		t.Errorf("EODHD.APIKey = %q, want %q", cfg.Clients.EODHD.APIKey, "from-env")
	}
}

func TestConfig_GeminiKeyGoogleEnvFallback(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "google-fallback")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Clients.Gemini.APIKey != "google-fallback" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Clients.Gemini.APIKey, "google-fallback")
	}
}

func TestConfig_ValidateRequired_MissingEODHDKey(t *testing.T) {
	cfg := &Config{}
	missing := cfg.ValidateRequired()
	if len(missing) != 1 || missing[0] != "clients.eodhd.api_key" {
		t.Errorf("ValidateRequired() = %v, want [clients.eodhd.api_key]", missing)
	}
}

func TestConfig_ValidateRequired_AllPresent(t *testing.T) {
	cfg := &Config{
		Clients: ClientsConfig{
			EODHD: EODHDConfig{APIKey: "eodhd-key"},
		},
	}
	missing := cfg.ValidateRequired()
	if len(missing) != 0 {
		t.Errorf("expected 0 missing fields, got %d: %v", len(missing), missing)
	}
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quanta.toml")
	content := `
environment = "production"

[server]
port = 9999

[analysis]
default_days = 120
target_move_pct = 3.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Analysis.DefaultDays != 120 {
		t.Errorf("Analysis.DefaultDays = %d, want 120", cfg.Analysis.DefaultDays)
	}
	if cfg.Analysis.TargetMovePct != 3.5 {
		t.Errorf("Analysis.TargetMovePct = %v, want 3.5", cfg.Analysis.TargetMovePct)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	// Untouched sections keep their defaults.
	if cfg.Clients.EODHD.BaseURL != "https://eodhd.com/api" {
		t.Errorf("EODHD.BaseURL = %q", cfg.Clients.EODHD.BaseURL)
	}
}

func TestConfig_LoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/quanta.toml")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Analysis.DefaultDays != 90 {
		t.Errorf("Analysis.DefaultDays = %d, want 90", cfg.Analysis.DefaultDays)
	}
}

func TestAnalysisConfig_GetStaleAfter(t *testing.T) {
	cfg := &AnalysisConfig{StaleAfter: "6h"}
	if d := cfg.GetStaleAfter(); d != 6*time.Hour {
		t.Errorf("GetStaleAfter() = %v, want 6h", d)
	}

	cfg = &AnalysisConfig{StaleAfter: "not-a-duration"}
	if d := cfg.GetStaleAfter(); d != 24*time.Hour {
		t.Errorf("GetStaleAfter() = %v, want 24h (fallback for invalid)", d)
	}
}

func TestEODHDConfig_GetTimeout_InvalidFallsBack(t *testing.T) {
	cfg := &EODHDConfig{Timeout: "bogus"}
	if d := cfg.GetTimeout(); d != 30*time.Second {
		t.Errorf("GetTimeout() = %v, want 30s (fallback for invalid)", d)
	}
}
