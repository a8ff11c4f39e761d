package config

import (
	"testing"
	"time"
)

func defaultTestConfig() *Config {
	return &Config{
		Port:                     "8000",
		Env:                      "development",
		DatabaseURL:              "postgres://localhost/edboard",
		AlertSourceURL:           "ws://localhost:8001/ws/alerts",
		ClassifierURL:            "http://127.0.0.1:8000",
		PredictorURL:             "http://127.0.0.1:8000",
		AlertDismissSeconds:      30,
		SurgeRefreshSeconds:      60,
		PredictionRefreshSeconds: 30,
		MaxDataPoints:            20,
		SurgeThreshold:           8,
		AvailableBedsDefault:     75,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/edboard")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.AlertDismissSeconds != 30 {
		t.Errorf("expected default dismiss 30s, got %d", cfg.AlertDismissSeconds)
	}
	if cfg.SurgeRefreshSeconds != 60 {
		t.Errorf("expected default surge refresh 60s, got %d", cfg.SurgeRefreshSeconds)
	}
	if cfg.PredictionRefreshSeconds != 30 {
		t.Errorf("expected default prediction refresh 30s, got %d", cfg.PredictionRefreshSeconds)
	}
	if cfg.MaxDataPoints != 20 {
		t.Errorf("expected default max points 20, got %d", cfg.MaxDataPoints)
	}
	if cfg.AvailableBedsDefault != 75 {
		t.Errorf("expected default available beds 75, got %d", cfg.AvailableBedsDefault)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero dismiss", func(c *Config) { c.AlertDismissSeconds = 0 }, true},
		{"negative surge refresh", func(c *Config) { c.SurgeRefreshSeconds = -1 }, true},
		{"zero prediction refresh", func(c *Config) { c.PredictionRefreshSeconds = 0 }, true},
		{"zero max points", func(c *Config) { c.MaxDataPoints = 0 }, true},
		{"missing alert source", func(c *Config) { c.AlertSourceURL = "" }, true},
		{"missing classifier", func(c *Config) { c.ClassifierURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := defaultTestConfig()

	if cfg.AlertDismiss() != 30*time.Second {
		t.Errorf("AlertDismiss() = %v, want 30s", cfg.AlertDismiss())
	}
	if cfg.SurgeRefresh() != time.Minute {
		t.Errorf("SurgeRefresh() = %v, want 1m", cfg.SurgeRefresh())
	}
	if cfg.PredictionRefresh() != 30*time.Second {
		t.Errorf("PredictionRefresh() = %v, want 30s", cfg.PredictionRefresh())
	}
}
