package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// External collaborators.
	AlertSourceURL string `mapstructure:"ALERT_SOURCE_URL"`
	ClassifierURL  string `mapstructure:"CLASSIFIER_URL"`
	PredictorURL   string `mapstructure:"PREDICTOR_URL"`

	// Dashboard tuning.
	AlertDismissSeconds      int `mapstructure:"ALERT_DISMISS_SECONDS"`
	SurgeRefreshSeconds      int `mapstructure:"SURGE_REFRESH_SECONDS"`
	PredictionRefreshSeconds int `mapstructure:"PREDICTION_REFRESH_SECONDS"`
	MaxDataPoints            int `mapstructure:"MAX_DATA_POINTS"`
	SurgeThreshold           int `mapstructure:"SURGE_THRESHOLD"`
	AvailableBedsDefault     int `mapstructure:"AVAILABLE_BEDS_DEFAULT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("ALERT_SOURCE_URL", "ws://localhost:8001/ws/alerts")
	v.SetDefault("CLASSIFIER_URL", "http://127.0.0.1:8000")
	v.SetDefault("PREDICTOR_URL", "http://127.0.0.1:8000")
	v.SetDefault("ALERT_DISMISS_SECONDS", 30)
	v.SetDefault("SURGE_REFRESH_SECONDS", 60)
	v.SetDefault("PREDICTION_REFRESH_SECONDS", 30)
	v.SetDefault("MAX_DATA_POINTS", 20)
	v.SetDefault("SURGE_THRESHOLD", 8)
	v.SetDefault("AVAILABLE_BEDS_DEFAULT", 75)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("ALERT_SOURCE_URL")
	v.BindEnv("CLASSIFIER_URL")
	v.BindEnv("PREDICTOR_URL")
	v.BindEnv("ALERT_DISMISS_SECONDS")
	v.BindEnv("SURGE_REFRESH_SECONDS")
	v.BindEnv("PREDICTION_REFRESH_SECONDS")
	v.BindEnv("MAX_DATA_POINTS")
	v.BindEnv("SURGE_THRESHOLD")
	v.BindEnv("AVAILABLE_BEDS_DEFAULT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// AlertDismiss returns how long an alert stays visible before auto-dismiss.
func (c *Config) AlertDismiss() time.Duration {
	return time.Duration(c.AlertDismissSeconds) * time.Second
}

// SurgeRefresh returns the polling period of the surge evolution widget.
func (c *Config) SurgeRefresh() time.Duration {
	return time.Duration(c.SurgeRefreshSeconds) * time.Second
}

// PredictionRefresh returns the polling period of the prediction comparison widget.
func (c *Config) PredictionRefresh() time.Duration {
	return time.Duration(c.PredictionRefreshSeconds) * time.Second
}

// Validate checks that the configuration is safe to run with. Widget
// periods and the display window must be positive or every refresh
// controller would spin or render nothing.
func (c *Config) Validate() error {
	if c.AlertDismissSeconds <= 0 {
		return fmt.Errorf("ALERT_DISMISS_SECONDS must be positive, got %d", c.AlertDismissSeconds)
	}
	if c.SurgeRefreshSeconds <= 0 {
		return fmt.Errorf("SURGE_REFRESH_SECONDS must be positive, got %d", c.SurgeRefreshSeconds)
	}
	if c.PredictionRefreshSeconds <= 0 {
		return fmt.Errorf("PREDICTION_REFRESH_SECONDS must be positive, got %d", c.PredictionRefreshSeconds)
	}
	if c.MaxDataPoints < 1 {
		return fmt.Errorf("MAX_DATA_POINTS must be at least 1, got %d", c.MaxDataPoints)
	}
	if c.AlertSourceURL == "" {
		return fmt.Errorf("ALERT_SOURCE_URL is required")
	}
	if c.ClassifierURL == "" {
		return fmt.Errorf("CLASSIFIER_URL is required")
	}
	return nil
}
