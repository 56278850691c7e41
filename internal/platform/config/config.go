package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const maxDeckSize = 50

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	AppURL    string `env:"APP_URL"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	DeckSize    int `env:"DECK_SIZE" default:"12"`
	MaxSessions int `env:"MAX_SESSIONS" default:"1000"`

	AnimationTimeout time.Duration `env:"ANIMATION_TIMEOUT" default:"1s"`
	BoostDuration    time.Duration `env:"BOOST_DURATION" default:"3s"`
	ToastDuration    time.Duration `env:"TOAST_DURATION" default:"2s"`

	// Per-connection pointer-move throttling.
	EventRate  float64 `env:"EVENT_RATE" default:"120"`
	EventBurst int     `env:"EVENT_BURST" default:"240"`

	// Per-IP limits on WebSocket connections. Zero disables the check.
	WSMaxPerIP     int     `env:"WS_MAX_PER_IP" default:"10"`
	WSConnectRate  float64 `env:"WS_CONNECT_RATE" default:"5"`
	WSConnectBurst int     `env:"WS_CONNECT_BURST" default:"10"`

	// Per-IP limits on the REST API.
	APIRate  float64 `env:"API_RATE" default:"10"`
	APIBurst int     `env:"API_BURST" default:"20"`
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if !slices.Contains([]string{"development", "production", "test"}, cfg.AppEnv) {
		return fmt.Errorf("APP_ENV must be one of development, production, test, got %q", cfg.AppEnv)
	}
	if cfg.IsProduction() && cfg.AppURL == "" {
		return errors.New("APP_URL is required in production")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.DeckSize < 1 || cfg.DeckSize > maxDeckSize {
		return fmt.Errorf("DECK_SIZE must be between 1 and %d, got %d", maxDeckSize, cfg.DeckSize)
	}
	if cfg.MaxSessions < 1 {
		return fmt.Errorf("MAX_SESSIONS must be positive, got %d", cfg.MaxSessions)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"ANIMATION_TIMEOUT", cfg.AnimationTimeout},
		{"BOOST_DURATION", cfg.BoostDuration},
		{"TOAST_DURATION", cfg.ToastDuration},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}

	if cfg.EventRate <= 0 || cfg.EventBurst < 1 {
		return errors.New("EVENT_RATE and EVENT_BURST must be positive")
	}
	if cfg.WSMaxPerIP < 0 || cfg.WSConnectRate < 0 || cfg.WSConnectBurst < 0 {
		return errors.New("WS_MAX_PER_IP, WS_CONNECT_RATE and WS_CONNECT_BURST must not be negative")
	}
	if cfg.WSConnectRate > 0 && cfg.WSConnectBurst < 1 {
		return errors.New("WS_CONNECT_BURST must be positive when WS_CONNECT_RATE is set")
	}
	if cfg.APIRate <= 0 || cfg.APIBurst < 1 {
		return errors.New("API_RATE and API_BURST must be positive")
	}

	return nil
}
