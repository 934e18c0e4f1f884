package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/gag-stock-relay/internal/gagapi"
	"github.com/i474232898/gag-stock-relay/internal/render"
)

var validate = validator.New()

type AppConfig struct {
	// WebhookURL is the Discord webhook every message is posted to.
	WebhookURL      string `yaml:"webhook_url" validate:"required,url"`
	WebhookUsername string `yaml:"webhook_username"`

	APIBase     string        `yaml:"api_base" validate:"required,url"`
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"gt=0"`

	// FetchInterval controls how often `serve` runs the relay.
	FetchInterval time.Duration `yaml:"fetch_interval" validate:"gt=0"`

	MaxItemsPerCategory int           `yaml:"max_items_per_category" validate:"gte=1"`
	Limits              render.Limits `yaml:"limits"`

	// Run history retention for the status API.
	StoreMaxHistory int           `yaml:"store_max_history" validate:"gte=0"` // 0 = unlimited
	StoreMaxAge     time.Duration `yaml:"store_max_age" validate:"gte=0"`     // 0 = unlimited

	Port      string     `yaml:"port" validate:"required,numeric"`
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format" validate:"oneof=text json"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *AppConfig {
	return &AppConfig{
		APIBase:             gagapi.DefaultBaseURL,
		HTTPTimeout:         12 * time.Second,
		FetchInterval:       5 * time.Minute,
		MaxItemsPerCategory: 15,
		Limits:              render.DefaultLimits(),
		StoreMaxHistory:     288, // 24h at 5-minute intervals
		StoreMaxAge:         24 * time.Hour,
		Port:                "8080",
		LogLevel:            slog.LevelInfo,
		LogFormat:           "text",
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path (environment variables are expanded in it), then the environment.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.WebhookURL = getenvDefault("DISCORD_WEBHOOK", cfg.WebhookURL)
	cfg.WebhookUsername = getenvDefault("DISCORD_USERNAME", cfg.WebhookUsername)
	cfg.APIBase = getenvDefault("GAG_API_BASE", cfg.APIBase)
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.LogFormat = getenvDefault("LOG_FORMAT", cfg.LogFormat)

	cfg.MaxItemsPerCategory = getenvInt("MAX_ITEMS_PER_CATEGORY", cfg.MaxItemsPerCategory)
	cfg.Limits.Columns = getenvInt("LAYOUT_COLUMNS", cfg.Limits.Columns)
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", cfg.FetchInterval); err != nil {
		return err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", cfg.StoreMaxAge); err != nil {
		return err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Printf("INFO: ignoring invalid %s=%q", key, v)
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
