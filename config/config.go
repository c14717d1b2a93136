// Package config loads estimator settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// PDF renderers selectable with DOCUMENT_RENDERER.
const (
	RendererMaroto   = "maroto"
	RendererChromedp = "chromedp"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	CatalogSource    string
	CatalogTimeout   time.Duration
	DocumentRenderer string
	ChromePath       string
	EstimateTitle    string
	TermsOnNewPage   bool
	SessionIdleTTL   time.Duration
	FixtureLumens    float64
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		CatalogSource:    valueOrDefault(k.String("CATALOG_SOURCE"), "static/products.json"),
		CatalogTimeout:   parseDuration(k.String("CATALOG_TIMEOUT"), "10s"),
		DocumentRenderer: strings.ToLower(valueOrDefault(k.String("DOCUMENT_RENDERER"), RendererMaroto)),
		ChromePath:       strings.TrimSpace(k.String("CHROME_PATH")),
		EstimateTitle:    valueOrDefault(k.String("ESTIMATE_TITLE"), "Lighting Fixture Estimation"),
		TermsOnNewPage:   parseBool(k.String("ESTIMATE_TERMS_NEW_PAGE")),
		SessionIdleTTL:   parseDuration(k.String("SESSION_IDLE_TTL"), "2h"),
		FixtureLumens:    k.Float64("FIXTURE_LUMENS"),
	}
	if cfg.FixtureLumens <= 0 {
		cfg.FixtureLumens = 800
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that cannot fall back to a default.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CatalogSource, validation.Required),
		validation.Field(&c.DocumentRenderer, validation.In(RendererMaroto, RendererChromedp)),
		validation.Field(&c.CatalogTimeout, validation.Min(time.Second)),
	)
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
