package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the journal service
// Environment variables are automatically parsed from JOURNAL_ prefix
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: auto, postgres, sqlite
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// SQLite file used by the local build target
	SQLitePath string `envconfig:"SQLITE_PATH" default:""`

	// API keys accepted by the service, as key:userID pairs
	APIKeys map[string]string `envconfig:"API_KEYS"`
	// DevAuth also accepts the fixed local development key
	DevAuth bool `envconfig:"DEV_AUTH" default:"true"`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthCheckTimeoutSeconds int `envconfig:"HEALTH_CHECK_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"5"`

	// ElevenLabs text-to-speech
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY" default:""`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io"`
	ElevenLabsVoiceID string `envconfig:"ELEVENLABS_VOICE_ID" default:"pNInz6obpgDQGcFmaJgB"`
	ElevenLabsModelID string `envconfig:"ELEVENLABS_MODEL_ID" default:"eleven_monolingual_v1"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver and SQLitePath when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	case "local":
		defaultDB = "sqlite"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}
	if c.DBDriver == "sqlite" && c.SQLitePath == "" {
		c.SQLitePath = "data/journal.db"
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for DB_DRIVER=postgres")
	}
	if c.BuildTarget == "cloud" && c.DevAuth {
		return fmt.Errorf("DEV_AUTH must be disabled for BUILD_TARGET=cloud")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with JOURNAL_
// Example: JOURNAL_HTTP_PORT, JOURNAL_POSTGRES_DSN
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("JOURNAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("sqlite_path", cfg.SQLitePath).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Int("api_keys", len(cfg.APIKeys)).
		Bool("dev_auth", cfg.DevAuth).
		Bool("elevenlabs_configured", cfg.ElevenLabsAPIKey != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		BuildTarget:               "local",
		DBDriver:                  "sqlite",
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DevAuth:                   true,
		HealthIntervalSeconds:     30,
		HealthCheckTimeoutSeconds: 2,
		BootstrapTimeoutSeconds:   5,
		ElevenLabsBaseURL:         "https://api.elevenlabs.io",
		ElevenLabsVoiceID:         "pNInz6obpgDQGcFmaJgB",
		ElevenLabsModelID:         "eleven_monolingual_v1",
	}
}

// IsDevMode reports whether the local development key is accepted.
func (c *Config) IsDevMode() bool {
	return c.DevAuth && c.Environment != EnvProduction
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// HealthInterval returns the health polling interval.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

// HealthCheckTimeout returns the per-check timeout.
func (c *Config) HealthCheckTimeout() time.Duration {
	return time.Duration(c.HealthCheckTimeoutSeconds) * time.Second
}

// ClientConfig configures journalctl. Flags override it.
type ClientConfig struct {
	APIURL             string `envconfig:"API_URL" default:"http://localhost:8080"`
	APIKey             string `envconfig:"API_KEY" default:""`
	HTTPTimeoutSeconds int    `envconfig:"HTTP_TIMEOUT_SECONDS" default:"30"`
	Debug              bool   `envconfig:"DEBUG" default:"false"`

	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY" default:""`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io"`
	ElevenLabsVoiceID string `envconfig:"ELEVENLABS_VOICE_ID" default:"pNInz6obpgDQGcFmaJgB"`
	AudioDir          string `envconfig:"AUDIO_DIR" default:""`
}

// NewClient loads the client configuration from JOURNAL_ variables.
func NewClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("JOURNAL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// HTTPTimeout returns the per-request timeout for the API client.
func (c *ClientConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
