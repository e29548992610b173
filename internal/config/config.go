package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Generation GenerationConfig
	Auth       AuthConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port          int
	PublicBaseURL string
	CORSOrigins   string
}

// StorageConfig selects the database. DSN is either a data directory for the
// embedded SQLite database, ":memory:", or a postgres:// connection URL.
type StorageConfig struct {
	DSN string
}

type GenerationConfig struct {
	Provider    string // "openai", "ollama" or "gemini"
	BaseURL     string // empty selects the provider's own endpoint
	Model       string
	APIKey      string
	Timeout     string
	Temperature float64
}

type AuthConfig struct {
	JWTSecret     string
	WebhookSecret string
}

type LogConfig struct {
	Level string
}

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:          8080,
			PublicBaseURL: "http://localhost:8080",
			CORSOrigins:   "*",
		},
		Storage: StorageConfig{
			DSN: defaultDataDir(),
		},
		Generation: GenerationConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			Timeout:     "60s",
			Temperature: 0.7,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the YAML file backend and environment
// variables. The file lives at $XDG_CONFIG_HOME/meishi/config.yaml; secrets
// are never read from it and must come from MEISHI_* environment variables.
//
// Environment variables override file values.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("missing required config: auth.jwt_secret (set MEISHI_AUTH_JWT_SECRET)"))
	}
	switch c.Generation.Provider {
	case ProviderOllama:
	case ProviderOpenAI, ProviderGemini:
		if c.Generation.APIKey == "" {
			errs = append(errs, fmt.Errorf("missing required config: generation.api_key for provider %q (set MEISHI_GENERATION_API_KEY)", c.Generation.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown generation provider %q", c.Generation.Provider))
	}
	if _, err := c.Generation.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TimeoutDuration parses the per-call generation timeout.
func (g GenerationConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid generation.timeout %q: %w", g.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid generation.timeout %q: must be positive", g.Timeout)
	}
	return d, nil
}

// UsesPostgres reports whether the storage DSN points at a Postgres server.
func (s StorageConfig) UsesPostgres() bool {
	return strings.HasPrefix(s.DSN, "postgres://") || strings.HasPrefix(s.DSN, "postgresql://")
}

// Origins splits the comma-separated CORS origin list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
