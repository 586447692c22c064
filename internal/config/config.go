// Package config handles loading and validating the askandsign configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ketoprak/askandsign/internal/signs"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "ASKSIGN"

// Assistant backends
const (
	BackendGemini = "gemini"
	BackendReAct  = "react"
	BackendMock   = "mock"
)

// Config is the root configuration.
type Config struct {
	Query     QueryConfig     `mapstructure:"query"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Sign      SignConfig      `mapstructure:"sign"`
	Logging   LoggingConfig   `mapstructure:"logging"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// QueryConfig configures the SQL query service and its client.
type QueryConfig struct {
	Addr       string `mapstructure:"addr"`
	DSN        string `mapstructure:"dsn"` // SQLite path, ":memory:" or postgres:// URL
	ReadOnly   bool   `mapstructure:"read_only"`
	AuthSecret string `mapstructure:"auth_secret"`
	Endpoint   string `mapstructure:"endpoint"` // where the assistant's tool posts queries
}

// Postgres reports whether DSN selects the Postgres backend.
func (q QueryConfig) Postgres() bool {
	return strings.HasPrefix(q.DSN, "postgres://") || strings.HasPrefix(q.DSN, "postgresql://")
}

// AssistantConfig selects and configures the agent backend.
type AssistantConfig struct {
	Backend       string  `mapstructure:"backend"` // gemini, react or mock
	APIKey        string  `mapstructure:"api_key"`
	Model         string  `mapstructure:"model"`
	BaseURL       string  `mapstructure:"base_url"` // react only
	Temperature   float64 `mapstructure:"temperature"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

// SignConfig configures the speech-to-sign translator.
type SignConfig struct {
	Addr            string        `mapstructure:"addr"`
	AssetsDir       string        `mapstructure:"assets_dir"`
	MaxWidth        int           `mapstructure:"max_width"`
	Loops           int           `mapstructure:"loops"`
	FrameInterval   time.Duration `mapstructure:"frame_interval"`
	Hold            time.Duration `mapstructure:"hold"`
	DisplayCols     int           `mapstructure:"display_cols"`
	Recorder        string        `mapstructure:"recorder"`
	Device          string        `mapstructure:"device"`
	SampleRate      int           `mapstructure:"sample_rate"`
	PhraseLimit     time.Duration `mapstructure:"phrase_limit"`
	EnergyThreshold float64       `mapstructure:"energy_threshold"`
	Language        string        `mapstructure:"language"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Phrases         []signs.Entry `mapstructure:"phrases"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// Load reads the configuration from .env, file, environment variables and
// defaults. If configFile is non-empty it is used directly; otherwise the
// search order is ./askandsign.yaml, ./configs/askandsign.yaml,
// /etc/askandsign/askandsign.yaml.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("askandsign")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/askandsign")
	}

	// Environment variables: ASKSIGN_QUERY_ADDR, ASKSIGN_ASSISTANT_BACKEND, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.Assistant.APIKey = resolveEnvRef(cfg.Assistant.APIKey)
	cfg.Query.AuthSecret = resolveEnvRef(cfg.Query.AuthSecret)
	cfg.Query.DSN = resolveEnvRef(cfg.Query.DSN)

	if cfg.Assistant.APIKey == "" {
		cfg.Assistant.APIKey = os.Getenv(ProviderKeyEnv(cfg.Assistant.Backend))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("query.addr", ":8000")
	v.SetDefault("query.dsn", "data.db")
	v.SetDefault("query.read_only", false)
	v.SetDefault("query.auth_secret", "")
	v.SetDefault("query.endpoint", "http://localhost:8000/query")

	v.SetDefault("assistant.backend", BackendGemini)
	v.SetDefault("assistant.api_key", "")
	v.SetDefault("assistant.model", "")
	v.SetDefault("assistant.base_url", "")
	v.SetDefault("assistant.temperature", 0.3)
	v.SetDefault("assistant.max_iterations", 8)

	v.SetDefault("sign.addr", ":8080")
	v.SetDefault("sign.assets_dir", "assets")
	v.SetDefault("sign.max_width", 600)
	v.SetDefault("sign.loops", 3)
	v.SetDefault("sign.frame_interval", "100ms")
	v.SetDefault("sign.hold", "2s")
	v.SetDefault("sign.display_cols", 0)
	v.SetDefault("sign.recorder", "arecord")
	v.SetDefault("sign.device", "")
	v.SetDefault("sign.sample_rate", 16000)
	v.SetDefault("sign.phrase_limit", "5s")
	v.SetDefault("sign.energy_threshold", 300)
	v.SetDefault("sign.language", "en-US")
	v.SetDefault("sign.credentials_file", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// ProviderKeyEnv names the provider-specific environment variable holding
// the API key for backend.
func ProviderKeyEnv(backend string) string {
	switch backend {
	case BackendReAct:
		return "NVIDIA_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Assistant.Backend {
	case BackendGemini, BackendReAct, BackendMock:
	default:
		return fmt.Errorf("assistant.backend must be one of gemini, react, mock; got %q", c.Assistant.Backend)
	}
	if c.Assistant.Temperature < 0 || c.Assistant.Temperature > 2 {
		return fmt.Errorf("assistant.temperature must be between 0 and 2, got %v", c.Assistant.Temperature)
	}
	if c.Query.DSN == "" {
		return fmt.Errorf("query.dsn is required")
	}
	if c.Sign.Loops < 1 {
		return fmt.Errorf("sign.loops must be at least 1, got %d", c.Sign.Loops)
	}
	if c.Sign.MaxWidth < 1 {
		return fmt.Errorf("sign.max_width must be positive, got %d", c.Sign.MaxWidth)
	}
	if c.Sign.FrameInterval <= 0 || c.Sign.PhraseLimit <= 0 {
		return fmt.Errorf("sign.frame_interval and sign.phrase_limit must be positive")
	}
	return nil
}

// PhraseTable builds the configured phrase table, falling back to the
// built-in one.
func (c *Config) PhraseTable() (*signs.Table, error) {
	if len(c.Sign.Phrases) == 0 {
		return signs.DefaultTable(), nil
	}
	return signs.NewTable(c.Sign.Phrases)
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}
