package shared

import (
	_ "embed"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the config file.
const (
	EnvAPIKey  = "WICKET_API_KEY"
	EnvAPIHost = "WICKET_API_HOST"
	EnvMatchID = "WICKET_MATCH_ID"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Sync     SyncConfig     `toml:"sync"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// ProviderConfig holds the RapidAPI credential pair and request settings.
type ProviderConfig struct {
	BaseURL   string   `toml:"base_url" validate:"required,url"`
	APIKey    string   `toml:"api_key"`
	APIHost   string   `toml:"api_host" validate:"required"`
	Timeout   Duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit" validate:"gte=0"`
}

// SyncConfig controls the refresh cadence and the failure budget.
type SyncConfig struct {
	MatchID          string   `toml:"match_id" validate:"omitempty,numeric"`
	Interval         Duration `toml:"interval"`
	BackoffCap       Duration `toml:"backoff_cap"`
	MaxRetryAttempts int      `toml:"max_retry_attempts" validate:"gte=0,lte=10"`
	AutoRefresh      bool     `toml:"auto_refresh"`
	QueueSize        int      `toml:"queue_size" validate:"gte=1,lte=64"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
	Journal      bool   `toml:"journal"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `toml:"file"`
}

// Duration is a [time.Duration] written as a string ("10s", "5m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", string(text))
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Addr joins the server host and port.
func (c ServerConfig) Addr() string {
	if c.Port == 0 {
		return ""
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadConfig reads a TOML configuration file from path, layered over the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrMissingConfig, "%s", path)
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse config"), ErrInvalidConfig)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic("failed to parse embedded default config: " + err.Error())
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create config file")
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	return nil
}

// ApplyEnv loads envFile (when it exists) with godotenv and applies the
// WICKET_* overrides. Variables already set in the process win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to load %s", envFile)
		}
	}

	if v, ok := os.LookupEnv(EnvAPIKey); ok {
		c.Provider.APIKey = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvAPIHost); ok && strings.TrimSpace(v) != "" {
		c.Provider.APIHost = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvMatchID); ok {
		c.Sync.MatchID = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks struct constraints and the duration fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Mark(errors.Wrap(err, "config validation failed"), ErrInvalidConfig)
	}

	switch {
	case c.Provider.Timeout.Duration <= 0:
		return errors.Wrap(ErrInvalidConfig, "provider.timeout must be positive")
	case c.Sync.Interval.Duration <= 0:
		return errors.Wrap(ErrInvalidConfig, "sync.interval must be positive")
	case c.Sync.BackoffCap.Duration < c.Sync.Interval.Duration:
		return errors.Wrap(ErrInvalidConfig, "sync.backoff_cap must not be shorter than sync.interval")
	}
	return nil
}

// RequireCredentials reports [ErrMissingCredentials] when no API key is configured.
func (c *Config) RequireCredentials() error {
	if strings.TrimSpace(c.Provider.APIKey) == "" {
		return errors.WithHint(
			errors.Wrap(ErrMissingCredentials, "provider.api_key is empty"),
			"run `wicket setup provider` or set "+EnvAPIKey,
		)
	}
	return nil
}
