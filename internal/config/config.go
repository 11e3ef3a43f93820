// ABOUTME: Configuration loading and parsing for deep-thoughts
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// MinSecretLength is the minimum accepted length of auth.jwt_secret in bytes.
const MinSecretLength = 32

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
)

// Defaults applied by Load when a field is left empty
const (
	DefaultHTTPAddr         = "localhost:3001"
	DefaultTokenTTL         = 2 * time.Hour
	DefaultShutdownTimeout  = 5 * time.Second
	DefaultMaxLoginFailures = 5
	DefaultLoginLockout     = 15 * time.Minute
	DefaultMetricsPath      = "/metrics"
)

// Config represents the complete deep-thoughts server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale" toml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins" toml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`

	ShutdownTimeoutRaw string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // public Funnel, implies HTTPS
}

// DatabaseConfig selects and configures the document store
type DatabaseConfig struct {
	Driver   string         `yaml:"driver" toml:"driver"`
	Path     string         `yaml:"path" toml:"path"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb" toml:"dynamodb"`
}

// DynamoDBConfig holds settings for the DynamoDB store
type DynamoDBConfig struct {
	Table    string `yaml:"table" toml:"table"`
	Region   string `yaml:"region" toml:"region"`
	Endpoint string `yaml:"endpoint" toml:"endpoint"` // e.g. http://localhost:8000 for dynamodb-local
}

// AuthConfig holds credential and login settings
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret" toml:"jwt_secret"`
	Issuer           string        `yaml:"issuer" toml:"issuer"`
	TokenTTL         time.Duration `yaml:"-" toml:"-"`
	LoginLockout     time.Duration `yaml:"-" toml:"-"`

	// MaxLoginFailures is the number of failed logins that locks out an email.
	// Zero disables the lockout.
	MaxLoginFailures int `yaml:"-" toml:"-"`

	// Raw values for unmarshaling
	TokenTTLRaw         string `yaml:"token_ttl" toml:"token_ttl"`
	LoginLockoutRaw     string `yaml:"login_lockout" toml:"login_lockout"`
	MaxLoginFailuresRaw *int   `yaml:"max_login_failures" toml:"max_login_failures"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, formatFor(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes raw configuration content in the given format ("yaml" or "toml"),
// applies defaults and environment overrides, and validates the result.
func Parse(data []byte, format string) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	switch format {
	case "toml":
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func formatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides lets deployment environments override file values.
// PORT mirrors the common PaaS convention of binding every interface on that port.
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.HTTPAddr = ":" + port
	}
	if dbPath := os.Getenv("DEEP_THOUGHTS_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" && !cfg.Tailscale.Enabled {
		cfg.Server.HTTPAddr = DefaultHTTPAddr
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}
	// An absent key gets the default; an explicit 0 turns the lockout off.
	if cfg.Auth.MaxLoginFailuresRaw != nil {
		cfg.Auth.MaxLoginFailures = *cfg.Auth.MaxLoginFailuresRaw
	} else {
		cfg.Auth.MaxLoginFailures = DefaultMaxLoginFailures
	}
	if cfg.Auth.LoginLockout == 0 {
		cfg.Auth.LoginLockout = DefaultLoginLockout
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case DriverDynamoDB:
		if c.Database.DynamoDB.Table == "" {
			return fmt.Errorf("database.dynamodb.table is required for the dynamodb driver")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported (want %s or %s)", c.Database.Driver, DriverSQLite, DriverDynamoDB)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < MinSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinSecretLength)
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Auth.MaxLoginFailures < 0 {
		return fmt.Errorf("auth.max_login_failures must not be negative (use 0 to disable the lockout)")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (want text or json)", c.Logging.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Auth.TokenTTLRaw != "" {
		cfg.Auth.TokenTTL, err = time.ParseDuration(cfg.Auth.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl %q: %w", cfg.Auth.TokenTTLRaw, err)
		}
	}

	if cfg.Auth.LoginLockoutRaw != "" {
		cfg.Auth.LoginLockout, err = time.ParseDuration(cfg.Auth.LoginLockoutRaw)
		if err != nil {
			return fmt.Errorf("parsing login_lockout %q: %w", cfg.Auth.LoginLockoutRaw, err)
		}
	}

	if cfg.Server.ShutdownTimeoutRaw != "" {
		cfg.Server.ShutdownTimeout, err = time.ParseDuration(cfg.Server.ShutdownTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing shutdown_timeout %q: %w", cfg.Server.ShutdownTimeoutRaw, err)
		}
	}

	return nil
}
