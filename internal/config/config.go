package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/ftmodel/internal/errors"
	"github.com/Aman-CERP/ftmodel/pkg/backend"
	"github.com/Aman-CERP/ftmodel/pkg/record"
)

// DefaultDatabaseName is the key namespace used when none is configured.
const DefaultDatabaseName = "database"

// ProjectFiles are the project config names, tried in order.
var ProjectFiles = []string{".ftmodel.yaml", ".ftmodel.yml"}

// Config represents the complete ftmodel configuration.
type Config struct {
	Version   int                `yaml:"version" json:"version"`
	Redis     RedisConfig        `yaml:"redis" json:"redis"`
	Database  DatabaseConfig     `yaml:"database" json:"database"`
	Retry     RetryConfig        `yaml:"retry" json:"retry"`
	Circuit   CircuitConfig      `yaml:"circuit" json:"circuit"`
	Server    ServerConfig       `yaml:"server" json:"server"`
	Telemetry TelemetryConfig    `yaml:"telemetry" json:"telemetry"`
	Models    []record.ModelSpec `yaml:"models" json:"models"`
}

// RedisConfig configures the RediSearch/RedisJSON connection.
type RedisConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	Username     string        `yaml:"username,omitempty" json:"username,omitempty"`
	Password     string        `yaml:"password,omitempty" json:"-"`
	DB           int           `yaml:"db" json:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	PoolSize     int           `yaml:"pool_size" json:"pool_size"`
}

// DatabaseConfig names the logical database that prefixes every key and index.
type DatabaseConfig struct {
	Name string `yaml:"name" json:"name"`
}

// RetryConfig configures backoff for transport failures.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay" json:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
}

// CircuitConfig configures the backend circuit breaker.
// MaxFailures of zero disables the breaker.
type CircuitConfig struct {
	MaxFailures  int           `yaml:"max_failures" json:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout" json:"reset_timeout"`
}

// ServerConfig configures the HTTP server and logging.
type ServerConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst"`
}

// TelemetryConfig configures in-process query telemetry.
type TelemetryConfig struct {
	Enabled     bool `yaml:"enabled" json:"enabled"`
	TopFields   int  `yaml:"top_fields" json:"top_fields"`
	ZeroResults int  `yaml:"zero_results" json:"zero_results"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	retry := errors.DefaultRetryConfig()
	return &Config{
		Version: 1,
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		},
		Database: DatabaseConfig{
			Name: DefaultDatabaseName,
		},
		Retry: RetryConfig{
			MaxRetries:   retry.MaxRetries,
			InitialDelay: retry.InitialDelay,
			MaxDelay:     retry.MaxDelay,
			Multiplier:   retry.Multiplier,
		},
		Circuit: CircuitConfig{
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8080",
			LogLevel:  "info",
			RateLimit: 50,
			Burst:     100,
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			TopFields:   100,
			ZeroResults: 100,
		},
		Models: []record.ModelSpec{},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/ftmodel/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/ftmodel/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ftmodel", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "ftmodel", "config.yaml")
	}
	return filepath.Join(home, ".config", "ftmodel", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// ProjectConfigPath returns the project config file in dir, or "" if there is none.
func ProjectConfigPath(dir string) string {
	for _, name := range ProjectFiles {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

// Load loads configuration for the project in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/ftmodel/config.yaml)
//  3. Project config (.ftmodel.yaml in dir)
//  4. Environment variables (FTMODEL_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if path := ProjectConfigPath(dir); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads defaults overlaid with a single file, then env overrides.
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML overlays the keys present in path onto c.
// Keys absent from the file keep their current value.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeConfigNotFound, "config file not found: "+path, err)
		}
		if os.IsPermission(err) {
			return errors.New(errors.ErrCodeConfigPermission, "cannot read config file: "+path, err)
		}
		return errors.New(errors.ErrCodeConfigInvalid, "failed to read config file: "+path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid, "failed to parse config file: "+path, err).
			WithDetail("path", path).
			WithSuggestion("Check the YAML syntax; durations are written like 500ms or 3s")
	}
	return nil
}

// applyEnvOverrides applies FTMODEL_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FTMODEL_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("FTMODEL_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("FTMODEL_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Newf(errors.ErrCodeConfigInvalid, "FTMODEL_REDIS_DB must be an integer, got %q", v)
		}
		c.Redis.DB = db
	}
	if v := os.Getenv("FTMODEL_DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("FTMODEL_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("FTMODEL_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Redis.Addr); err != nil {
		return invalid("redis.addr must be host:port, got %q", c.Redis.Addr)
	}
	if c.Redis.DB < 0 {
		return invalid("redis.db must be non-negative, got %d", c.Redis.DB)
	}
	if c.Redis.PoolSize < 0 {
		return invalid("redis.pool_size must be non-negative, got %d", c.Redis.PoolSize)
	}
	if c.Database.Name == "" || strings.ContainsAny(c.Database.Name, ": ") {
		return invalid("database.name must be non-empty without ':' or spaces, got %q", c.Database.Name)
	}

	if c.Retry.MaxRetries < 0 {
		return invalid("retry.max_retries must be non-negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.MaxRetries > 0 && c.Retry.Multiplier < 1 {
		return invalid("retry.multiplier must be at least 1, got %g", c.Retry.Multiplier)
	}
	if c.Circuit.MaxFailures < 0 {
		return invalid("circuit.max_failures must be non-negative, got %d", c.Circuit.MaxFailures)
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid("server.addr must be host:port, got %q", c.Server.Addr)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return invalid("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}
	if c.Server.RateLimit < 0 {
		return invalid("server.rate_limit must be non-negative, got %g", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return invalid("server.burst must be at least 1 when rate_limiting, got %d", c.Server.Burst)
	}

	if _, err := c.Registry(); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid, "invalid models: "+err.Error(), err).
			WithSuggestion("Each model needs a unique name and fields with a type of TEXT, TAG, NUMERIC, STRING or BOOLEAN")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...), nil)
}

// Registry builds the model registry declared under models.
func (c *Config) Registry() (*record.Registry, error) {
	return record.NewRegistryFromSpecs(c.Database.Name, c.Models)
}

// BackendConfig returns the go-redis adapter settings.
func (c *Config) BackendConfig() backend.RedisConfig {
	return backend.RedisConfig{
		Addr:         c.Redis.Addr,
		Username:     c.Redis.Username,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		DialTimeout:  c.Redis.DialTimeout,
		ReadTimeout:  c.Redis.ReadTimeout,
		WriteTimeout: c.Redis.WriteTimeout,
		PoolSize:     c.Redis.PoolSize,
	}
}

// RetryPolicy returns the retry settings for transport failures.
func (c *Config) RetryPolicy() errors.RetryConfig {
	return errors.RetryConfig{
		MaxRetries:   c.Retry.MaxRetries,
		InitialDelay: c.Retry.InitialDelay,
		MaxDelay:     c.Retry.MaxDelay,
		Multiplier:   c.Retry.Multiplier,
		Jitter:       true,
		RetryIf:      errors.IsRetryable,
	}
}

// CircuitBreaker returns the configured breaker, or nil when disabled.
func (c *Config) CircuitBreaker() *errors.CircuitBreaker {
	if c.Circuit.MaxFailures == 0 {
		return nil
	}
	return errors.NewCircuitBreaker("redis",
		errors.WithMaxFailures(c.Circuit.MaxFailures),
		errors.WithResetTimeout(c.Circuit.ResetTimeout),
		errors.WithFailureFilter(errors.IsRetryable),
	)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(errors.ErrCodeInternal, "failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New(errors.ErrCodeConfigPermission, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.New(errors.ErrCodeConfigPermission, "failed to write config file: "+path, err)
	}
	return nil
}

// LoadUserConfig loads the user configuration file over the defaults.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileExists checks if a file exists (not a directory).
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
