package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

// DefaultConfigPath is read when present; environment variables always override it.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for ekaya-dbconsole.
// Configuration can come from a YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Pool holds the settings applied to every connection pool the registry builds.
	Pool PoolConfig `yaml:"pool"`

	// DefaultConnection is created at startup and becomes the initial current connection.
	DefaultConnection DefaultConnectionConfig `yaml:"default_connection"`
}

// PoolConfig holds per-connection pool sizing and timeouts.
type PoolConfig struct {
	MaxPoolSize int32 `yaml:"max_pool_size" env:"POOL_MAX_SIZE" env-default:"10"`
	MinIdle     int32 `yaml:"min_idle" env:"POOL_MIN_IDLE" env-default:"2"`
	// ConnectionTimeout bounds how long a caller waits to acquire a pooled connection.
	ConnectionTimeout time.Duration `yaml:"connection_timeout" env:"POOL_CONNECTION_TIMEOUT" env-default:"30s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" env:"POOL_IDLE_TIMEOUT" env-default:"10m"`
	MaxLifetime       time.Duration `yaml:"max_lifetime" env:"POOL_MAX_LIFETIME" env-default:"30m"`
	// ValidationTimeout bounds the liveness check run when a connection is created.
	ValidationTimeout time.Duration `yaml:"validation_timeout" env:"POOL_VALIDATION_TIMEOUT" env-default:"5s"`
	// HealthCheckTimeout bounds each per-connection probe of the health monitor.
	HealthCheckTimeout     time.Duration `yaml:"health_check_timeout" env:"HEALTH_CHECK_TIMEOUT" env-default:"5s"`
	HealthCheckParallelism int           `yaml:"health_check_parallelism" env:"HEALTH_CHECK_PARALLELISM" env-default:"4"`
}

// DefaultConnectionConfig describes the connection created at startup.
type DefaultConnectionConfig struct {
	Enabled  bool   `yaml:"enabled" env:"DEFAULT_DB_ENABLED" env-default:"true"`
	Name     string `yaml:"name" env:"DEFAULT_DB_NAME" env-default:"default"`
	Dialect  string `yaml:"dialect" env:"DEFAULT_DB_DIALECT" env-default:"sqlite"`
	URL      string `yaml:"url" env:"DEFAULT_DB_URL" env-default:"sqlite::memory:"`
	User     string `yaml:"user" env:"DEFAULT_DB_USER" env-default:"sa"`
	Password string `yaml:"-" env:"DEFAULT_DB_PASSWORD"` // Secret - not in YAML
}

// Load reads configuration from config.yaml (if it exists) with environment variable
// overrides. The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultConfigPath, version)
}

// LoadFrom is Load with an explicit YAML path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(statErr, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks pool bounds and the default connection definition.
func (c *Config) Validate() error {
	p := c.Pool
	if p.MaxPoolSize <= 0 {
		return fmt.Errorf("pool.max_pool_size must be positive, got %d", p.MaxPoolSize)
	}
	if p.MinIdle < 0 || p.MinIdle > p.MaxPoolSize {
		return fmt.Errorf("pool.min_idle must be between 0 and max_pool_size (%d), got %d", p.MaxPoolSize, p.MinIdle)
	}
	if p.ConnectionTimeout <= 0 {
		return fmt.Errorf("pool.connection_timeout must be positive")
	}
	if p.ValidationTimeout <= 0 || p.HealthCheckTimeout <= 0 {
		return fmt.Errorf("pool.validation_timeout and pool.health_check_timeout must be positive")
	}

	if c.DefaultConnection.Enabled {
		d := c.DefaultConnection
		if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Dialect) == "" || strings.TrimSpace(d.URL) == "" {
			return fmt.Errorf("default_connection requires name, dialect and url when enabled")
		}
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}

// RegistryConfig converts the pool section into connection registry settings.
func (c *Config) RegistryConfig() datasource.RegistryConfig {
	p := c.Pool
	return datasource.RegistryConfig{
		Pool: datasource.PoolSettings{
			MaxPoolSize:       p.MaxPoolSize,
			MinIdle:           p.MinIdle,
			ConnectionTimeout: p.ConnectionTimeout,
			IdleTimeout:       p.IdleTimeout,
			MaxLifetime:       p.MaxLifetime,
			ValidationTimeout: p.ValidationTimeout,
		},
		DefaultName:            c.DefaultConnection.Name,
		HealthCheckTimeout:     p.HealthCheckTimeout,
		HealthCheckParallelism: p.HealthCheckParallelism,
	}
}

// DefaultConnectionSpec returns the startup connection definition.
func (c *Config) DefaultConnectionSpec() datasource.ConnectionSpec {
	d := c.DefaultConnection
	return datasource.ConnectionSpec{
		Name:     d.Name,
		Dialect:  d.Dialect,
		URL:      d.URL,
		User:     d.User,
		Password: d.Password,
	}
}
