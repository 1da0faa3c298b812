package datasource

import "time"

const (
	DefaultPoolMaxSize            = 10
	DefaultPoolMinIdle            = 2
	DefaultConnectionTimeout      = 30 * time.Second
	DefaultIdleTimeout            = 10 * time.Minute
	DefaultMaxLifetime            = 30 * time.Minute
	DefaultValidationTimeout      = 5 * time.Second
	DefaultHealthCheckTimeout     = 5 * time.Second
	DefaultHealthCheckParallelism = 4
)

// PoolSettings bounds every pool the registry builds.
type PoolSettings struct {
	MaxPoolSize int32
	MinIdle     int32
	// ConnectionTimeout bounds how long Acquire may wait for a free connection.
	ConnectionTimeout time.Duration
	IdleTimeout       time.Duration
	MaxLifetime       time.Duration
	// ValidationTimeout bounds the probe run when a connection is created.
	ValidationTimeout time.Duration
}

// DefaultPoolSettings returns the settings used when none are configured.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxPoolSize:       DefaultPoolMaxSize,
		MinIdle:           DefaultPoolMinIdle,
		ConnectionTimeout: DefaultConnectionTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		MaxLifetime:       DefaultMaxLifetime,
		ValidationTimeout: DefaultValidationTimeout,
	}
}

// withDefaults fills zero fields from DefaultPoolSettings.
func (s PoolSettings) withDefaults() PoolSettings {
	d := DefaultPoolSettings()
	if s.MaxPoolSize <= 0 {
		s.MaxPoolSize = d.MaxPoolSize
	}
	if s.MinIdle < 0 {
		s.MinIdle = 0
	}
	if s.MinIdle > s.MaxPoolSize {
		s.MinIdle = s.MaxPoolSize
	}
	if s.ConnectionTimeout <= 0 {
		s.ConnectionTimeout = d.ConnectionTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = d.IdleTimeout
	}
	if s.MaxLifetime <= 0 {
		s.MaxLifetime = d.MaxLifetime
	}
	if s.ValidationTimeout <= 0 {
		s.ValidationTimeout = d.ValidationTimeout
	}
	return s
}
