package postgres

import (
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
)

// DefaultSSLMode is applied when the URL does not set sslmode.
const DefaultSSLMode = "prefer"

// buildConnectionString builds a PostgreSQL URL from the connection URL and credentials.
// Credentials passed separately take precedence over any userinfo in the URL and are
// escaped by net/url, so passwords containing @, /, # or ? are safe.
// When running in Docker, localhost is resolved to host.docker.internal.
func buildConnectionString(cfg datasource.ConnectionConfig) (string, error) {
	if cfg.URL == nil {
		return "", fmt.Errorf("connection url is required")
	}
	u := *cfg.URL
	switch u.Scheme {
	case "postgresql", "postgres":
	default:
		return "", fmt.Errorf("unsupported url scheme %q (want postgresql://)", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url must include a host")
	}

	config.ResolveURLForDocker(&u)

	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", DefaultSSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// poolConfig parses connStr and applies the pool settings.
func poolConfig(connStr string, settings datasource.PoolSettings) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	pc.MaxConns = settings.MaxPoolSize
	pc.MinConns = settings.MinIdle
	pc.MaxConnIdleTime = settings.IdleTimeout
	pc.MaxConnLifetime = settings.MaxLifetime
	pc.ConnConfig.ConnectTimeout = settings.ConnectionTimeout
	return pc, nil
}
