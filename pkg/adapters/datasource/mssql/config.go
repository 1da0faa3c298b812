package mssql

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
)

// DefaultPort is the SQL Server listener port used when the URL omits one.
const DefaultPort = 1433

const driverName = "sqlserver"

// buildConnectionString returns the database/sql driver name and DSN for cfg.
// Query parameters in the URL (database, encrypt, TrustServerCertificate) are
// passed through to the driver, and a path names an instance. A fedauth
// parameter selects the Azure AD driver, which takes the client id and secret
// from the user and password.
func buildConnectionString(cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (string, string, error) {
	if cfg.URL == nil {
		return "", "", fmt.Errorf("connection url is required")
	}
	u := *cfg.URL
	if u.Scheme != "sqlserver" {
		return "", "", fmt.Errorf("unsupported url scheme %q (want sqlserver://)", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", "", fmt.Errorf("url must include a host")
	}
	// Named instances are located through SQL Browser unless a port is given.
	if u.Port() == "" && strings.Trim(u.Path, "/") == "" {
		u.Host = fmt.Sprintf("%s:%d", u.Hostname(), DefaultPort)
	}

	config.ResolveURLForDocker(&u)

	q := u.Query()
	if q.Get("encrypt") == "" {
		q.Set("encrypt", "true")
	}
	if q.Get("connection timeout") == "" && settings.ConnectionTimeout > 0 {
		q.Set("connection timeout", strconv.Itoa(int(settings.ConnectionTimeout.Seconds())))
	}

	name := driverName
	if q.Get("fedauth") != "" {
		name = azuread.DriverName
		if cfg.User != "" {
			q.Set("user id", cfg.User)
			q.Set("password", cfg.Password)
		}
	} else if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	u.RawQuery = q.Encode()

	return name, u.String(), nil
}
