package mysql

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
)

// DefaultPort is used when the URL omits one.
const DefaultPort = "3306"

// driverConfig converts a mysql://host:port/dbname?opts URL into a driver config.
// Query parameters are parsed as DSN parameters, so driver options such as loc,
// collation or readTimeout land in their typed fields and only unknown keys are
// sent to the server as system variables.
func driverConfig(cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (*mysql.Config, error) {
	if cfg.URL == nil {
		return nil, fmt.Errorf("connection url is required")
	}
	u := *cfg.URL
	if u.Scheme != "mysql" && u.Scheme != "mariadb" {
		return nil, fmt.Errorf("unsupported url scheme %q (want mysql://)", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url must include a host")
	}
	if u.Port() == "" {
		u.Host = u.Hostname() + ":" + DefaultPort
	}
	config.ResolveURLForDocker(&u)

	query := u.Query()
	dsn := "tcp(" + u.Host + ")/" + url.PathEscape(strings.Trim(u.Path, "/"))
	if len(query) > 0 {
		dsn += "?" + query.Encode()
	}
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql options: %w", err)
	}

	mc.User = cfg.User
	mc.Passwd = cfg.Password
	if !query.Has("parseTime") {
		mc.ParseTime = true
	}
	if !query.Has("timeout") {
		mc.Timeout = settings.ConnectionTimeout
	}
	return mc, nil
}
