package oracle

import (
	"fmt"
	"strconv"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
)

// DefaultPort is the listener port used when the URL omits one.
const DefaultPort = 1521

// buildConnectionString converts oracle://host:port/service?opts into a go-ora URL.
// Query parameters (SSL, TIMEOUT, ...) become driver options.
func buildConnectionString(cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (string, error) {
	if cfg.URL == nil {
		return "", fmt.Errorf("connection url is required")
	}
	u := *cfg.URL
	if u.Scheme != "oracle" {
		return "", fmt.Errorf("unsupported url scheme %q (want oracle://)", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url must include a host")
	}
	service := strings.Trim(u.Path, "/")
	if service == "" {
		return "", fmt.Errorf("url must include a service name")
	}
	config.ResolveURLForDocker(&u)

	port := DefaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("invalid port %q", p)
		}
		port = n
	}

	options := make(map[string]string)
	for key, values := range u.Query() {
		if len(values) > 0 {
			options[key] = values[0]
		}
	}
	if _, ok := options["TIMEOUT"]; !ok && settings.ConnectionTimeout > 0 {
		options["TIMEOUT"] = strconv.Itoa(int(settings.ConnectionTimeout.Seconds()))
	}

	return go_ora.BuildUrl(u.Hostname(), port, service, cfg.User, cfg.Password, options), nil
}
