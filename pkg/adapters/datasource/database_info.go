package datasource

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
)

// DatabaseInfo reads a snapshot of the current connection's server and driver.
func (r *ConnectionRegistry) DatabaseInfo(ctx context.Context) (*DatabaseInfo, error) {
	var info *DatabaseInfo
	err := r.WithCurrentConn(ctx, func(h *ConnectionHandle, conn Conn) error {
		catalog := h.Catalog()
		rows, err := conn.Query(ctx, catalog.ServerInfoQuery())
		if err != nil {
			return apperrors.NewConnectionError(h.Name, "info", "server info query failed", err)
		}
		defer rows.Close()

		info = &DatabaseInfo{
			ConnectionName:       h.Name,
			ProductName:          h.Dialect.DisplayName(),
			DriverName:           h.DriverInfo().DriverName,
			DriverVersion:        moduleVersion(h.DriverInfo().Module),
			URL:                  h.URL,
			CatalogSeparator:     catalog.CatalogSeparator(),
			SupportsTransactions: true,
		}
		if rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return apperrors.NewConnectionError(h.Name, "info", "reading server info", err)
			}
			if len(values) < 3 {
				return apperrors.NewConnectionError(h.Name, "info",
					fmt.Sprintf("server info query returned %d columns, want 3", len(values)), nil)
			}
			info.ProductVersion = asString(values[0])
			info.UserName = asString(values[1])
			info.MaxConnections = asInt(values[2])
		}
		if err := rows.Err(); err != nil {
			return apperrors.NewConnectionError(h.Name, "info", "reading server info", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

var (
	buildDepsOnce sync.Once
	buildDeps     map[string]string
)

// moduleVersion reports the version of a Go module linked into the binary,
// or "unknown" when build info is unavailable (e.g. under go test).
func moduleVersion(module string) string {
	buildDepsOnce.Do(func() {
		buildDeps = make(map[string]string)
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, dep := range bi.Deps {
			if dep.Replace != nil {
				buildDeps[dep.Path] = dep.Replace.Version
				continue
			}
			buildDeps[dep.Path] = dep.Version
		}
	})
	if v, ok := buildDeps[module]; ok && v != "" {
		return v
	}
	return "unknown"
}
