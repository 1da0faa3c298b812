package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Driver{
		Info: datasource.DriverInfo{
			Dialect:     datasource.DialectSQLite,
			DriverName:  datasource.DialectSQLite.DriverName(),
			DisplayName: "SQLite",
			Description: "Embedded SQLite database file or in-memory database",
			Module:      "modernc.org/sqlite",
		},
		Catalog: Catalog{},
		Open:    openPool,
	})
}

// openPool opens a file or in-memory database. Every connection to :memory:
// gets its own database, so in-memory pools hold exactly one connection that
// is never recycled.
func openPool(_ context.Context, cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (datasource.Pool, error) {
	path, err := databasePath(cfg.URL)
	if err != nil {
		return nil, err
	}

	if isMemory(path) {
		settings.MaxPoolSize = 1
		settings.MinIdle = 1
	} else if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("database directory %s: %w", dir, err)
		}
	}

	pool, err := datasource.OpenSQLPool(datasource.DialectSQLite.DriverName(), buildDSN(path, cfg.URL.Query()), settings)
	if err != nil {
		return nil, err
	}
	if isMemory(path) {
		pool.DB().SetConnMaxIdleTime(0)
		pool.DB().SetConnMaxLifetime(0)
	}
	return pool, nil
}

var _ datasource.Catalog = Catalog{}
