// Package duckdb registers the DuckDB driver. It requires cgo.
package duckdb

import (
	"context"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Driver{
		Info: datasource.DriverInfo{
			Dialect:     datasource.DialectDuckDB,
			DriverName:  datasource.DialectDuckDB.DriverName(),
			DisplayName: "DuckDB",
			Description: "Embedded DuckDB database file or in-memory database",
			Module:      "github.com/marcboeker/go-duckdb",
		},
		Catalog: Catalog{},
		Open:    openPool,
	})
}

// openPool opens the database once; every pooled connection shares it,
// including in-memory databases.
func openPool(_ context.Context, cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (datasource.Pool, error) {
	path, err := databasePath(cfg.URL)
	if err != nil {
		return nil, err
	}
	return datasource.OpenSQLPool(datasource.DialectDuckDB.DriverName(), buildDSN(path, cfg.URL.Query()), settings)
}

var _ datasource.Catalog = Catalog{}
