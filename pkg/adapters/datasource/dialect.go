package datasource

import (
	"sort"
	"strings"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
)

// Dialect identifies a database product family.
type Dialect string

const (
	DialectPostgres  Dialect = "postgresql"
	DialectMySQL     Dialect = "mysql"
	DialectSQLServer Dialect = "sqlserver"
	DialectOracle    Dialect = "oracle"
	DialectSQLite    Dialect = "sqlite"
	DialectDuckDB    Dialect = "duckdb"
)

type dialectSpec struct {
	driverName  string
	displayName string
}

var dialects = map[Dialect]dialectSpec{
	DialectPostgres:  {driverName: "pgx", displayName: "PostgreSQL"},
	DialectMySQL:     {driverName: "mysql", displayName: "MySQL"},
	DialectSQLServer: {driverName: "sqlserver", displayName: "Microsoft SQL Server"},
	DialectOracle:    {driverName: "oracle", displayName: "Oracle"},
	DialectSQLite:    {driverName: "sqlite", displayName: "SQLite"},
	DialectDuckDB:    {driverName: "duckdb", displayName: "DuckDB"},
}

var dialectAliases = map[string]Dialect{
	"postgres": DialectPostgres,
	"pg":       DialectPostgres,
	"mssql":    DialectSQLServer,
	"mariadb":  DialectMySQL,
	"sqlite3":  DialectSQLite,
}

// ResolveDialect maps a case-insensitive dialect name or alias to a Dialect.
// Unknown input yields an *apperrors.UnsupportedDialectError listing the supported set.
func ResolveDialect(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := dialects[Dialect(key)]; ok {
		return Dialect(key), nil
	}
	if d, ok := dialectAliases[key]; ok {
		return d, nil
	}
	return "", &apperrors.UnsupportedDialectError{Dialect: name, Supported: SupportedDialects()}
}

// SupportedDialects returns the canonical dialect names, sorted.
func SupportedDialects() []string {
	names := make([]string, 0, len(dialects))
	for d := range dialects {
		names = append(names, string(d))
	}
	sort.Strings(names)
	return names
}

// DriverName is the database/sql (or native) driver identifier for the dialect.
func (d Dialect) DriverName() string {
	return dialects[d].driverName
}

// DisplayName is the human-readable product name.
func (d Dialect) DisplayName() string {
	if spec, ok := dialects[d]; ok {
		return spec.displayName
	}
	return string(d)
}

func (d Dialect) String() string {
	return string(d)
}
