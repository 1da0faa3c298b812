package datasource

import (
	"context"
	"net/url"
)

// Pool is a bounded set of reusable connections to one backend.
// Implementations must be safe for concurrent use.
type Pool interface {
	// Acquire blocks until a connection is available or ctx is done.
	Acquire(ctx context.Context) (Conn, error)

	// Stats reports current pool occupancy.
	Stats() PoolStats

	// Close releases every connection. Connections still held are closed on release.
	Close() error
}

// Conn is a single pooled connection. Release must be called exactly once.
type Conn interface {
	// Query runs a statement that returns rows. The caller must close the Rows.
	Query(ctx context.Context, query string, args ...any) (Rows, error)

	// Exec runs a statement that returns no rows and reports the affected-row count.
	Exec(ctx context.Context, query string, args ...any) (int64, error)

	// Ping checks that the connection is alive.
	Ping(ctx context.Context) error

	// Release returns the connection to its pool.
	Release()
}

// Rows is a forward-only cursor over a result set.
type Rows interface {
	// Columns returns the declared column names in order.
	Columns() ([]string, error)
	Next() bool
	// Values returns the current row, one element per column. SQL NULL is nil.
	Values() ([]any, error)
	Err() error
	Close() error
}

// Catalog supplies the dialect-specific SQL the inspector and registry run.
// Query methods return the statement and its positional arguments.
type Catalog interface {
	// ProbeQuery is the lightweight liveness query, e.g. "SELECT 1".
	ProbeQuery() string

	// ListSchemasQuery returns one column: the schema name.
	ListSchemasQuery() string

	// ListTablesQuery returns (schema, name, type, remarks) for base tables.
	// An empty schema means every non-system schema.
	ListTablesQuery(schema string) (string, []any)

	// DescribeTableQuery returns (name, type, size, decimal_digits, nullable,
	// default, ordinal, remarks) ordered by ordinal. An empty schema means the
	// connection's current schema.
	DescribeTableQuery(schema, table string) (string, []any)

	// ServerInfoQuery returns one row: (version, current_user, max_connections).
	ServerInfoQuery() string

	// QuoteIdentifier quotes a table, column or schema name.
	QuoteIdentifier(name string) string

	// CatalogSeparator separates catalog and object names in qualified references.
	CatalogSeparator() string
}

// ConnectionConfig is what a driver needs to build a pool.
type ConnectionConfig struct {
	Name     string
	URL      *url.URL
	RawURL   string
	User     string
	Password string
}

// PoolStats reports pool occupancy.
type PoolStats struct {
	MaxConns  int32 `json:"max_conns"`
	OpenConns int32 `json:"open_conns"`
	InUse     int32 `json:"in_use"`
	Idle      int32 `json:"idle"`
}
