package duckdb

import "strings"

// Catalog holds the DuckDB metadata queries. Only the database the
// connection opened is inspected; attached databases are ignored.
type Catalog struct{}

func (Catalog) ProbeQuery() string { return "SELECT 1" }

func (Catalog) ListSchemasQuery() string {
	return `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE catalog_name = current_database()
		  AND schema_name NOT IN ('information_schema', 'pg_catalog')
		ORDER BY schema_name
	`
}

func (Catalog) ListTablesQuery(schema string) (string, []any) {
	return `
		SELECT schema_name, table_name, 'TABLE', comment
		FROM duckdb_tables()
		WHERE database_name = current_database()
		  AND NOT internal
		  AND (? = '' OR schema_name = ?)
		ORDER BY schema_name, table_name
	`, []any{schema, schema}
}

func (Catalog) DescribeTableQuery(schema, table string) (string, []any) {
	return `
		SELECT
			column_name,
			data_type,
			COALESCE(character_maximum_length, numeric_precision, 0),
			COALESCE(numeric_scale, 0),
			is_nullable,
			column_default,
			ordinal_position,
			NULL
		FROM information_schema.columns
		WHERE table_catalog = current_database()
		  AND table_schema = COALESCE(NULLIF(?, ''), current_schema())
		  AND table_name = ?
		ORDER BY ordinal_position
	`, []any{schema, table}
}

// ServerInfoQuery reports no user and no connection limit; DuckDB is embedded.
func (Catalog) ServerInfoQuery() string {
	return `SELECT version(), '', 0`
}

func (Catalog) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Catalog) CatalogSeparator() string { return "." }
