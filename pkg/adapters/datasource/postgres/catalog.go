package postgres

import (
	"github.com/jackc/pgx/v5"
)

// Catalog holds the PostgreSQL metadata queries.
type Catalog struct{}

func (Catalog) ProbeQuery() string { return "SELECT 1" }

func (Catalog) ListSchemasQuery() string {
	return `
		SELECT schema_name::text
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		  AND schema_name NOT LIKE 'pg_temp_%'
		  AND schema_name NOT LIKE 'pg_toast_temp_%'
		ORDER BY schema_name
	`
}

// ListTablesQuery lists base tables; an empty schema matches every user schema.
func (Catalog) ListTablesQuery(schema string) (string, []any) {
	return `
		SELECT
			t.table_schema::text,
			t.table_name::text,
			'TABLE' AS table_type,
			obj_description(c.oid, 'pg_class') AS remarks
		FROM information_schema.tables t
		JOIN pg_namespace n ON n.nspname = t.table_schema
		LEFT JOIN pg_class c ON c.relname = t.table_name AND c.relnamespace = n.oid
		WHERE t.table_type = 'BASE TABLE'
		  AND t.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		  AND ($1::text = '' OR t.table_schema = $1::text)
		ORDER BY t.table_schema, t.table_name
	`, []any{schema}
}

// DescribeTableQuery falls back to current_schema() when schema is empty.
func (Catalog) DescribeTableQuery(schema, table string) (string, []any) {
	return `
		SELECT
			c.column_name::text,
			c.data_type::text,
			COALESCE(c.character_maximum_length, c.numeric_precision, c.datetime_precision, 0)::int AS column_size,
			COALESCE(c.numeric_scale, 0)::int AS decimal_digits,
			c.is_nullable::text,
			c.column_default::text,
			c.ordinal_position::int,
			col_description(pc.oid, c.ordinal_position::int) AS remarks
		FROM information_schema.columns c
		JOIN pg_namespace n ON n.nspname = c.table_schema
		JOIN pg_class pc ON pc.relname = c.table_name AND pc.relnamespace = n.oid
		WHERE c.table_schema = COALESCE(NULLIF($1::text, ''), current_schema())
		  AND c.table_name = $2::text
		ORDER BY c.ordinal_position
	`, []any{schema, table}
}

func (Catalog) ServerInfoQuery() string {
	return `SELECT current_setting('server_version'), current_user::text, current_setting('max_connections')::int`
}

// QuoteIdentifier uses PostgreSQL's standard double-quote quoting.
func (Catalog) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (Catalog) CatalogSeparator() string { return "." }
