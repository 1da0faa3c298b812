package mysql

import "strings"

// Catalog holds the MySQL metadata queries. MySQL has no schemas below the
// database, so databases are listed as schemas.
type Catalog struct{}

const systemSchemas = `('mysql', 'information_schema', 'performance_schema', 'sys')`

func (Catalog) ProbeQuery() string { return "SELECT 1" }

func (Catalog) ListSchemasQuery() string {
	return `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ` + systemSchemas + `
		ORDER BY schema_name
	`
}

// ListTablesQuery lists base tables; an empty schema matches every user database.
func (Catalog) ListTablesQuery(schema string) (string, []any) {
	return `
		SELECT table_schema, table_name, 'TABLE', NULLIF(table_comment, '')
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ` + systemSchemas + `
		  AND (? = '' OR table_schema = ?)
		ORDER BY table_schema, table_name
	`, []any{schema, schema}
}

// DescribeTableQuery falls back to the connection's database when schema is empty.
func (Catalog) DescribeTableQuery(schema, table string) (string, []any) {
	return `
		SELECT
			column_name,
			data_type,
			COALESCE(character_maximum_length, numeric_precision, datetime_precision, 0),
			COALESCE(numeric_scale, 0),
			is_nullable,
			column_default,
			ordinal_position,
			NULLIF(column_comment, '')
		FROM information_schema.columns
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		  AND table_name = ?
		ORDER BY ordinal_position
	`, []any{schema, table}
}

func (Catalog) ServerInfoQuery() string {
	return "SELECT VERSION(), CURRENT_USER(), @@max_connections"
}

// QuoteIdentifier uses backticks with embedded backticks doubled.
func (Catalog) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (Catalog) CatalogSeparator() string { return "." }
