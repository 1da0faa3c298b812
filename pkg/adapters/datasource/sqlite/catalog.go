package sqlite

import "strings"

// Catalog holds the SQLite metadata queries, built on the table-valued
// pragma functions. Attached databases are reported as schemas.
type Catalog struct{}

func (Catalog) ProbeQuery() string { return "SELECT 1" }

func (Catalog) ListSchemasQuery() string {
	return `SELECT name FROM pragma_database_list ORDER BY seq`
}

func (Catalog) ListTablesQuery(schema string) (string, []any) {
	return `
		SELECT schema, name, 'TABLE', NULL
		FROM pragma_table_list
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		  AND (? = '' OR schema = ?)
		ORDER BY schema, name
	`, []any{schema, schema}
}

// DescribeTableQuery splits declared types such as VARCHAR(40) or
// DECIMAL(10,2) into type name, size and decimal digits. Columns are read
// through pragma_table_list so an unknown schema yields no rows instead of
// an "unknown database" error.
func (Catalog) DescribeTableQuery(schema, table string) (string, []any) {
	return `
		SELECT
			c.name,
			CASE WHEN instr(c.type, '(') > 0 THEN trim(substr(c.type, 1, instr(c.type, '(') - 1)) ELSE c.type END,
			CASE WHEN instr(c.type, '(') > 0 THEN CAST(substr(c.type, instr(c.type, '(') + 1) AS INTEGER) ELSE 0 END,
			CASE WHEN instr(c.type, ',') > 0 THEN CAST(trim(substr(c.type, instr(c.type, ',') + 1)) AS INTEGER) ELSE 0 END,
			CASE WHEN c."notnull" = 0 AND c.pk = 0 THEN 'YES' ELSE 'NO' END,
			c.dflt_value,
			c.cid + 1,
			NULL
		FROM pragma_table_list AS t
		JOIN pragma_table_info(t.name, t.schema) AS c
		WHERE t.name = ?
		  AND t.schema = COALESCE(NULLIF(?, ''), 'main')
		ORDER BY c.cid
	`, []any{table, schema}
}

// ServerInfoQuery reports no user, as SQLite has no authentication, and one
// connection, the writer limit.
func (Catalog) ServerInfoQuery() string {
	return `SELECT sqlite_version(), '', 1`
}

func (Catalog) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Catalog) CatalogSeparator() string { return "." }
