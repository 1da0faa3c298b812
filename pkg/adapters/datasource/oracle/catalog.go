package oracle

import "strings"

// Catalog holds the Oracle metadata queries. Schemas are users; Oracle
// treats the empty string as NULL, which the optional-schema filters rely on.
type Catalog struct{}

func (Catalog) ProbeQuery() string { return "SELECT 1 FROM dual" }

func (Catalog) ListSchemasQuery() string {
	return `
		SELECT username
		FROM all_users
		WHERE oracle_maintained = 'N'
		ORDER BY username
	`
}

func (Catalog) ListTablesQuery(schema string) (string, []any) {
	return `
		SELECT t.owner, t.table_name, 'TABLE', tc.comments
		FROM all_tables t
		JOIN all_users u ON u.username = t.owner AND u.oracle_maintained = 'N'
		LEFT JOIN all_tab_comments tc ON tc.owner = t.owner AND tc.table_name = t.table_name
		WHERE (:1 IS NULL OR t.owner = :2)
		ORDER BY t.owner, t.table_name
	`, []any{schema, schema}
}

// DescribeTableQuery falls back to the session's current schema when schema is empty.
func (Catalog) DescribeTableQuery(schema, table string) (string, []any) {
	return `
		SELECT
			c.column_name,
			c.data_type,
			COALESCE(c.data_precision, NULLIF(c.char_length, 0), c.data_length),
			COALESCE(c.data_scale, 0),
			CASE c.nullable WHEN 'Y' THEN 'YES' ELSE 'NO' END,
			c.data_default,
			c.column_id,
			cc.comments
		FROM all_tab_columns c
		LEFT JOIN all_col_comments cc
			ON cc.owner = c.owner AND cc.table_name = c.table_name AND cc.column_name = c.column_name
		WHERE c.owner = COALESCE(:1, SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA'))
		  AND c.table_name = :2
		ORDER BY c.column_id
	`, []any{schema, table}
}

// ServerInfoQuery reports 0 max connections; v$parameter needs privileges most users lack.
func (Catalog) ServerInfoQuery() string {
	return `SELECT (SELECT version FROM product_component_version WHERE ROWNUM = 1), USER, 0 FROM dual`
}

func (Catalog) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Catalog) CatalogSeparator() string { return "@" }
