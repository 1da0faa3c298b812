package mssql

import "strings"

// Catalog holds the SQL Server metadata queries. Parameters use the
// driver's positional @pN form.
type Catalog struct{}

func (Catalog) ProbeQuery() string { return "SELECT 1" }

func (Catalog) ListSchemasQuery() string {
	return `
	SET NOCOUNT ON;
	SELECT s.name
	FROM sys.schemas s
	WHERE s.name NOT IN ('sys', 'INFORMATION_SCHEMA', 'guest')
	  AND s.name NOT LIKE 'db[_]%'
	ORDER BY s.name
	`
}

// ListTablesQuery lists user tables; an empty schema matches every schema.
func (Catalog) ListTablesQuery(schema string) (string, []any) {
	return `
	SET NOCOUNT ON;
	SELECT
	    SCHEMA_NAME(t.schema_id) AS table_schema,
	    t.name AS table_name,
	    'TABLE' AS table_type,
	    CAST(ep.value AS NVARCHAR(4000)) AS remarks
	FROM sys.tables t
	LEFT JOIN sys.extended_properties ep
	    ON ep.class = 1 AND ep.major_id = t.object_id AND ep.minor_id = 0 AND ep.name = 'MS_Description'
	WHERE t.is_ms_shipped = 0
	  AND (@p1 = N'' OR SCHEMA_NAME(t.schema_id) = @p1)
	ORDER BY table_schema, table_name
	`, []any{schema}
}

// DescribeTableQuery resolves an empty schema to the caller's default schema.
// Character lengths of n-types are reported in characters, not bytes.
func (Catalog) DescribeTableQuery(schema, table string) (string, []any) {
	return `
	SET NOCOUNT ON;
	SELECT
	    c.name AS column_name,
	    tp.name AS data_type,
	    CAST(CASE
	        WHEN tp.name IN ('decimal', 'numeric') THEN c.precision
	        WHEN tp.name IN ('nchar', 'nvarchar') AND c.max_length > 0 THEN c.max_length / 2
	        ELSE c.max_length
	    END AS BIGINT) AS column_size,
	    CAST(c.scale AS BIGINT) AS decimal_digits,
	    CASE WHEN c.is_nullable = 1 THEN 'YES' ELSE 'NO' END AS is_nullable,
	    OBJECT_DEFINITION(c.default_object_id) AS column_default,
	    c.column_id AS ordinal_position,
	    CAST(ep.value AS NVARCHAR(4000)) AS remarks
	FROM sys.columns c
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	LEFT JOIN sys.extended_properties ep
	    ON ep.class = 1 AND ep.major_id = c.object_id AND ep.minor_id = c.column_id AND ep.name = 'MS_Description'
	WHERE c.object_id = OBJECT_ID(QUOTENAME(COALESCE(NULLIF(@p1, N''), SCHEMA_NAME())) + N'.' + QUOTENAME(@p2))
	ORDER BY c.column_id
	`, []any{schema, table}
}

func (Catalog) ServerInfoQuery() string {
	return `SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128)), SUSER_SNAME(), @@MAX_CONNECTIONS`
}

// QuoteIdentifier mirrors QUOTENAME: square brackets with ] doubled.
func (Catalog) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (Catalog) CatalogSeparator() string { return "." }
