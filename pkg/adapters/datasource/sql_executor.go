package datasource

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/logging"
)

// SQLExecutor runs caller-supplied SQL against the current connection.
// There is no implicit row limit; truncating output is the caller's concern.
type SQLExecutor struct {
	conns  CurrentConnProvider
	logger *zap.Logger
}

// NewSQLExecutor creates an executor bound to a registry.
func NewSQLExecutor(conns CurrentConnProvider, logger *zap.Logger) *SQLExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLExecutor{
		conns:  conns,
		logger: logger.Named("sql"),
	}
}

// Classify reports whether sql takes the query path (trimmed text starts with
// SELECT, case-insensitive) or the update path.
func Classify(sql string) StatementKind {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) >= 6 && strings.EqualFold(trimmed[:6], "SELECT") {
		return StatementQuery
	}
	return StatementUpdate
}

// Execute classifies sql and runs it as a query or an update.
func (e *SQLExecutor) Execute(ctx context.Context, sql string) (*ExecutionResult, error) {
	trimmed, err := requireStatement(sql)
	if err != nil {
		return nil, err
	}

	if Classify(trimmed) == StatementQuery {
		result, err := e.ExecuteQuery(ctx, trimmed)
		if err != nil {
			return nil, err
		}
		return &ExecutionResult{Kind: StatementQuery, Query: result}, nil
	}

	n, err := e.ExecuteUpdate(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	return &ExecutionResult{Kind: StatementUpdate, RowsAffected: n}, nil
}

// ExecuteQuery runs sql and returns the complete result set. Column names keep
// their declared order; SQL NULL is represented by Null.
func (e *SQLExecutor) ExecuteQuery(ctx context.Context, sql string) (*QueryResult, error) {
	trimmed, err := requireStatement(sql)
	if err != nil {
		return nil, err
	}

	var result *QueryResult
	err = e.conns.WithCurrentConn(ctx, func(h *ConnectionHandle, conn Conn) error {
		start := time.Now()
		rows, err := conn.Query(ctx, trimmed)
		if err != nil {
			return e.failed(h, trimmed, err)
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			return e.failed(h, trimmed, err)
		}

		result = &QueryResult{Columns: columns, Rows: []Row{}}
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return e.failed(h, trimmed, err)
			}
			row := make(Row, len(columns))
			for i, col := range columns {
				if i < len(values) {
					row[col] = normalizeValue(values[i])
				}
			}
			result.Rows = append(result.Rows, row)
		}
		if err := rows.Err(); err != nil {
			return e.failed(h, trimmed, err)
		}

		e.logger.Debug("query executed",
			zap.String("connection", h.Name),
			zap.String("sql", logging.SanitizeQuery(trimmed)),
			zap.Int("rows", len(result.Rows)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteUpdate runs a statement that returns no result set and reports the
// affected-row count.
func (e *SQLExecutor) ExecuteUpdate(ctx context.Context, sql string) (int64, error) {
	trimmed, err := requireStatement(sql)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = e.conns.WithCurrentConn(ctx, func(h *ConnectionHandle, conn Conn) error {
		start := time.Now()
		n, err := conn.Exec(ctx, trimmed)
		if err != nil {
			return e.failed(h, trimmed, err)
		}
		affected = n

		e.logger.Info("statement executed",
			zap.String("connection", h.Name),
			zap.String("sql", logging.SanitizeQuery(trimmed)),
			zap.Int64("rows_affected", n),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// CreateTable validates the column definitions, builds a CREATE TABLE
// statement with dialect-quoted identifiers and runs it as an update.
func (e *SQLExecutor) CreateTable(ctx context.Context, schema, table string, columns []ColumnDefinition) error {
	schema = strings.TrimSpace(schema)
	table = strings.TrimSpace(table)
	if table == "" {
		return apperrors.NewValidationError("table", "table name must not be empty")
	}
	if err := validateColumnDefinitions(columns); err != nil {
		return err
	}

	// Quoting depends on the dialect, so resolve the current connection first.
	var stmt string
	err := e.conns.WithCurrentConn(ctx, func(h *ConnectionHandle, conn Conn) error {
		stmt = buildCreateTable(h.Catalog(), schema, table, columns)
		_, err := conn.Exec(ctx, stmt)
		if err != nil {
			return e.failed(h, stmt, err)
		}
		e.logger.Info("table created",
			zap.String("connection", h.Name),
			zap.String("table", qualifiedName(schema, table)),
			zap.Int("columns", len(columns)),
		)
		return nil
	})
	return err
}

func validateColumnDefinitions(columns []ColumnDefinition) error {
	if len(columns) == 0 {
		return apperrors.NewValidationError("columns", "at least one column must be specified")
	}
	seen := make(map[string]bool, len(columns))
	for i, col := range columns {
		name := strings.TrimSpace(col.Name)
		if name == "" {
			return apperrors.NewValidationError("columns", "column %d: name must not be empty", i+1)
		}
		if strings.TrimSpace(col.Type) == "" {
			return apperrors.NewValidationError("columns", "column %q: type must not be empty", name)
		}
		if col.Size < 0 {
			return apperrors.NewValidationError("columns", "column %q: size must not be negative", name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return apperrors.NewValidationError("columns", "duplicate column name %q", name)
		}
		seen[key] = true
	}
	return nil
}

func buildCreateTable(catalog Catalog, schema, table string, columns []ColumnDefinition) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if schema != "" {
		b.WriteString(catalog.QuoteIdentifier(schema))
		b.WriteString(".")
	}
	b.WriteString(catalog.QuoteIdentifier(table))
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(catalog.QuoteIdentifier(strings.TrimSpace(col.Name)))
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(col.Type))
		if col.Size > 0 {
			b.WriteString("(")
			b.WriteString(strconv.Itoa(col.Size))
			b.WriteString(")")
		}
		if !col.Nullable {
			b.WriteString(" NOT NULL")
		}
		if col.DefaultValue != nil {
			b.WriteString(" DEFAULT ")
			b.WriteString(*col.DefaultValue)
		}
		if col.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
	}
	b.WriteString(")")
	return b.String()
}

func requireStatement(sql string) (string, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return "", apperrors.NewValidationError("sql", "SQL must not be empty")
	}
	return trimmed, nil
}

func (e *SQLExecutor) failed(h *ConnectionHandle, stmt string, err error) error {
	e.logger.Error("SQL execution failed",
		zap.String("connection", h.Name),
		zap.String("sql", logging.SanitizeQuery(stmt)),
		zap.String("error", logging.SanitizeError(err)),
	)
	return apperrors.NewSQLExecutionError(stmt, err)
}
