package datasource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
)

// CurrentConnProvider runs a function against a connection from the current pool.
// *ConnectionRegistry implements it.
type CurrentConnProvider interface {
	WithCurrentConn(ctx context.Context, fn func(*ConnectionHandle, Conn) error) error
}

// SchemaInspector reads schema metadata from the current connection.
// Every call holds one pooled connection for its duration only and performs no writes.
type SchemaInspector struct {
	conns  CurrentConnProvider
	logger *zap.Logger
}

// NewSchemaInspector creates an inspector bound to a registry.
func NewSchemaInspector(conns CurrentConnProvider, logger *zap.Logger) *SchemaInspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaInspector{
		conns:  conns,
		logger: logger.Named("schema"),
	}
}

// ListSchemas returns schema names in driver order. No schemas is not an error.
func (s *SchemaInspector) ListSchemas(ctx context.Context) ([]string, error) {
	schemas := []string{}
	err := s.conns.WithCurrentConn(ctx, func(h *ConnectionHandle, conn Conn) error {
		query := h.Catalog().ListSchemasQuery()
		rows, err := collectRows(ctx, conn, query)
		if err != nil {
			return catalogFailed(query, fmt.Errorf("list schemas on %s: %w", h.Name, err))
		}
		for _, row := range rows {
			schemas = append(schemas, asString(row[0]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schemas, nil
}

// ListTables returns the base tables of schema. An empty schema lists the base
// tables of every non-system schema.
func (s *SchemaInspector) ListTables(ctx context.Context, schema string) ([]TableDescriptor, error) {
	schema = strings.TrimSpace(schema)
	tables := []TableDescriptor{}

	err := s.conns.WithCurrentConn(ctx, func(h *ConnectionHandle, conn Conn) error {
		start := time.Now()
		query, args := h.Catalog().ListTablesQuery(schema)
		rows, err := collectRows(ctx, conn, query, args...)
		if err != nil {
			return catalogFailed(query, fmt.Errorf("list tables in schema %q on %s: %w", schema, h.Name, err))
		}
		for _, row := range rows {
			if len(row) < 4 {
				return fmt.Errorf("list tables in schema %q on %s: catalog returned %d columns, want 4", schema, h.Name, len(row))
			}
			tables = append(tables, TableDescriptor{
				Schema:  asString(row[0]),
				Name:    asString(row[1]),
				Type:    asString(row[2]),
				Remarks: asString(row[3]),
			})
		}
		s.logger.Debug("listed tables",
			zap.String("connection", h.Name),
			zap.String("schema", schema),
			zap.Int("count", len(tables)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// TableCount returns the number of base tables in schema.
func (s *SchemaInspector) TableCount(ctx context.Context, schema string) (int, error) {
	tables, err := s.ListTables(ctx, schema)
	if err != nil {
		return 0, err
	}
	return len(tables), nil
}

// DescribeTable returns the columns of table ordered by ordinal position.
// An empty schema means the connection's current schema. A table with no
// visible columns is reported as *apperrors.NotFoundError.
func (s *SchemaInspector) DescribeTable(ctx context.Context, schema, table string) ([]ColumnDescriptor, error) {
	schema = strings.TrimSpace(schema)
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, apperrors.NewValidationError("table", "table name must not be empty")
	}

	var columns []ColumnDescriptor
	err := s.conns.WithCurrentConn(ctx, func(h *ConnectionHandle, conn Conn) error {
		query, args := h.Catalog().DescribeTableQuery(schema, table)
		rows, err := collectRows(ctx, conn, query, args...)
		if err != nil {
			return catalogFailed(query, fmt.Errorf("describe table %s on %s: %w", qualifiedName(schema, table), h.Name, err))
		}
		for _, row := range rows {
			if len(row) < 8 {
				return fmt.Errorf("describe table %s on %s: catalog returned %d columns, want 8", qualifiedName(schema, table), h.Name, len(row))
			}
			columns = append(columns, ColumnDescriptor{
				Name:          asString(row[0]),
				Type:          asString(row[1]),
				Size:          asInt(row[2]),
				DecimalDigits: asInt(row[3]),
				Nullable:      asBool(row[4]),
				DefaultValue:  asNullableString(row[5]),
				Position:      int(asInt(row[6])),
				Remarks:       asString(row[7]),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, &apperrors.NotFoundError{Kind: "table", Name: qualifiedName(schema, table)}
	}
	sort.SliceStable(columns, func(i, j int) bool { return columns[i].Position < columns[j].Position })
	return columns, nil
}

// TableExists reports whether DescribeTable finds the table. Errors other than
// not-found propagate.
func (s *SchemaInspector) TableExists(ctx context.Context, schema, table string) (bool, error) {
	_, err := s.DescribeTable(ctx, schema, table)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// catalogFailed reports a rejected metadata query as a statement failure,
// keeping the operation and target in the message.
func catalogFailed(query string, err error) error {
	return apperrors.NewSQLExecutionError(query, err)
}

func qualifiedName(schema, table string) string {
	if schema == "" {
		return table
	}
	return schema + "." + table
}

// collectRows runs query and reads every row. The cursor is closed on return.
func collectRows(ctx context.Context, conn Conn, query string, args ...any) ([][]any, error) {
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
