package handlers

import (
	"context"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

// mockRegistry records calls and returns canned results.
type mockRegistry struct {
	current  string
	names    []string
	stats    []datasource.ConnectionStats
	health   map[string]bool
	info     *datasource.DatabaseInfo
	err      error
	created  []datasource.ConnectionSpec
	switched []string
	closed   []string
}

func (m *mockRegistry) CreateConnection(_ context.Context, name, dialect, rawURL, user, password string) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, datasource.ConnectionSpec{Name: name, Dialect: dialect, URL: rawURL, User: user, Password: password})
	return nil
}

func (m *mockRegistry) SwitchConnection(name string) error {
	if m.err != nil {
		return m.err
	}
	m.switched = append(m.switched, name)
	m.current = name
	return nil
}

func (m *mockRegistry) CloseConnection(name string) error {
	if m.err != nil {
		return m.err
	}
	m.closed = append(m.closed, name)
	return nil
}

func (m *mockRegistry) CurrentConnectionName() string                { return m.current }
func (m *mockRegistry) ConnectionNames() []string                    { return m.names }
func (m *mockRegistry) Stats() []datasource.ConnectionStats          { return m.stats }
func (m *mockRegistry) HealthStatus(context.Context) map[string]bool { return m.health }

func (m *mockRegistry) DatabaseInfo(context.Context) (*datasource.DatabaseInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

type mockInspector struct {
	schemas []string
	tables  []datasource.TableDescriptor
	columns []datasource.ColumnDescriptor
	exists  bool
	err     error

	lastSchema string
	lastTable  string
}

func (m *mockInspector) ListSchemas(context.Context) ([]string, error) {
	return m.schemas, m.err
}

func (m *mockInspector) ListTables(_ context.Context, schema string) ([]datasource.TableDescriptor, error) {
	m.lastSchema = schema
	return m.tables, m.err
}

func (m *mockInspector) DescribeTable(_ context.Context, schema, table string) ([]datasource.ColumnDescriptor, error) {
	m.lastSchema, m.lastTable = schema, table
	return m.columns, m.err
}

func (m *mockInspector) TableExists(_ context.Context, schema, table string) (bool, error) {
	m.lastSchema, m.lastTable = schema, table
	return m.exists, m.err
}

type mockExecutor struct {
	result *datasource.ExecutionResult
	err    error

	lastSQL     string
	lastTable   string
	lastColumns []datasource.ColumnDefinition
}

func (m *mockExecutor) Execute(_ context.Context, sql string) (*datasource.ExecutionResult, error) {
	m.lastSQL = sql
	return m.result, m.err
}

func (m *mockExecutor) CreateTable(_ context.Context, _, table string, columns []datasource.ColumnDefinition) error {
	m.lastTable = table
	m.lastColumns = columns
	return m.err
}
