package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
)

func newTestExecutor(t *testing.T, prepare func(*fakePool)) (*SQLExecutor, *fakeDriver) {
	t.Helper()
	fake := &fakeDriver{prepare: prepare}
	r := newTestRegistry(t, fake)
	createCurrent(t, r, "a")
	return NewSQLExecutor(r, zaptest.NewLogger(t)), fake
}

func TestClassify(t *testing.T) {
	tests := []struct {
		sql      string
		expected StatementKind
	}{
		{"SELECT 1", StatementQuery},
		{"  select * from users", StatementQuery},
		{"\n\tSeLeCt now()", StatementQuery},
		{"INSERT INTO t VALUES (1)", StatementUpdate},
		{"WITH x AS (SELECT 1) SELECT * FROM x", StatementUpdate},
		{"SEL", StatementUpdate},
		{"CREATE TABLE t (id int)", StatementUpdate},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.sql), tt.sql)
	}
}

func TestSQLExecutor_ExecuteQuery(t *testing.T) {
	executor, fake := newTestExecutor(t, func(p *fakePool) {
		p.setQuery("SELECT 1 AS one", fakeResult{
			columns: []string{"one"},
			rows:    [][]any{{int64(1)}},
		})
	})

	result, err := executor.ExecuteQuery(context.Background(), "  SELECT 1 AS one  ")
	require.NoError(t, err)

	assert.Equal(t, []string{"one"}, result.Columns)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(1), result.Rows[0]["one"])
	assert.Equal(t, int32(0), fake.lastPool().inUse.Load())
}

func TestSQLExecutor_ExecuteQuery_NullAndBytes(t *testing.T) {
	executor, _ := newTestExecutor(t, func(p *fakePool) {
		p.setQuery("SELECT name, nickname, avatar FROM users", fakeResult{
			columns: []string{"name", "nickname", "avatar"},
			rows: [][]any{
				{[]byte("ada"), nil, []byte{0xff, 0xfe}},
				{"grace", "", nil},
			},
		})
	})

	result, err := executor.ExecuteQuery(context.Background(), "SELECT name, nickname, avatar FROM users")
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, "ada", result.Rows[0]["name"])
	assert.True(t, IsNull(result.Rows[0]["nickname"]))
	assert.Equal(t, []byte{0xff, 0xfe}, result.Rows[0]["avatar"])

	assert.Equal(t, "", result.Rows[1]["nickname"])
	assert.False(t, IsNull(result.Rows[1]["nickname"]), "empty string must not be NULL")

	encoded, err := json.Marshal(result.Rows[0])
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"nickname":null`)
}

func TestSQLExecutor_ExecuteQuery_NoRowLimit(t *testing.T) {
	rows := make([][]any, 5000)
	for i := range rows {
		rows[i] = []any{int64(i)}
	}
	executor, _ := newTestExecutor(t, func(p *fakePool) {
		p.setQuery("SELECT id FROM big", fakeResult{columns: []string{"id"}, rows: rows})
	})

	result, err := executor.ExecuteQuery(context.Background(), "SELECT id FROM big")
	require.NoError(t, err)
	assert.Equal(t, 5000, result.RowCount())
}

func TestSQLExecutor_ExecuteUpdate(t *testing.T) {
	stmt := "UPDATE users SET active = false WHERE last_login < now() - interval '1 year'"
	executor, _ := newTestExecutor(t, func(p *fakePool) {
		p.execs[stmt] = 7
	})

	n, err := executor.ExecuteUpdate(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestSQLExecutor_Execute(t *testing.T) {
	executor, _ := newTestExecutor(t, func(p *fakePool) {
		p.setQuery("select 2 as two", fakeResult{columns: []string{"two"}, rows: [][]any{{int64(2)}}})
		p.execs["DELETE FROM t"] = 3
	})
	ctx := context.Background()

	res, err := executor.Execute(ctx, "select 2 as two")
	require.NoError(t, err)
	assert.Equal(t, StatementQuery, res.Kind)
	require.NotNil(t, res.Query)
	assert.Equal(t, int64(2), res.Query.Rows[0]["two"])

	res, err = executor.Execute(ctx, "DELETE FROM t")
	require.NoError(t, err)
	assert.Equal(t, StatementUpdate, res.Kind)
	assert.Nil(t, res.Query)
	assert.Equal(t, int64(3), res.RowsAffected)
}

func TestSQLExecutor_Execute_Empty(t *testing.T) {
	executor, fake := newTestExecutor(t, nil)

	for _, sql := range []string{"", "   ", "\n\t"} {
		_, err := executor.Execute(context.Background(), sql)
		require.ErrorIs(t, err, apperrors.ErrValidation)
	}
	assert.Empty(t, fake.lastPool().executed, "validation must fail before any I/O")
}

func TestSQLExecutor_BackendError(t *testing.T) {
	backendErr := errors.New(`relation "nope" does not exist`)
	executor, _ := newTestExecutor(t, func(p *fakePool) {
		p.setQuery("SELECT * FROM nope", fakeResult{err: backendErr})
		p.execErr["DROP TABLE nope"] = backendErr
	})
	ctx := context.Background()

	_, err := executor.ExecuteQuery(ctx, "SELECT * FROM nope")
	var sqlErr *apperrors.SQLExecutionError
	require.ErrorAs(t, err, &sqlErr)
	assert.Equal(t, "SELECT * FROM nope", sqlErr.Statement)
	assert.Equal(t, backendErr.Error(), sqlErr.Message)
	assert.ErrorIs(t, err, backendErr)

	_, err = executor.ExecuteUpdate(ctx, "DROP TABLE nope")
	require.ErrorAs(t, err, &sqlErr)
	assert.Equal(t, "DROP TABLE nope", sqlErr.Statement)
}

func TestSQLExecutor_CreateTable(t *testing.T) {
	executor, fake := newTestExecutor(t, nil)
	def := "'active'"

	err := executor.CreateTable(context.Background(), "app", "accounts", []ColumnDefinition{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "email", Type: "VARCHAR", Size: 255, Nullable: false},
		{Name: "status", Type: "VARCHAR", Size: 16, Nullable: true, DefaultValue: &def},
	})
	require.NoError(t, err)

	executed := fake.lastPool().executed
	require.Len(t, executed, 1)
	assert.Equal(t,
		`CREATE TABLE "app"."accounts" ("id" INTEGER NOT NULL PRIMARY KEY, "email" VARCHAR(255) NOT NULL, "status" VARCHAR(16) DEFAULT 'active')`,
		executed[0])
}

func TestSQLExecutor_CreateTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		columns []ColumnDefinition
	}{
		{"empty table", "", []ColumnDefinition{{Name: "id", Type: "INT"}}},
		{"no columns", "t", nil},
		{"blank column name", "t", []ColumnDefinition{{Name: " ", Type: "INT"}}},
		{"blank column type", "t", []ColumnDefinition{{Name: "id"}}},
		{"negative size", "t", []ColumnDefinition{{Name: "id", Type: "INT", Size: -1}}},
		{"duplicate column", "t", []ColumnDefinition{{Name: "id", Type: "INT"}, {Name: "ID", Type: "TEXT"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, fake := newTestExecutor(t, nil)

			err := executor.CreateTable(context.Background(), "", tt.table, tt.columns)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Empty(t, fake.lastPool().executed)
		})
	}
}
