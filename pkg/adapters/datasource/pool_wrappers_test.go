package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) (*SQLPool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	pool := NewSQLPool(db, PoolSettings{MaxPoolSize: 3, ConnectionTimeout: time.Second})
	t.Cleanup(func() { _ = pool.Close() })
	return pool, mock
}

func TestSQLPool_Query(t *testing.T) {
	pool, mock := newMockPool(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, note FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "note"}).
			AddRow(int64(1), []byte("ada"), nil).
			AddRow(int64(2), "grace", "admin"))

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	rows, err := conn.Query(ctx, "SELECT id, name, note FROM users")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "note"}, cols)

	var got [][]any
	for rows.Next() {
		values, err := rows.Values()
		require.NoError(t, err)
		got = append(got, values)
	}
	require.NoError(t, rows.Err())

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0][0])
	assert.Equal(t, []byte("ada"), got[0][1])
	assert.Nil(t, got[0][2])
	assert.Equal(t, "admin", got[1][2])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLPool_Exec(t *testing.T) {
	pool, mock := newMockPool(t)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM sessions WHERE expired").
		WillReturnResult(sqlmock.NewResult(0, 4))

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	n, err := conn.Exec(ctx, "DELETE FROM sessions WHERE expired")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLPool_Exec_Error(t *testing.T) {
	pool, mock := newMockPool(t)
	ctx := context.Background()

	backendErr := errors.New("syntax error at or near \"DELET\"")
	mock.ExpectExec("DELET FROM t").WillReturnError(backendErr)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Exec(ctx, "DELET FROM t")
	assert.ErrorIs(t, err, backendErr)
}

func TestSQLPool_Exec_RowsAffectedError(t *testing.T) {
	pool, mock := newMockPool(t)
	ctx := context.Background()

	countErr := errors.New("rows affected unavailable")
	mock.ExpectExec("CREATE TABLE t (id INT)").WillReturnResult(sqlmock.NewErrorResult(countErr))
	mock.ExpectExec("UPDATE t SET id = 2").WillReturnResult(sqlmock.NewErrorResult(countErr))

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	n, err := conn.Exec(ctx, "CREATE TABLE t (id INT)")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = conn.Exec(ctx, "UPDATE t SET id = 2")
	assert.ErrorIs(t, err, countErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDDL(t *testing.T) {
	assert.True(t, isDDL("  create table t (id int)"))
	assert.True(t, isDDL("DROP\tINDEX i"))
	assert.False(t, isDDL("UPDATE t SET a = 1"))
	assert.False(t, isDDL("created"))
	assert.False(t, isDDL(""))
}

func TestSQLPool_Stats(t *testing.T) {
	pool, _ := newMockPool(t)
	ctx := context.Background()

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, int32(3), stats.MaxConns)
	assert.Equal(t, int32(1), stats.InUse)

	conn.Release()
	assert.Equal(t, int32(0), pool.Stats().InUse)
}

func TestSQLPool_WithRegistry(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT 1 AS one").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	mock.ExpectClose()

	r := newTestRegistry(t, &fakeDriver{})
	r.lookup = func(d Dialect) (Driver, bool) {
		return Driver{
			Info:    DriverInfo{Dialect: d, DriverName: d.DriverName()},
			Catalog: fakeCatalog{},
			Open: func(ctx context.Context, cfg ConnectionConfig, settings PoolSettings) (Pool, error) {
				return NewSQLPool(db, settings), nil
			},
		}, true
	}
	createCurrent(t, r, "mock")

	executor := NewSQLExecutor(r, nil)
	result, err := executor.ExecuteQuery(context.Background(), "SELECT 1 AS one")
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, result.Columns)
	assert.Equal(t, int64(1), result.Rows[0]["one"])

	require.NoError(t, r.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
