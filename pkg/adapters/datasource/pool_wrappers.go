package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLPool wraps *sql.DB to implement Pool for database/sql drivers.
type SQLPool struct {
	db      *sql.DB
	maxOpen int32
}

// OpenSQLPool opens a database/sql pool and applies the pool settings.
// No connection is made until the first Acquire.
func OpenSQLPool(driverName, dsn string, settings PoolSettings) (*SQLPool, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s pool: %w", driverName, err)
	}
	return NewSQLPool(db, settings), nil
}

// NewSQLPool wraps an existing *sql.DB. The pool takes ownership of db.
func NewSQLPool(db *sql.DB, settings PoolSettings) *SQLPool {
	settings = settings.withDefaults()
	db.SetMaxOpenConns(int(settings.MaxPoolSize))
	// database/sql has no minimum; keeping up to MaxPoolSize idle lets MinIdle warm connections survive.
	db.SetMaxIdleConns(int(settings.MaxPoolSize))
	db.SetConnMaxIdleTime(settings.IdleTimeout)
	db.SetConnMaxLifetime(settings.MaxLifetime)
	return &SQLPool{db: db, maxOpen: settings.MaxPoolSize}
}

// Acquire reserves one connection, waiting until ctx is done.
func (p *SQLPool) Acquire(ctx context.Context) (Conn, error) {
	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlConn{conn: c}, nil
}

// Stats returns current occupancy from sql.DBStats.
func (p *SQLPool) Stats() PoolStats {
	s := p.db.Stats()
	return PoolStats{
		MaxConns:  p.maxOpen,
		OpenConns: int32(s.OpenConnections),
		InUse:     int32(s.InUse),
		Idle:      int32(s.Idle),
	}
}

// Close closes all connections in the pool.
func (p *SQLPool) Close() error {
	return p.db.Close()
}

// DB returns the underlying *sql.DB.
func (p *SQLPool) DB() *sql.DB {
	return p.db
}

type sqlConn struct {
	conn *sql.Conn
}

func (c *sqlConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{rows: rows}, nil
}

func (c *sqlConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report a count for DDL.
		if isDDL(query) {
			return 0, nil
		}
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

var ddlKeywords = []string{"CREATE", "ALTER", "DROP", "TRUNCATE", "COMMENT", "RENAME", "GRANT", "REVOKE"}

// isDDL reports whether query starts with a schema-changing keyword.
func isDDL(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	for _, kw := range ddlKeywords {
		if strings.EqualFold(fields[0], kw) {
			return true
		}
	}
	return false
}

func (c *sqlConn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

func (c *sqlConn) Release() {
	_ = c.conn.Close()
}

type sqlRows struct {
	rows *sql.Rows
	cols int
}

func (r *sqlRows) Columns() ([]string, error) {
	cols, err := r.rows.Columns()
	if err != nil {
		return nil, err
	}
	r.cols = len(cols)
	return cols, nil
}

func (r *sqlRows) Next() bool {
	return r.rows.Next()
}

func (r *sqlRows) Values() ([]any, error) {
	if r.cols == 0 {
		if _, err := r.Columns(); err != nil {
			return nil, err
		}
	}
	values := make([]any, r.cols)
	dest := make([]any, r.cols)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.rows.Scan(dest...); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *sqlRows) Err() error {
	return r.rows.Err()
}

func (r *sqlRows) Close() error {
	return r.rows.Close()
}

var (
	_ Pool = (*SQLPool)(nil)
	_ Conn = (*sqlConn)(nil)
	_ Rows = (*sqlRows)(nil)
)
