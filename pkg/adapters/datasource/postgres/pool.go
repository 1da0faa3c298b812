package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

// Pool wraps *pgxpool.Pool to implement datasource.Pool.
type Pool struct {
	pool *pgxpool.Pool
}

// openPool creates the pgx pool. pgxpool connects lazily, so this does not
// fail for an unreachable server; the registry's validation probe does.
func openPool(ctx context.Context, cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (datasource.Pool, error) {
	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, err
	}
	pc, err := poolConfig(connStr, settings)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// NewPool wraps an existing pgx pool. The Pool takes ownership of p.
func NewPool(p *pgxpool.Pool) *Pool {
	return &Pool{pool: p}
}

func (p *Pool) Acquire(ctx context.Context) (datasource.Conn, error) {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &conn{conn: c}, nil
}

func (p *Pool) Stats() datasource.PoolStats {
	s := p.pool.Stat()
	return datasource.PoolStats{
		MaxConns:  s.MaxConns(),
		OpenConns: s.TotalConns(),
		InUse:     s.AcquiredConns(),
		Idle:      s.IdleConns(),
	}
}

func (p *Pool) Close() error {
	p.pool.Close()
	return nil
}

// GetPool returns the underlying *pgxpool.Pool.
func (p *Pool) GetPool() *pgxpool.Pool {
	return p.pool
}

type conn struct {
	conn *pgxpool.Conn
}

func (c *conn) Query(ctx context.Context, query string, args ...any) (datasource.Rows, error) {
	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &resultRows{rows: rows}, nil
}

func (c *conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *conn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *conn) Release() {
	c.conn.Release()
}

type resultRows struct {
	rows pgx.Rows
}

func (r *resultRows) Columns() ([]string, error) {
	fds := r.rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	return cols, nil
}

func (r *resultRows) Next() bool {
	return r.rows.Next()
}

// Values decodes the current row. UUIDs become their string form and pgtype
// values that implement driver.Valuer (numeric, interval, ...) are unwrapped.
func (r *resultRows) Values() ([]any, error) {
	values, err := r.rows.Values()
	if err != nil {
		return nil, err
	}
	fds := r.rows.FieldDescriptions()
	for i, v := range values {
		if v == nil {
			continue
		}
		if i < len(fds) && fds[i].DataTypeOID == pgtype.UUIDOID {
			if b, ok := v.([16]byte); ok {
				values[i] = uuid.UUID(b).String()
				continue
			}
		}
		if valuer, ok := v.(driver.Valuer); ok {
			dv, err := valuer.Value()
			if err != nil {
				return nil, fmt.Errorf("decode column %d: %w", i, err)
			}
			values[i] = dv
		}
	}
	return values, nil
}

func (r *resultRows) Err() error {
	return r.rows.Err()
}

func (r *resultRows) Close() error {
	r.rows.Close()
	return nil
}

var (
	_ datasource.Pool = (*Pool)(nil)
	_ datasource.Conn = (*conn)(nil)
	_ datasource.Rows = (*resultRows)(nil)
)
