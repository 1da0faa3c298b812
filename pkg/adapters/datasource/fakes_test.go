package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeCatalog returns fixed statements the fake pool recognizes.
type fakeCatalog struct{}

func (fakeCatalog) ProbeQuery() string       { return "SELECT 1" }
func (fakeCatalog) ListSchemasQuery() string { return "LIST SCHEMAS" }
func (fakeCatalog) ListTablesQuery(schema string) (string, []any) {
	return "LIST TABLES", []any{schema}
}
func (fakeCatalog) DescribeTableQuery(schema, table string) (string, []any) {
	return "DESCRIBE", []any{schema, table}
}
func (fakeCatalog) ServerInfoQuery() string            { return "SERVER INFO" }
func (fakeCatalog) QuoteIdentifier(name string) string { return `"` + strings.ReplaceAll(name, `"`, `""`) + `"` }
func (fakeCatalog) CatalogSeparator() string           { return "." }

type fakeResult struct {
	columns []string
	rows    [][]any
	err     error
}

// fakePool is a bounded in-memory Pool. Responses are keyed by statement text.
type fakePool struct {
	sem        chan struct{}
	closed     atomic.Bool
	closeCalls atomic.Int32
	inUse      atomic.Int32

	mu        sync.Mutex
	pingErr   error
	pingPanic bool
	queries   map[string]fakeResult
	execs     map[string]int64
	execErr   map[string]error
	executed  []string
	closeErr  error
}

func newFakePool(max int) *fakePool {
	return &fakePool{
		sem: make(chan struct{}, max),
		queries: map[string]fakeResult{
			"SELECT 1": {columns: []string{"1"}, rows: [][]any{{int64(1)}}},
		},
		execs:   map[string]int64{},
		execErr: map[string]error{},
	}
}

func (p *fakePool) setQuery(query string, res fakeResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries[query] = res
}

func (p *fakePool) setPingErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pingErr = err
}

func (p *fakePool) setPingPanic() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pingPanic = true
}

func (p *fakePool) Acquire(ctx context.Context) (Conn, error) {
	if p.closed.Load() {
		return nil, errors.New("pool closed")
	}
	select {
	case p.sem <- struct{}{}:
		p.inUse.Add(1)
		return &fakeConn{pool: p}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *fakePool) Stats() PoolStats {
	in := p.inUse.Load()
	return PoolStats{MaxConns: int32(cap(p.sem)), OpenConns: in, InUse: in}
}

func (p *fakePool) Close() error {
	p.closeCalls.Add(1)
	p.closed.Store(true)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeErr
}

type fakeConn struct {
	pool     *fakePool
	released atomic.Bool
}

func (c *fakeConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	c.pool.mu.Lock()
	res, ok := c.pool.queries[query]
	c.pool.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	if res.err != nil {
		return nil, res.err
	}
	return &fakeRows{columns: res.columns, rows: res.rows, idx: -1}, nil
}

func (c *fakeConn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	c.pool.mu.Lock()
	defer c.pool.mu.Unlock()
	c.pool.executed = append(c.pool.executed, query)
	if err, ok := c.pool.execErr[query]; ok {
		return 0, err
	}
	return c.pool.execs[query], nil
}

func (c *fakeConn) Ping(ctx context.Context) error {
	c.pool.mu.Lock()
	err, panics := c.pool.pingErr, c.pool.pingPanic
	c.pool.mu.Unlock()
	if panics {
		panic("driver exploded")
	}
	return err
}

func (c *fakeConn) Release() {
	if c.released.CompareAndSwap(false, true) {
		c.pool.inUse.Add(-1)
		<-c.pool.sem
	}
}

type fakeRows struct {
	columns []string
	rows    [][]any
	idx     int
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }
func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}
func (r *fakeRows) Values() ([]any, error) { return r.rows[r.idx], nil }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close() error           { return nil }

// fakeDriver hands out fakePools and remembers every pool it built.
type fakeDriver struct {
	mu      sync.Mutex
	pools   []*fakePool
	opens   atomic.Int32
	openErr error
	// prepare configures each pool before it is returned.
	prepare func(*fakePool)
}

func (d *fakeDriver) driver(dialect Dialect) Driver {
	return Driver{
		Info: DriverInfo{
			Dialect:     dialect,
			DriverName:  dialect.DriverName(),
			DisplayName: dialect.DisplayName(),
			Module:      "example.com/fake",
		},
		Catalog: fakeCatalog{},
		Open: func(ctx context.Context, cfg ConnectionConfig, settings PoolSettings) (Pool, error) {
			d.opens.Add(1)
			if d.openErr != nil {
				return nil, d.openErr
			}
			p := newFakePool(int(settings.MaxPoolSize))
			if d.prepare != nil {
				d.prepare(p)
			}
			d.mu.Lock()
			d.pools = append(d.pools, p)
			d.mu.Unlock()
			return p, nil
		},
	}
}

func (d *fakeDriver) allPools() []*fakePool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*fakePool(nil), d.pools...)
}

func (d *fakeDriver) lastPool() *fakePool {
	pools := d.allPools()
	if len(pools) == 0 {
		return nil
	}
	return pools[len(pools)-1]
}

func testSettings() PoolSettings {
	return PoolSettings{
		MaxPoolSize:       2,
		MinIdle:           0,
		ConnectionTimeout: 200 * time.Millisecond,
		ValidationTimeout: time.Second,
	}
}

// newTestRegistry returns a registry whose every dialect resolves to fake.
func newTestRegistry(t *testing.T, fake *fakeDriver) *ConnectionRegistry {
	t.Helper()
	r := NewConnectionRegistry(RegistryConfig{
		Pool:               testSettings(),
		HealthCheckTimeout: 200 * time.Millisecond,
	}, zaptest.NewLogger(t))
	r.lookup = func(d Dialect) (Driver, bool) { return fake.driver(d), true }
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// createCurrent creates name against the fake driver and switches to it.
func createCurrent(t *testing.T, r *ConnectionRegistry, name string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.CreateConnection(ctx, name, "postgresql", "postgresql://localhost:5432/app", "app", "secret"))
	require.NoError(t, r.SwitchConnection(name))
}
