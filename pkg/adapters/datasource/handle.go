package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/logging"
)

// HandleState is the lifecycle state of a ConnectionHandle.
type HandleState int32

const (
	StateCreated HandleState = iota
	StateValidated
	StateActive
	StateClosed
)

func (s HandleState) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateValidated:
		return "VALIDATED"
	case StateActive:
		return "ACTIVE"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("HandleState(%d)", int32(s))
	}
}

// MarshalText encodes the state by name.
func (s HandleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ConnectionHandle binds a connection name to its pool and lifecycle state.
// Handles are owned by the ConnectionRegistry; callers reach the pool only through WithConn.
type ConnectionHandle struct {
	ID      uuid.UUID
	Name    string
	Dialect Dialect
	// URL is the connection URL with credentials redacted.
	URL string

	driver    Driver
	pool      Pool
	settings  PoolSettings
	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
	logger    *zap.Logger
}

func newConnectionHandle(name string, driver Driver, pool Pool, rawURL string, settings PoolSettings, logger *zap.Logger) *ConnectionHandle {
	h := &ConnectionHandle{
		ID:       uuid.New(),
		Name:     name,
		Dialect:  driver.Info.Dialect,
		URL:      logging.SanitizeURL(rawURL),
		driver:   driver,
		pool:     pool,
		settings: settings,
	}
	h.logger = logger.With(
		zap.String("connection", name),
		zap.String("handle_id", h.ID.String()),
	)
	h.state.Store(int32(StateCreated))
	return h
}

// State returns the current lifecycle state.
func (h *ConnectionHandle) State() HandleState {
	return HandleState(h.state.Load())
}

// Catalog returns the dialect catalog the handle was built with.
func (h *ConnectionHandle) Catalog() Catalog {
	return h.driver.Catalog
}

// DriverInfo returns the registration info of the handle's driver.
func (h *ConnectionHandle) DriverInfo() DriverInfo {
	return h.driver.Info
}

// PoolStats reports the handle's pool occupancy.
func (h *ConnectionHandle) PoolStats() PoolStats {
	return h.pool.Stats()
}

// transition moves the handle from one state to the next. It fails if the
// handle is not in the expected state.
func (h *ConnectionHandle) transition(from, to HandleState) error {
	if !h.state.CompareAndSwap(int32(from), int32(to)) {
		return apperrors.NewConnectionError(h.Name, "transition",
			fmt.Sprintf("cannot move from %s to %s (state is %s)", from, to, h.State()), nil)
	}
	h.logger.Debug("handle state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	return nil
}

// validate acquires one connection, runs the dialect probe under the
// validation timeout and releases it. CREATED becomes VALIDATED on success.
func (h *ConnectionHandle) validate(ctx context.Context) error {
	if err := h.probe(ctx, h.settings.ConnectionTimeout, h.settings.ValidationTimeout); err != nil {
		return apperrors.NewConnectionError(h.Name, "validate", "connectivity check failed", err)
	}
	return h.transition(StateCreated, StateValidated)
}

// probe is the acquire + ping + probe query + release sequence shared by
// creation-time validation and the health monitor.
func (h *ConnectionHandle) probe(ctx context.Context, acquireTimeout, queryTimeout time.Duration) error {
	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	conn, err := h.pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	probeCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := conn.Ping(probeCtx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	rows, err := conn.Query(probeCtx, h.driver.Catalog.ProbeQuery())
	if err != nil {
		return fmt.Errorf("probe query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("probe query: %w", err)
	}
	return nil
}

// WithConn acquires a connection from the handle's pool, runs fn and releases
// the connection on every exit path, including a panic in fn. Acquisition
// waits at most the pool's connection timeout and is never retried.
func (h *ConnectionHandle) WithConn(ctx context.Context, fn func(Conn) error) error {
	if state := h.State(); state != StateActive {
		return apperrors.NewConnectionError(h.Name, "acquire",
			fmt.Sprintf("connection is not active (state is %s)", state), nil)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, h.settings.ConnectionTimeout)
	conn, err := h.pool.Acquire(acquireCtx)
	timedOut := errors.Is(acquireCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	cancel()
	if err != nil {
		if timedOut {
			return apperrors.NewConnectionError(h.Name, "acquire",
				fmt.Sprintf("timed out after %s waiting for a pooled connection", h.settings.ConnectionTimeout), err)
		}
		return apperrors.NewConnectionError(h.Name, "acquire", "failed to acquire pooled connection", err)
	}
	defer conn.Release()

	return fn(conn)
}

// close marks the handle CLOSED and closes its pool. Safe to call more than once.
func (h *ConnectionHandle) close() error {
	h.closeOnce.Do(func() {
		h.state.Store(int32(StateClosed))
		h.closeErr = h.pool.Close()
		if h.closeErr != nil {
			h.logger.Warn("error closing pool",
				zap.String("error", logging.SanitizeError(h.closeErr)),
			)
			return
		}
		h.logger.Debug("pool closed")
	})
	return h.closeErr
}
