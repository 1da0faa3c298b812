package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/logging"
)

// DefaultConnectionName is current until a caller switches elsewhere.
const DefaultConnectionName = "default"

// RegistryConfig holds configuration for the connection registry.
type RegistryConfig struct {
	Pool PoolSettings
	// DefaultName is the initial current connection name.
	DefaultName            string
	HealthCheckTimeout     time.Duration
	HealthCheckParallelism int
}

// ConnectionSpec describes a connection to create.
type ConnectionSpec struct {
	Name     string `json:"name"`
	Dialect  string `json:"dialect"`
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// ConnectionRegistry owns named connection pools and tracks exactly one
// current connection name. All methods are safe for concurrent use.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	handles  map[string]*ConnectionHandle
	current  atomic.Pointer[string]
	closed   bool
	settings PoolSettings
	monitor  *HealthMonitor
	lookup   func(Dialect) (Driver, bool)
	logger   *zap.Logger
}

// NewConnectionRegistry creates an empty registry whose current name is cfg.DefaultName.
func NewConnectionRegistry(cfg RegistryConfig, logger *zap.Logger) *ConnectionRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.DefaultName) == "" {
		cfg.DefaultName = DefaultConnectionName
	}

	r := &ConnectionRegistry{
		handles:  make(map[string]*ConnectionHandle),
		settings: cfg.Pool.withDefaults(),
		lookup:   GetDriver,
		logger:   logger.Named("registry"),
	}
	name := strings.TrimSpace(cfg.DefaultName)
	r.current.Store(&name)
	r.monitor = NewHealthMonitor(r, cfg.HealthCheckTimeout, cfg.HealthCheckParallelism, logger)
	return r
}

// CreateConnection builds, validates and registers a pooled connection under name.
// An existing connection with the same name is replaced and its pool closed.
// Input is validated and the dialect resolved before any network I/O.
func (r *ConnectionRegistry) CreateConnection(ctx context.Context, name, dialect, rawURL, user, password string) error {
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	user = strings.TrimSpace(user)

	if name == "" {
		return apperrors.NewValidationError("name", "connection name must not be empty")
	}
	if strings.TrimSpace(dialect) == "" {
		return apperrors.NewValidationError("dialect", "dialect must not be empty")
	}
	if rawURL == "" {
		return apperrors.NewValidationError("url", "url must not be empty")
	}
	if user == "" {
		return apperrors.NewValidationError("user", "user must not be empty")
	}
	u, err := parseConnectionURL(rawURL)
	if err != nil {
		return err
	}

	d, err := ResolveDialect(dialect)
	if err != nil {
		return err
	}
	driver, ok := r.lookup(d)
	if !ok {
		return apperrors.NewConnectionError(name, "create",
			fmt.Sprintf("driver for dialect %s is not compiled in", d), nil)
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return apperrors.NewConnectionError(name, "create", "registry is closed", nil)
	}

	start := time.Now()
	pool, err := driver.Open(ctx, ConnectionConfig{
		Name:     name,
		URL:      u,
		RawURL:   rawURL,
		User:     user,
		Password: password,
	}, r.settings)
	if err != nil {
		r.logger.Error("failed to build pool",
			zap.String("connection", name),
			zap.String("dialect", d.String()),
			zap.String("url", logging.SanitizeConnectionString(rawURL)),
			zap.String("error", logging.SanitizeError(err)),
		)
		return apperrors.NewConnectionError(name, "create", "failed to build pool", logging.RedactError(err))
	}

	h := newConnectionHandle(name, driver, pool, rawURL, r.settings, r.logger)
	if err := h.validate(ctx); err != nil {
		_ = h.close()
		r.logger.Error("connection validation failed",
			zap.String("connection", name),
			zap.String("dialect", d.String()),
			zap.String("error", logging.SanitizeError(err)),
		)
		var connErr *apperrors.ConnectionError
		if errors.As(err, &connErr) {
			connErr.Err = logging.RedactError(connErr.Err)
		}
		return err
	}
	if err := h.transition(StateValidated, StateActive); err != nil {
		_ = h.close()
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = h.close()
		return apperrors.NewConnectionError(name, "create", "registry is closed", nil)
	}
	prev := r.handles[name]
	r.handles[name] = h
	r.mu.Unlock()

	// The displaced handle is out of the map, so no new acquisitions can reach it.
	if prev != nil {
		_ = prev.close()
		r.logger.Info("replaced existing connection",
			zap.String("connection", name),
			zap.String("previous_handle_id", prev.ID.String()),
			zap.String("handle_id", h.ID.String()),
		)
	}

	r.logger.Info("created connection",
		zap.String("connection", name),
		zap.String("dialect", d.String()),
		zap.String("url", h.URL),
		zap.String("handle_id", h.ID.String()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Create is CreateConnection taking a ConnectionSpec.
func (r *ConnectionRegistry) Create(ctx context.Context, spec ConnectionSpec) error {
	return r.CreateConnection(ctx, spec.Name, spec.Dialect, spec.URL, spec.User, spec.Password)
}

// InitDefaultConnection creates the startup connection and makes it current.
func (r *ConnectionRegistry) InitDefaultConnection(ctx context.Context, spec ConnectionSpec) error {
	if err := r.Create(ctx, spec); err != nil {
		return fmt.Errorf("create default connection %q: %w", spec.Name, err)
	}
	return r.SwitchConnection(spec.Name)
}

// parseConnectionURL requires a well-formed URL with a scheme.
func parseConnectionURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("url", "malformed url: %s", logging.SanitizeError(err))
	}
	if u.Scheme == "" {
		return nil, apperrors.NewValidationError("url", "url must include a scheme (e.g. postgresql://host/db)")
	}
	if u.Opaque == "" && u.Host == "" && u.Path == "" {
		return nil, apperrors.NewValidationError("url", "url has no host or path")
	}
	return u, nil
}

// SwitchConnection atomically makes name the current connection.
// The current connection is unchanged when name is not registered.
func (r *ConnectionRegistry) SwitchConnection(name string) error {
	name = strings.TrimSpace(name)

	// Read lock excludes a concurrent CloseConnection of the same name.
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.handles[name]; !ok {
		return &apperrors.NotFoundError{Kind: "connection", Name: name}
	}
	prev := r.current.Swap(&name)

	r.logger.Info("switched current connection",
		zap.String("from", *prev),
		zap.String("to", name),
	)
	return nil
}

// CloseConnection removes name and closes its pool. Closing the current
// connection is refused; closing an unknown name is a no-op.
func (r *ConnectionRegistry) CloseConnection(name string) error {
	name = strings.TrimSpace(name)

	r.mu.Lock()
	if name == r.CurrentConnectionName() {
		r.mu.Unlock()
		return apperrors.NewConnectionInUseError(name, "close",
			"cannot close the current connection; switch to another connection first")
	}
	h, ok := r.handles[name]
	if !ok {
		r.mu.Unlock()
		r.logger.Debug("close of unknown connection ignored", zap.String("connection", name))
		return nil
	}
	delete(r.handles, name)
	r.mu.Unlock()

	if err := h.close(); err != nil {
		return apperrors.NewConnectionError(name, "close", "error closing pool", logging.RedactError(err))
	}
	r.logger.Info("closed connection",
		zap.String("connection", name),
		zap.String("handle_id", h.ID.String()),
	)
	return nil
}

// CurrentConnectionName returns the current connection name. The name may not
// (yet) have a registered handle.
func (r *ConnectionRegistry) CurrentConnectionName() string {
	return *r.current.Load()
}

// CurrentHandle returns the ACTIVE handle for the current name.
func (r *ConnectionRegistry) CurrentHandle() (*ConnectionHandle, error) {
	name := r.CurrentConnectionName()

	r.mu.RLock()
	h, ok := r.handles[name]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NewConnectionError(name, "current", "no connection is registered under the current name", nil)
	}
	if state := h.State(); state != StateActive {
		return nil, apperrors.NewConnectionError(name, "current",
			fmt.Sprintf("current connection is not active (state is %s)", state), nil)
	}
	return h, nil
}

// WithCurrentConn runs fn with a connection acquired from the current pool.
// The current connection is resolved once; a concurrent switch does not affect fn.
func (r *ConnectionRegistry) WithCurrentConn(ctx context.Context, fn func(*ConnectionHandle, Conn) error) error {
	h, err := r.CurrentHandle()
	if err != nil {
		return err
	}
	return h.WithConn(ctx, func(c Conn) error {
		return fn(h, c)
	})
}

// ConnectionNames returns the registered names, sorted.
func (r *ConnectionRegistry) ConnectionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handles returns a snapshot of the registered handles sorted by name.
func (r *ConnectionRegistry) Handles() []*ConnectionHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]*ConnectionHandle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].Name < handles[j].Name })
	return handles
}

// HealthStatus probes every registered connection. It never fails.
func (r *ConnectionRegistry) HealthStatus(ctx context.Context) map[string]bool {
	return r.monitor.Check(ctx)
}

// ConnectionStats describes one registered connection.
type ConnectionStats struct {
	Name     string      `json:"name"`
	Dialect  Dialect     `json:"dialect"`
	HandleID string      `json:"handle_id"`
	State    HandleState `json:"state"`
	Current  bool        `json:"current"`
	URL      string      `json:"url"`
	Pool     PoolStats   `json:"pool"`
}

// Stats returns per-connection pool statistics sorted by name.
func (r *ConnectionRegistry) Stats() []ConnectionStats {
	current := r.CurrentConnectionName()
	handles := r.Handles()

	stats := make([]ConnectionStats, 0, len(handles))
	for _, h := range handles {
		stats = append(stats, ConnectionStats{
			Name:     h.Name,
			Dialect:  h.Dialect,
			HandleID: h.ID.String(),
			State:    h.State(),
			Current:  h.Name == current,
			URL:      h.URL,
			Pool:     h.PoolStats(),
		})
	}
	return stats
}

// Close closes every pool. The registry rejects new connections afterwards.
// This method is idempotent and safe to call multiple times.
func (r *ConnectionRegistry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	handles := r.handles
	r.handles = make(map[string]*ConnectionHandle)
	r.mu.Unlock()

	var errs []error
	for name, h := range handles {
		if err := h.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, logging.RedactError(err)))
		}
	}
	r.logger.Info("connection registry closed", zap.Int("connections", len(handles)))
	return errors.Join(errs...)
}
