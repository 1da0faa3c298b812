package datasource

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/logging"
)

// HandleSource supplies the handles a HealthMonitor probes.
type HandleSource interface {
	Handles() []*ConnectionHandle
}

// HealthMonitor probes every registered connection on demand.
type HealthMonitor struct {
	source      HandleSource
	timeout     time.Duration
	parallelism int
	logger      *zap.Logger
}

// NewHealthMonitor creates a monitor. timeout bounds both the acquire and the
// probe query of each connection; parallelism bounds concurrent probes.
func NewHealthMonitor(source HandleSource, timeout time.Duration, parallelism int, logger *zap.Logger) *HealthMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultHealthCheckTimeout
	}
	if parallelism <= 0 {
		parallelism = DefaultHealthCheckParallelism
	}
	return &HealthMonitor{
		source:      source,
		timeout:     timeout,
		parallelism: parallelism,
		logger:      logger.Named("health"),
	}
}

// Check returns name -> healthy for every registered connection.
// It never returns an error; a failing or panicking probe marks only its own
// connection unhealthy.
func (m *HealthMonitor) Check(ctx context.Context) map[string]bool {
	handles := m.source.Handles()
	healthy := make([]bool, len(handles))

	var g errgroup.Group
	g.SetLimit(m.parallelism)
	for i, h := range handles {
		g.Go(func() error {
			healthy[i] = m.probe(ctx, h)
			return nil
		})
	}
	_ = g.Wait()

	status := make(map[string]bool, len(handles))
	for i, h := range handles {
		status[h.Name] = healthy[i]
	}
	return status
}

func (m *HealthMonitor) probe(ctx context.Context, h *ConnectionHandle) (ok bool) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			m.logger.Warn("health probe panicked",
				zap.String("connection", h.Name),
				zap.String("panic", logging.SanitizeConnectionString(fmt.Sprint(rec))),
			)
		}
	}()

	if state := h.State(); state != StateActive {
		m.logger.Warn("connection unhealthy",
			zap.String("connection", h.Name),
			zap.Stringer("state", state),
		)
		return false
	}

	if err := h.probe(ctx, m.timeout, m.timeout); err != nil {
		m.logger.Warn("connection unhealthy",
			zap.String("connection", h.Name),
			zap.String("dialect", h.Dialect.String()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)),
		)
		return false
	}
	return true
}
