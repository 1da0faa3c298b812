package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

// HealthResponse reports per-connection health.
// Status is "degraded" when any connection fails its probe.
type HealthResponse struct {
	Status      string          `json:"status"`
	Current     string          `json:"current,omitempty"`
	Connections map[string]bool `json:"connections"`
}

// HealthChecker probes registered connections.
type HealthChecker interface {
	HealthStatus(ctx context.Context) map[string]bool
	CurrentConnectionName() string
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg     *config.Config
	checker HealthChecker
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler with the given configuration.
func NewHealthHandler(cfg *config.Config, checker HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, checker: checker, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// The endpoint always answers 200; unhealthy connections are reported in the body.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.checker.HealthStatus(r.Context())

	response := HealthResponse{
		Status:      "ok",
		Current:     h.checker.CurrentConnectionName(),
		Connections: status,
	}
	for name, healthy := range status {
		if !healthy {
			response.Status = "degraded"
			h.logger.Warn("Connection unhealthy", zap.String("connection", name))
		}
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping requests.
// Returns detailed service information including version and environment.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "ekaya-dbconsole",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
