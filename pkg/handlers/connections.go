package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

// ConnectionRegistry is the subset of *datasource.ConnectionRegistry the HTTP layer uses.
type ConnectionRegistry interface {
	CreateConnection(ctx context.Context, name, dialect, rawURL, user, password string) error
	SwitchConnection(name string) error
	CloseConnection(name string) error
	CurrentConnectionName() string
	ConnectionNames() []string
	Stats() []datasource.ConnectionStats
	HealthStatus(ctx context.Context) map[string]bool
	DatabaseInfo(ctx context.Context) (*datasource.DatabaseInfo, error)
}

var _ ConnectionRegistry = (*datasource.ConnectionRegistry)(nil)

// ListConnectionsResponse describes every registered connection.
type ListConnectionsResponse struct {
	Current     string                       `json:"current"`
	Connections []datasource.ConnectionStats `json:"connections"`
}

// SwitchConnectionRequest for PUT /api/connections/current.
type SwitchConnectionRequest struct {
	Name string `json:"name"`
}

// DialectResponse describes one supported dialect.
type DialectResponse struct {
	Dialect     string `json:"dialect"`
	DisplayName string `json:"display_name"`
	DriverName  string `json:"driver_name"`
	Description string `json:"description,omitempty"`
	Available   bool   `json:"available"`
}

// ConnectionsHandler manages the connection registry over HTTP.
type ConnectionsHandler struct {
	registry ConnectionRegistry
	logger   *zap.Logger
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(registry ConnectionRegistry, logger *zap.Logger) *ConnectionsHandler {
	return &ConnectionsHandler{registry: registry, logger: logger}
}

// RegisterRoutes registers the connections handler's routes on the given mux.
func (h *ConnectionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dialects", h.Dialects)
	mux.HandleFunc("GET /api/connections", h.List)
	mux.HandleFunc("POST /api/connections", h.Create)
	mux.HandleFunc("PUT /api/connections/current", h.Switch)
	mux.HandleFunc("DELETE /api/connections/{name}", h.Close)
	mux.HandleFunc("GET /api/info", h.Info)
}

// Dialects handles GET /api/dialects.
// Every supported dialect is listed; Available reports whether its driver is compiled in.
func (h *ConnectionsHandler) Dialects(w http.ResponseWriter, r *http.Request) {
	registered := make(map[datasource.Dialect]datasource.DriverInfo)
	for _, info := range datasource.RegisteredDrivers() {
		registered[info.Dialect] = info
	}

	supported := datasource.SupportedDialects()
	data := make([]DialectResponse, 0, len(supported))
	for _, name := range supported {
		d := datasource.Dialect(name)
		info, ok := registered[d]
		data = append(data, DialectResponse{
			Dialect:     name,
			DisplayName: d.DisplayName(),
			DriverName:  d.DriverName(),
			Description: info.Description,
			Available:   ok,
		})
	}
	writeSuccess(w, h.logger, http.StatusOK, data)
}

// List handles GET /api/connections.
func (h *ConnectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.logger, http.StatusOK, ListConnectionsResponse{
		Current:     h.registry.CurrentConnectionName(),
		Connections: h.registry.Stats(),
	})
}

// Create handles POST /api/connections.
// An existing connection with the same name is replaced.
func (h *ConnectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req datasource.ConnectionSpec
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	if err := h.registry.CreateConnection(r.Context(), req.Name, req.Dialect, req.URL, req.User, req.Password); err != nil {
		writeError(w, h.logger, "create connection", err)
		return
	}

	h.logger.Info("Connection created via API",
		zap.String("connection", strings.TrimSpace(req.Name)),
		zap.String("dialect", req.Dialect))
	writeSuccess(w, h.logger, http.StatusCreated, map[string]string{"name": strings.TrimSpace(req.Name)})
}

// Switch handles PUT /api/connections/current.
func (h *ConnectionsHandler) Switch(w http.ResponseWriter, r *http.Request) {
	var req SwitchConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	if err := h.registry.SwitchConnection(req.Name); err != nil {
		writeError(w, h.logger, "switch connection", err)
		return
	}
	writeSuccess(w, h.logger, http.StatusOK, map[string]string{"current": h.registry.CurrentConnectionName()})
}

// Close handles DELETE /api/connections/{name}.
// Closing an unknown name succeeds; closing the current connection is refused.
func (h *ConnectionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.registry.CloseConnection(name); err != nil {
		writeError(w, h.logger, "close connection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Info handles GET /api/info.
func (h *ConnectionsHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.registry.DatabaseInfo(r.Context())
	if err != nil {
		writeError(w, h.logger, "database info", err)
		return
	}
	writeSuccess(w, h.logger, http.StatusOK, info)
}
