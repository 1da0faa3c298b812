package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

// SchemaInspector is the read-only metadata surface used by SchemaHandler.
type SchemaInspector interface {
	ListSchemas(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]datasource.TableDescriptor, error)
	DescribeTable(ctx context.Context, schema, table string) ([]datasource.ColumnDescriptor, error)
	TableExists(ctx context.Context, schema, table string) (bool, error)
}

var _ SchemaInspector = (*datasource.SchemaInspector)(nil)

// TableExistsResponse for GET /api/tables/{table}/exists.
type TableExistsResponse struct {
	Schema string `json:"schema,omitempty"`
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
}

// SchemaHandler exposes metadata of the current connection.
type SchemaHandler struct {
	inspector SchemaInspector
	logger    *zap.Logger
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(inspector SchemaInspector, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{inspector: inspector, logger: logger}
}

// RegisterRoutes registers the schema handler's routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schemas", h.ListSchemas)
	mux.HandleFunc("GET /api/tables", h.ListTables)
	mux.HandleFunc("GET /api/tables/{table}/columns", h.DescribeTable)
	mux.HandleFunc("GET /api/tables/{table}/exists", h.TableExists)
}

// ListSchemas handles GET /api/schemas.
func (h *SchemaHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.inspector.ListSchemas(r.Context())
	if err != nil {
		writeError(w, h.logger, "list schemas", err)
		return
	}
	writeSuccess(w, h.logger, http.StatusOK, schemas)
}

// ListTables handles GET /api/tables?schema=.
func (h *SchemaHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.inspector.ListTables(r.Context(), r.URL.Query().Get("schema"))
	if err != nil {
		writeError(w, h.logger, "list tables", err)
		return
	}
	if tables == nil {
		tables = []datasource.TableDescriptor{}
	}
	writeSuccess(w, h.logger, http.StatusOK, tables)
}

// DescribeTable handles GET /api/tables/{table}/columns?schema=.
func (h *SchemaHandler) DescribeTable(w http.ResponseWriter, r *http.Request) {
	columns, err := h.inspector.DescribeTable(r.Context(), r.URL.Query().Get("schema"), r.PathValue("table"))
	if err != nil {
		writeError(w, h.logger, "describe table", err)
		return
	}
	writeSuccess(w, h.logger, http.StatusOK, columns)
}

// TableExists handles GET /api/tables/{table}/exists?schema=.
func (h *SchemaHandler) TableExists(w http.ResponseWriter, r *http.Request) {
	schema := r.URL.Query().Get("schema")
	table := r.PathValue("table")

	exists, err := h.inspector.TableExists(r.Context(), schema, table)
	if err != nil {
		writeError(w, h.logger, "table exists", err)
		return
	}
	writeSuccess(w, h.logger, http.StatusOK, TableExistsResponse{Schema: schema, Table: table, Exists: exists})
}
