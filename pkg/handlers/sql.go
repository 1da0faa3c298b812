package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

// SQLExecutor runs statements against the current connection.
type SQLExecutor interface {
	Execute(ctx context.Context, sql string) (*datasource.ExecutionResult, error)
	CreateTable(ctx context.Context, schema, table string, columns []datasource.ColumnDefinition) error
}

var _ SQLExecutor = (*datasource.SQLExecutor)(nil)

// ExecuteRequest for POST /api/sql.
type ExecuteRequest struct {
	SQL string `json:"sql"`
}

// CreateTableRequest for POST /api/tables.
type CreateTableRequest struct {
	Schema  string                        `json:"schema"`
	Table   string                        `json:"table"`
	Columns []datasource.ColumnDefinition `json:"columns"`
}

// SQLHandler executes ad-hoc SQL and DDL.
type SQLHandler struct {
	executor SQLExecutor
	logger   *zap.Logger
}

// NewSQLHandler creates a new SQL handler.
func NewSQLHandler(executor SQLExecutor, logger *zap.Logger) *SQLHandler {
	return &SQLHandler{executor: executor, logger: logger}
}

// RegisterRoutes registers the SQL handler's routes on the given mux.
func (h *SQLHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sql", h.Execute)
	mux.HandleFunc("POST /api/tables", h.CreateTable)
}

// Execute handles POST /api/sql.
// SELECT statements return their full result set; anything else returns the affected-row count.
func (h *SQLHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.executor.Execute(r.Context(), req.SQL)
	if err != nil {
		writeError(w, h.logger, "execute", err)
		return
	}
	writeSuccess(w, h.logger, http.StatusOK, result)
}

// CreateTable handles POST /api/tables.
func (h *SQLHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, h.logger, "invalid_request", "Invalid request body")
		return
	}

	if err := h.executor.CreateTable(r.Context(), req.Schema, req.Table, req.Columns); err != nil {
		writeError(w, h.logger, "create table", err)
		return
	}
	writeSuccess(w, h.logger, http.StatusCreated, map[string]string{"schema": req.Schema, "table": req.Table})
}
