package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/middleware"
)

// NewRouter registers every API route against the registry and wraps the mux
// with request logging.
func NewRouter(cfg *config.Config, registry *datasource.ConnectionRegistry, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	NewHealthHandler(cfg, registry, logger).RegisterRoutes(mux)
	NewConnectionsHandler(registry, logger).RegisterRoutes(mux)
	NewSchemaHandler(datasource.NewSchemaInspector(registry, logger), logger).RegisterRoutes(mux)
	NewSQLHandler(datasource.NewSQLExecutor(registry, logger), logger).RegisterRoutes(mux)

	return middleware.RequestLogger(logger)(mux)
}
