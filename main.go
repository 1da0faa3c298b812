package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource/mssql"
	_ "github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource/mysql"
	_ "github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource/oracle"
	_ "github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource/postgres"
	_ "github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource/sqlite"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/handlers"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	err = run(cfg, logger)
	_ = logger.Sync()
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// run serves until SIGINT/SIGTERM or a listener failure, then closes every pool.
func run(cfg *config.Config, logger *zap.Logger) error {
	var drivers []string
	for _, info := range datasource.RegisteredDrivers() {
		drivers = append(drivers, string(info.Dialect))
	}
	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("listen_addr", cfg.ListenAddr()),
		zap.Int32("pool_max_size", cfg.Pool.MaxPoolSize),
		zap.Strings("drivers", drivers),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := datasource.NewConnectionRegistry(cfg.RegistryConfig(), logger)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Error("Failed to close connections", zap.String("error", logging.SanitizeError(err)))
		}
	}()

	if cfg.DefaultConnection.Enabled {
		spec := cfg.DefaultConnectionSpec()
		if err := registry.InitDefaultConnection(ctx, spec); err != nil {
			// The server still starts; callers can create a connection over the API.
			logger.Warn("Default connection unavailable",
				zap.String("connection", spec.Name),
				zap.String("url", logging.SanitizeURL(spec.URL)),
				zap.String("error", logging.SanitizeError(err)))
		}
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handlers.NewRouter(cfg, registry, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting ekaya-dbconsole",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	return nil
}
