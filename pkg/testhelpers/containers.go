package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:16-alpine"
	PostgresUser     = "dbconsole"
	PostgresPassword = "test_password"
	PostgresDB       = "test_data"
)

// fixtureSQL seeds the schema used by integration tests.
const fixtureSQL = `
CREATE SCHEMA IF NOT EXISTS sales;

CREATE TABLE IF NOT EXISTS public.users (
	id         SERIAL PRIMARY KEY,
	email      VARCHAR(255) NOT NULL,
	nickname   TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
COMMENT ON TABLE public.users IS 'registered users';
COMMENT ON COLUMN public.users.email IS 'login address';

CREATE TABLE IF NOT EXISTS sales.orders (
	id      BIGSERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL,
	total   NUMERIC(10, 2) NOT NULL DEFAULT 0
);

CREATE OR REPLACE VIEW public.active_users AS SELECT id, email FROM public.users;
`

// TestDB holds a shared test database container and connection pool.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
	// URL is ConnStr without credentials, as callers pass user and password separately.
	URL string
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if _, err := pool.Exec(ctx, fixtureSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	return &TestDB{
		Container: ctr,
		Pool:      pool,
		ConnStr:   connStr,
		URL:       fmt.Sprintf("postgresql://%s:%s/%s?sslmode=disable", host, port.Port(), PostgresDB),
	}, nil
}
