package duckdb

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// databasePath extracts the database file from duckdb::memory:, duckdb:relative.db
// or duckdb:///abs/path.db. An empty path or :memory: opens an in-memory database.
func databasePath(u *url.URL) (string, error) {
	if u == nil {
		return "", fmt.Errorf("connection url is required")
	}
	if u.Scheme != "duckdb" {
		return "", fmt.Errorf("unsupported url scheme %q (want duckdb:)", u.Scheme)
	}

	var path string
	switch {
	case u.Opaque != "":
		path = u.Opaque
	case u.Host != "":
		path = u.Host + u.Path
	default:
		path = u.Path
	}
	if path == "" || path == ":memory:" {
		return "", nil
	}
	return filepath.Clean(path), nil
}

// buildDSN passes URL query parameters (access_mode, threads, ...) through as
// DuckDB configuration options.
func buildDSN(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
