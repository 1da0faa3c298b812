package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const memoryPath = ":memory:"

// defaultPragmas apply to file databases. busy_timeout lets pooled writers
// wait on each other instead of failing with SQLITE_BUSY.
var defaultPragmas = []string{"busy_timeout(5000)", "foreign_keys(1)", "journal_mode(WAL)"}

// databasePath extracts the database file from a sqlite URL. Accepted forms:
//
//	sqlite::memory:
//	sqlite:relative/app.db
//	sqlite:///abs/path/app.db
//	sqlite://relative/app.db
func databasePath(u *url.URL) (string, error) {
	if u == nil {
		return "", fmt.Errorf("connection url is required")
	}
	switch u.Scheme {
	case "sqlite", "sqlite3", "file":
	default:
		return "", fmt.Errorf("unsupported url scheme %q (want sqlite:)", u.Scheme)
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
	if path == "" {
		return "", fmt.Errorf("url must name a database file or %s", memoryPath)
	}
	if path == memoryPath {
		return path, nil
	}
	return filepath.Clean(path), nil
}

func isMemory(path string) bool {
	return path == memoryPath
}

// buildDSN appends the default pragmas to a file path. URL query parameters
// are passed through, so callers may add their own _pragma values.
func buildDSN(path string, query url.Values) string {
	if isMemory(path) {
		return path
	}
	q := url.Values{}
	for key, values := range query {
		q[key] = append([]string(nil), values...)
	}
	have := make(map[string]bool)
	for _, p := range q["_pragma"] {
		if i := strings.IndexByte(p, '('); i > 0 {
			have[p[:i]] = true
		}
	}
	for _, p := range defaultPragmas {
		name := p[:strings.IndexByte(p, '(')]
		if !have[name] {
			q.Add("_pragma", p)
		}
	}
	return path + "?" + q.Encode()
}
