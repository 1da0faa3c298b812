package datasource

// NullValue is the type of Null.
type NullValue struct{}

// Null marks an SQL NULL in a QueryResult row. It is distinct from "" and
// encodes as JSON null.
var Null = NullValue{}

func (NullValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (NullValue) String() string { return "NULL" }

// IsNull reports whether v is the Null sentinel.
func IsNull(v any) bool {
	_, ok := v.(NullValue)
	return ok
}

// Row maps column name to value. When a result declares the same column name
// twice, the rightmost value wins.
type Row map[string]any

// QueryResult is a complete, untruncated result set.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// RowCount returns the number of rows.
func (r *QueryResult) RowCount() int {
	return len(r.Rows)
}

// StatementKind is how Execute classified a statement.
type StatementKind string

const (
	StatementQuery  StatementKind = "query"
	StatementUpdate StatementKind = "update"
)

// ExecutionResult is the outcome of Execute: a result set for queries or
// an affected-row count for everything else.
type ExecutionResult struct {
	Kind         StatementKind `json:"kind"`
	Query        *QueryResult  `json:"result,omitempty"`
	RowsAffected int64         `json:"rows_affected"`
}
