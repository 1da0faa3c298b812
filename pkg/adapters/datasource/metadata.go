package datasource

// TableDescriptor describes a base table.
type TableDescriptor struct {
	Name    string `json:"name"`
	Schema  string `json:"schema"`
	Type    string `json:"type"`
	Remarks string `json:"remarks,omitempty"`
}

// ColumnDescriptor describes one column of a table.
type ColumnDescriptor struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Size          int64   `json:"size"`
	DecimalDigits int64   `json:"decimal_digits"`
	Nullable      bool    `json:"nullable"`
	DefaultValue  *string `json:"default_value"` // nil when the column has no default
	Position      int     `json:"position"`
	Remarks       string  `json:"remarks,omitempty"`
}

// DatabaseInfo is a read-only snapshot of the current connection's server and driver.
type DatabaseInfo struct {
	ConnectionName       string `json:"connection_name"`
	ProductName          string `json:"product_name"`
	ProductVersion       string `json:"product_version"`
	DriverName           string `json:"driver_name"`
	DriverVersion        string `json:"driver_version"`
	URL                  string `json:"url"` // credentials redacted
	UserName             string `json:"user_name"`
	MaxConnections       int64  `json:"max_connections"`
	CatalogSeparator     string `json:"catalog_separator"`
	SupportsTransactions bool   `json:"supports_transactions"`
}

// ColumnDefinition describes a column for CreateTable.
type ColumnDefinition struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Size         int     `json:"size,omitempty"`
	Nullable     bool    `json:"nullable"`
	DefaultValue *string `json:"default_value,omitempty"` // raw SQL expression
	PrimaryKey   bool    `json:"primary_key,omitempty"`
}
