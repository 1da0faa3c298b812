package datasource

import (
	"context"
	"sort"
	"sync"
)

// DriverInfo describes a compiled-in driver for API discovery.
type DriverInfo struct {
	Dialect     Dialect `json:"dialect"`
	DriverName  string  `json:"driver_name"`  // "pgx", "mysql", "sqlserver"
	DisplayName string  `json:"display_name"` // "PostgreSQL", "MySQL"
	Description string  `json:"description"`  // "Connect to PostgreSQL 12+"
	// Module is the Go module path implementing the driver, used to report its version.
	Module string `json:"module"`
}

// Driver binds a dialect to the code that opens pools against it and the
// catalog queries used to introspect it.
type Driver struct {
	Info    DriverInfo
	Catalog Catalog
	// Open builds a pool. It must not block on network I/O beyond what the
	// underlying driver does at construction time; connectivity is checked by the caller.
	Open func(ctx context.Context, cfg ConnectionConfig, settings PoolSettings) (Pool, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[Dialect]Driver)
)

// Register is called by each driver package's init() function.
// Thread-safe for concurrent init() calls.
func Register(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[d.Info.Dialect] = d
}

// RegisteredDrivers returns info for all registered drivers, sorted by dialect.
func RegisteredDrivers() []DriverInfo {
	driversMu.RLock()
	defer driversMu.RUnlock()

	result := make([]DriverInfo, 0, len(drivers))
	for _, d := range drivers {
		result = append(result, d.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Dialect < result[j].Dialect })
	return result
}

// GetDriver returns the driver registered for a dialect.
func GetDriver(d Dialect) (Driver, bool) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	drv, ok := drivers[d]
	return drv, ok
}

// IsRegistered checks if a driver for the dialect is compiled in.
func IsRegistered(d Dialect) bool {
	_, ok := GetDriver(d)
	return ok
}
