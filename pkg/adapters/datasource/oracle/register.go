package oracle

import (
	"context"

	_ "github.com/sijms/go-ora/v2" // registers the "oracle" driver

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Driver{
		Info: datasource.DriverInfo{
			Dialect:     datasource.DialectOracle,
			DriverName:  datasource.DialectOracle.DriverName(),
			DisplayName: "Oracle",
			Description: "Connect to Oracle Database 12c+ (pure Go, no client libraries)",
			Module:      "github.com/sijms/go-ora/v2",
		},
		Catalog: Catalog{},
		Open:    openPool,
	})
}

func openPool(_ context.Context, cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (datasource.Pool, error) {
	dsn, err := buildConnectionString(cfg, settings)
	if err != nil {
		return nil, err
	}
	return datasource.OpenSQLPool(datasource.DialectOracle.DriverName(), dsn, settings)
}

var _ datasource.Catalog = Catalog{}
