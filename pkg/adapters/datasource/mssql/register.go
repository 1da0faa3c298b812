package mssql

import (
	"context"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Driver{
		Info: datasource.DriverInfo{
			Dialect:     datasource.DialectSQLServer,
			DriverName:  datasource.DialectSQLServer.DriverName(),
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2019+, Azure SQL Database",
			Module:      "github.com/microsoft/go-mssqldb",
		},
		Catalog: Catalog{},
		Open:    openPool,
	})
}

func openPool(_ context.Context, cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (datasource.Pool, error) {
	name, dsn, err := buildConnectionString(cfg, settings)
	if err != nil {
		return nil, err
	}
	return datasource.OpenSQLPool(name, dsn, settings)
}

var _ datasource.Catalog = Catalog{}
