package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Driver{
		Info: datasource.DriverInfo{
			Dialect:     datasource.DialectMySQL,
			DriverName:  datasource.DialectMySQL.DriverName(),
			DisplayName: "MySQL",
			Description: "Connect to MySQL 8+, MariaDB, Aurora MySQL",
			Module:      "github.com/go-sql-driver/mysql",
		},
		Catalog: Catalog{},
		Open:    openPool,
	})
}

func openPool(_ context.Context, cfg datasource.ConnectionConfig, settings datasource.PoolSettings) (datasource.Pool, error) {
	mc, err := driverConfig(cfg, settings)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, err
	}
	return datasource.NewSQLPool(sql.OpenDB(connector), settings), nil
}

var _ datasource.Catalog = Catalog{}
