package postgres

import (
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.Driver{
		Info: datasource.DriverInfo{
			Dialect:     datasource.DialectPostgres,
			DriverName:  datasource.DialectPostgres.DriverName(),
			DisplayName: "PostgreSQL",
			Description: "Connect to PostgreSQL 12+, Aurora PostgreSQL, Supabase",
			Module:      "github.com/jackc/pgx/v5",
		},
		Catalog: Catalog{},
		Open:    openPool,
	})
}

var _ datasource.Catalog = Catalog{}
