package mysql

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-dbconsole/pkg/config"
)

func connConfig(t *testing.T, raw, user, password string) datasource.ConnectionConfig {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return datasource.ConnectionConfig{Name: "my", URL: u, RawURL: raw, User: user, Password: password}
}

func TestDriverConfig(t *testing.T) {
	if config.IsRunningInDocker() {
		t.Skip("localhost is rewritten inside Docker")
	}

	settings := datasource.PoolSettings{ConnectionTimeout: 10 * time.Second}
	mc, err := driverConfig(connConfig(t, "mysql://localhost/shop?tls=preferred&charset=utf8mb4", "root", "p@ss:word"), settings)
	require.NoError(t, err)

	assert.Equal(t, "tcp", mc.Net)
	assert.Equal(t, "localhost:3306", mc.Addr)
	assert.Equal(t, "shop", mc.DBName)
	assert.Equal(t, "root", mc.User)
	assert.Equal(t, "p@ss:word", mc.Passwd)
	assert.True(t, mc.ParseTime)
	assert.Equal(t, 10*time.Second, mc.Timeout)
	assert.Equal(t, "preferred", mc.TLSConfig)
	assert.Equal(t, "utf8mb4", mc.Params["charset"])

	dsn := mc.FormatDSN()
	assert.Contains(t, dsn, "root:p@ss:word@tcp(localhost:3306)/shop")
}

func TestDriverConfig_DriverOptions(t *testing.T) {
	settings := datasource.PoolSettings{ConnectionTimeout: 10 * time.Second}
	mc, err := driverConfig(connConfig(t, "mysql://db.internal:3306/shop?loc=Local&collation=utf8mb4_bin&readTimeout=5s", "app", ""), settings)
	require.NoError(t, err)

	assert.Equal(t, time.Local, mc.Loc)
	assert.Equal(t, "utf8mb4_bin", mc.Collation)
	assert.Equal(t, 5*time.Second, mc.ReadTimeout)
	assert.Empty(t, mc.Params)
}

func TestDriverConfig_ExplicitOptionsWin(t *testing.T) {
	settings := datasource.PoolSettings{ConnectionTimeout: 10 * time.Second}
	mc, err := driverConfig(connConfig(t, "mysql://db.internal/shop?parseTime=false&timeout=3s&sql_mode=ANSI", "app", ""), settings)
	require.NoError(t, err)

	assert.False(t, mc.ParseTime)
	assert.Equal(t, 3*time.Second, mc.Timeout)
	assert.Equal(t, map[string]string{"sql_mode": "ANSI"}, mc.Params)
}

func TestDriverConfig_InvalidOption(t *testing.T) {
	_, err := driverConfig(connConfig(t, "mysql://db.internal/shop?readTimeout=soon", "app", ""), datasource.PoolSettings{})
	assert.Error(t, err)
}

func TestDriverConfig_Errors(t *testing.T) {
	_, err := driverConfig(connConfig(t, "postgresql://localhost/app", "u", ""), datasource.PoolSettings{})
	assert.Error(t, err)

	_, err = driverConfig(connConfig(t, "mysql:///app", "u", ""), datasource.PoolSettings{})
	assert.Error(t, err)

	_, err = driverConfig(datasource.ConnectionConfig{}, datasource.PoolSettings{})
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	c := Catalog{}
	assert.Equal(t, "`orders`", c.QuoteIdentifier("orders"))
	assert.Equal(t, "`a``b`", c.QuoteIdentifier("a`b"))

	q, args := c.ListTablesQuery("shop")
	assert.Contains(t, q, "table_schema = ?")
	assert.Equal(t, []any{"shop", "shop"}, args)

	_, args = c.DescribeTableQuery("", "orders")
	assert.Equal(t, []any{"", "orders"}, args)
}

func TestRegistered(t *testing.T) {
	d, ok := datasource.GetDriver(datasource.DialectMySQL)
	require.True(t, ok)
	assert.Equal(t, "mysql", d.Info.DriverName)
}
