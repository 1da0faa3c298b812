//go:build cgo

package main

import (
	_ "github.com/ekaya-inc/ekaya-dbconsole/pkg/adapters/datasource/duckdb"
)
