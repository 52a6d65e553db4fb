//go:build cgo

package dbstore

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const driverName = "mattn/go-sqlite3"

func dialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}
