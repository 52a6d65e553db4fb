//go:build !cgo

package dbstore

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const driverName = "modernc.org/sqlite"

func dialector(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}
