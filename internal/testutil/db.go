// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"testing"

	"tokenvault/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database that is closed when t ends.
// It holds a single connection, so code running inside a transaction must only
// use the transaction handle.
//
// SQLite keeps decimal(24,6) columns with NUMERIC affinity, so balance updates
// run in floating point and nothing is rounded to six places the way MySQL and
// Postgres do. Tests must use amounts that are exact in binary and must not rely
// on the store for DECIMAL rounding.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}
