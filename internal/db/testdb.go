package db

import (
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := OpenSQLite(":memory:", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), NowFunc: Now})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("getting sql handle: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := Migrate(conn); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return conn
}
