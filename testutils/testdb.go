package testutils

import (
	"testing"

	"jotter-notes/jotter/database"
	"jotter-notes/jotter/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory sqlite database with the full schema
// migrated, for behavioral tests that care about end state rather than the
// generated SQL.
func SetupTestDB(t *testing.T) *database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	// A second pooled connection would see its own empty :memory: database,
	// so pin the pool to one connection. Concurrent bulk operations
	// serialize on it.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Note{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return &database.Database{DB: db}
}
