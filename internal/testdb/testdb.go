// Package testdb opens a migrated in-memory SQLite database for tests.
package testdb

import (
	"io"
	"testing"

	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

// Open returns a fresh database with every migration applied. The single
// pooled connection keeps the in-memory database alive for the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}

	runner := migration.New(db)
	runner.Out = io.Discard
	if err := runner.Run(); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
