package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/NandiniGupta213/crm/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewFileTestDB creates a file-backed database in a temp directory. Unlike
// :memory:, every connection in the pool sees the same data, which concurrent
// tests need.
func NewFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return NewFileTestDBWith(t, db.Options{})
}

// NewFileTestDBWith is NewFileTestDB with explicit connection options.
func NewFileTestDBWith(t *testing.T, opts db.Options) *sql.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "crm_test.db"), opts)
	if err != nil {
		t.Fatalf("failed to create file test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
