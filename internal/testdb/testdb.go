// Package testdb provides a shared test database helper backed by an
// in-memory SQLite database.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/autocommit/infrastructure/persistence"
	"github.com/helixml/autocommit/internal/database"
)

// New creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:", nil)
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
