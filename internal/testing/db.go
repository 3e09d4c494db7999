// Package testing provides testing utilities and helpers for the ecopath project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/ecopath/ecopath/internal/database"
	_ "modernc.org/sqlite"
)

// NewTestDB creates a temporary file-backed SQLite database with automatic schema migration.
// Returns the database instance and a cleanup function that closes and removes it.
// The cleanup function is idempotent and can be called multiple times safely.
//
// Supported schema names:
//   - "inventory" - applies inventory_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Temporary files rather than :memory: so every pooled connection sees the same database
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(tmpPath + suffix); err != nil && !os.IsNotExist(err) {
				t.Logf("Warning: Failed to remove temporary database file %s: %v", tmpPath+suffix, err)
			}
		}
	}
}

// NewInventoryDB is NewTestDB for the inventory schema with cleanup registered on t
func NewInventoryDB(t *testing.T) *database.DB {
	t.Helper()
	db, cleanup := NewTestDB(t, "inventory")
	t.Cleanup(cleanup)
	return db
}
