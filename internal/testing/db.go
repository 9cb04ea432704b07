// Package testing provides testing utilities and helpers for the flip engine.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/widia-io/widia-flip-sub001/internal/database"
)

// NewTestDB creates a temporary-file SQLite database for testing with automatic schema migration.
// Returns the database instance and a cleanup function that closes the connection.
// The cleanup function is idempotent and can be called multiple times safely.
//
// Supported schema names:
//   - "analysis" - applies analysis_schema.sql (standard profile)
//   - "ledger" - applies ledger_schema.sql (ledger profile)
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Each test gets its own file so WAL and multiple pool connections behave as in production
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	profile := database.ProfileStandard
	if name == database.NameLedger {
		profile = database.ProfileLedger
	}

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: profile,
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
			_ = os.Remove(tmpPath + suffix)
		}
	}
}

// NewTestDBs opens the analysis and ledger databases together and registers cleanup.
func NewTestDBs(t *testing.T) (analysis *database.DB, ledger *database.DB) {
	t.Helper()

	analysis, cleanupAnalysis := NewTestDB(t, database.NameAnalysis)
	t.Cleanup(cleanupAnalysis)
	ledger, cleanupLedger := NewTestDB(t, database.NameLedger)
	t.Cleanup(cleanupLedger)
	return analysis, ledger
}
