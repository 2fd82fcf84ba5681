package database

import (
	"path/filepath"
	"testing"
)

func TestNew_CreatesFileAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() unexpected error: %v", err)
	}

	// Migrations are idempotent
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() unexpected error: %v", err)
	}

	for _, table := range []string{"batch_runs", "video_downloads"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}
