package database

import (
	"fmt"
	"log"
)

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	log.Printf("[DB] Running migrations...")

	migrations := []string{
		// One row per batch run
		`CREATE TABLE IF NOT EXISTS batch_runs (
			id TEXT PRIMARY KEY,
			total INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_batch_runs_started_at ON batch_runs(started_at)`,

		// Video downloads table
		`CREATE TABLE IF NOT EXISTS video_downloads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			video_id TEXT NOT NULL,
			video_url TEXT NOT NULL,
			video_title TEXT,
			author TEXT,
			duration_seconds INTEGER,
			file_path TEXT NOT NULL,
			file_size_bytes INTEGER,
			downloaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (run_id) REFERENCES batch_runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_video_downloads_run_id ON video_downloads(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_video_downloads_video_id ON video_downloads(video_id)`,
		`CREATE INDEX IF NOT EXISTS idx_video_downloads_author ON video_downloads(author)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	log.Printf("[DB] Migrations completed successfully")
	return nil
}
