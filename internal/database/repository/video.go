package repository

import (
	"database/sql"
	"fmt"

	"github.com/artur/tiksaver/internal/database/models"
)

// VideoRepository handles video download persistence
type VideoRepository struct {
	db *sql.DB
}

// NewVideoRepository creates a new VideoRepository
func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// RecordDownload records a video download
func (r *VideoRepository) RecordDownload(download *models.VideoDownload) error {
	query := `
		INSERT INTO video_downloads
		(run_id, video_id, video_url, video_title, author, duration_seconds, file_path, file_size_bytes, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		download.RunID,
		download.VideoID,
		download.VideoURL,
		download.VideoTitle,
		download.Author,
		download.DurationSeconds,
		download.FilePath,
		download.FileSizeBytes,
		download.DownloadedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record video download: %w", err)
	}

	return nil
}

// GetRunDownloadCount returns downloads recorded for a run
func (r *VideoRepository) GetRunDownloadCount(runID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM video_downloads WHERE run_id = ?`
	err := r.db.QueryRow(query, runID).Scan(&count)
	return count, err
}

// GetTotalDownloads returns total downloads across all runs
func (r *VideoRepository) GetTotalDownloads() (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM video_downloads").Scan(&count)
	return count, err
}

// AuthorCount represents an author with download count
type AuthorCount struct {
	Author        string
	DownloadCount int64
}

// GetTopAuthors returns the most downloaded authors (top N)
func (r *VideoRepository) GetTopAuthors(limit int) ([]AuthorCount, error) {
	query := `
		SELECT author, COUNT(*) as download_count
		FROM video_downloads
		WHERE author IS NOT NULL AND author != ''
		GROUP BY author
		ORDER BY download_count DESC, author ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top authors: %w", err)
	}
	defer rows.Close()

	var authors []AuthorCount
	for rows.Next() {
		var item AuthorCount
		if err := rows.Scan(&item.Author, &item.DownloadCount); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, item)
	}

	return authors, rows.Err()
}
