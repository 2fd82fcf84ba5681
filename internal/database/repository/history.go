package repository

import (
	"database/sql"
	"fmt"

	"github.com/artur/tiksaver/internal/database/models"
	"github.com/artur/tiksaver/internal/model"
)

// History records batch runs and their downloads
type History struct {
	runs   *RunRepository
	videos *VideoRepository
}

// NewHistory creates a History over db
func NewHistory(db *sql.DB) *History {
	return &History{
		runs:   NewRunRepository(db),
		videos: NewVideoRepository(db),
	}
}

// StartRun opens a run for total URLs and returns its ID
func (h *History) StartRun(total int) (string, error) {
	run, err := h.runs.Start(total)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// RecordDownload stores a successful download under runID
func (h *History) RecordDownload(runID string, record *model.VideoRecord) error {
	return h.videos.RecordDownload(&models.VideoDownload{
		RunID:           runID,
		VideoID:         record.ID,
		VideoURL:        record.URL,
		VideoTitle:      record.Title,
		Author:          record.Author,
		DurationSeconds: record.Duration,
		FilePath:        record.AbsolutePath,
		FileSizeBytes:   record.FileSize,
		DownloadedAt:    record.DownloadedAt(),
	})
}

// FinishRun stores the final counts of runID
func (h *History) FinishRun(runID string, succeeded, failed int) error {
	return h.runs.Finish(runID, succeeded, failed)
}

// Totals returns the number of runs and downloads recorded so far
func (h *History) Totals() (runs, downloads int64, err error) {
	runs, err = h.runs.GetTotalRuns()
	if err != nil {
		return 0, 0, err
	}
	downloads, err = h.videos.GetTotalDownloads()
	if err != nil {
		return 0, 0, err
	}
	return runs, downloads, nil
}

// RunReport is the stored view of a single run
type RunReport struct {
	Run        *models.BatchRun
	Stored     int64
	TopAuthors []AuthorCount
}

// Report returns runID as stored, how many of its downloads were recorded,
// and the topN authors across all runs
func (h *History) Report(runID string, topN int) (*RunReport, error) {
	run, err := h.runs.GetByID(runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	stored, err := h.videos.GetRunDownloadCount(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count run downloads: %w", err)
	}

	authors, err := h.videos.GetTopAuthors(topN)
	if err != nil {
		return nil, err
	}

	return &RunReport{
		Run:        run,
		Stored:     stored,
		TopAuthors: authors,
	}, nil
}
