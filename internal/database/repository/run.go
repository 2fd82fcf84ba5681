package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/artur/tiksaver/internal/database/models"
	"github.com/google/uuid"
)

// RunRepository handles batch run persistence
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Start inserts a new run for total URLs and returns it
func (r *RunRepository) Start(total int) (*models.BatchRun, error) {
	run := &models.BatchRun{
		ID:        uuid.NewString(),
		Total:     total,
		StartedAt: time.Now(),
	}

	query := `INSERT INTO batch_runs (id, total, started_at) VALUES (?, ?, ?)`
	if _, err := r.db.Exec(query, run.ID, run.Total, run.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	return run, nil
}

// Finish stores the outcome of a run
func (r *RunRepository) Finish(id string, succeeded, failed int) error {
	query := `UPDATE batch_runs SET succeeded = ?, failed = ?, finished_at = ? WHERE id = ?`
	res, err := r.db.Exec(query, succeeded, failed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// GetByID retrieves a run, or nil when it doesn't exist
func (r *RunRepository) GetByID(id string) (*models.BatchRun, error) {
	query := `
		SELECT id, total, succeeded, failed, started_at, finished_at
		FROM batch_runs
		WHERE id = ?
	`

	run := &models.BatchRun{}
	var finishedAt sql.NullTime

	err := r.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&run.StartedAt,
		&finishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return run, nil
}

// GetTotalRuns returns the number of recorded runs
func (r *RunRepository) GetTotalRuns() (int64, error) {
	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM batch_runs").Scan(&count)
	return count, err
}
