package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

// RunRepository records pipeline runs in the etl_runs log table.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Begin inserts the run record in the running state.
func (r *RunRepository) Begin(ctx context.Context, run *models.ETLRun) error {
	const query = `INSERT INTO etl_runs (id, started_at, status)
        VALUES (:id, :started_at, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}
	return nil
}

// Complete marks the run successful and stores its counters.
func (r *RunRepository) Complete(ctx context.Context, run *models.ETLRun) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = models.RunStatusSuccess

	const query = `UPDATE etl_runs SET
            finished_at = :finished_at,
            status = :status,
            exams_extracted = :exams_extracted,
            students_extracted = :students_extracted,
            filieres_extracted = :filieres_extracted,
            submissions_extracted = :submissions_extracted,
            facts_loaded = :facts_loaded,
            submissions_skipped = :submissions_skipped
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("complete run log: %w", err)
	}
	return nil
}

// Fail marks the run failed with the given error message.
func (r *RunRepository) Fail(ctx context.Context, run *models.ETLRun, message string) error {
	now := time.Now().UTC()
	run.FinishedAt = &now
	run.Status = models.RunStatusFailed
	run.ErrorMessage = &message

	const query = `UPDATE etl_runs SET
            finished_at = :finished_at,
            status = :status,
            error_message = :error_message
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("fail run log: %w", err)
	}
	return nil
}
