package models

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses recorded in etl_runs.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// ETLRun is one row of the etl_runs log table.
type ETLRun struct {
	ID                   string     `db:"id"`
	StartedAt            time.Time  `db:"started_at"`
	FinishedAt           *time.Time `db:"finished_at"`
	Status               string     `db:"status"`
	ExamsExtracted       int        `db:"exams_extracted"`
	StudentsExtracted    int        `db:"students_extracted"`
	FilieresExtracted    int        `db:"filieres_extracted"`
	SubmissionsExtracted int        `db:"submissions_extracted"`
	FactsLoaded          int64      `db:"facts_loaded"`
	SubmissionsSkipped   int        `db:"submissions_skipped"`
	ErrorMessage         *string    `db:"error_message"`
}

// NewETLRun starts a run record in the running state.
func NewETLRun(startedAt time.Time) *ETLRun {
	return &ETLRun{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
		Status:    RunStatusRunning,
	}
}

// RunSummary is the operator-facing outcome of a pipeline run.
type RunSummary struct {
	RunID                 string
	Duration              time.Duration
	ExamsExtracted        int
	StudentsExtracted     int
	FilieresExtracted     int
	SubmissionsExtracted  int
	FactsBuilt            int
	FactsLoaded           int64
	SkippedMissingExam    int
	SkippedMissingStudent int
	SkippedMissingFiliere int
}

// Skipped returns the total number of submissions dropped for unresolved
// references.
func (s RunSummary) Skipped() int {
	return s.SkippedMissingExam + s.SkippedMissingStudent + s.SkippedMissingFiliere
}
