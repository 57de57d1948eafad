package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-dw-etl/internal/models"
	"github.com/noah-isme/exam-dw-etl/internal/transform"
	apperrors "github.com/noah-isme/exam-dw-etl/pkg/errors"
)

// Extractor supplies the full current record sets from the source store.
type Extractor interface {
	Exams(ctx context.Context) ([]models.ExamDocument, error)
	Submissions(ctx context.Context) ([]models.SubmissionDocument, error)
	Students(ctx context.Context) ([]models.StudentDocument, error)
	Filieres(ctx context.Context) ([]models.FiliereDocument, error)
}

// DimensionLoader upserts all dimension rows in one transaction and
// returns the natural-key indexes built after commit.
type DimensionLoader interface {
	LoadAll(ctx context.Context, exams []models.DimExam, students []models.DimStudent, filieres []models.DimFiliere) (*models.DimensionKeys, error)
}

// FactLoader materialises date rows and bulk-inserts the fact batch in
// one transaction, returning the number of rows actually inserted.
type FactLoader interface {
	Load(ctx context.Context, dates []models.DimDate, facts []models.ExamResultFact) (int64, error)
}

// RunLogger records run outcomes in the warehouse.
type RunLogger interface {
	Begin(ctx context.Context, run *models.ETLRun) error
	Complete(ctx context.Context, run *models.ETLRun) error
	Fail(ctx context.Context, run *models.ETLRun, message string) error
}

// ETLService orchestrates one batch run: extract everything, load
// dimensions (first transaction boundary), transform submissions against
// the committed key indexes, then load dates and facts (second
// boundary). Strictly sequential; the first error aborts the run.
type ETLService struct {
	extractor  Extractor
	dimensions DimensionLoader
	facts      FactLoader
	runs       RunLogger
	metrics    *MetricsService
	logger     *zap.Logger

	now func() time.Time
}

// NewETLService constructs the pipeline orchestrator.
func NewETLService(extractor Extractor, dimensions DimensionLoader, facts FactLoader, runs RunLogger, metrics *MetricsService, logger *zap.Logger) *ETLService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ETLService{
		extractor:  extractor,
		dimensions: dimensions,
		facts:      facts,
		runs:       runs,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes the full pipeline once and returns the run summary. A
// failure in any phase rolls back the active transaction boundary and
// aborts the run; boundaries already committed stand.
func (s *ETLService) Run(ctx context.Context) (*models.RunSummary, error) {
	started := s.now().UTC()
	run := models.NewETLRun(started)
	s.logger.Info("pipeline run starting", zap.String("run_id", run.ID))

	if s.runs != nil {
		if err := s.runs.Begin(ctx, run); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeRunLog, "create run log entry")
		}
	}

	summary, err := s.execute(ctx, run)
	if err != nil {
		s.logger.Error("pipeline run failed", zap.String("run_id", run.ID), zap.Error(err))
		if s.runs != nil {
			if logErr := s.runs.Fail(ctx, run, err.Error()); logErr != nil {
				s.logger.Warn("could not record run failure", zap.Error(logErr))
			}
		}
		return nil, err
	}

	if s.runs != nil {
		if err := s.runs.Complete(ctx, run); err != nil {
			s.logger.Warn("could not record run completion", zap.Error(err))
		}
	}

	summary.RunID = run.ID
	summary.Duration = s.now().UTC().Sub(started)
	s.logger.Info("pipeline run finished",
		zap.String("run_id", run.ID),
		zap.Duration("duration", summary.Duration),
		zap.Int64("facts_loaded", summary.FactsLoaded),
		zap.Int("submissions_skipped", summary.Skipped()))
	return summary, nil
}

func (s *ETLService) execute(ctx context.Context, run *models.ETLRun) (*models.RunSummary, error) {
	summary := &models.RunSummary{}

	// Extract.
	extractStart := s.now()
	exams, err := s.extractor.Exams(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExtract, "extract exams")
	}
	submissions, err := s.extractor.Submissions(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExtract, "extract submissions")
	}
	students, err := s.extractor.Students(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExtract, "extract students")
	}
	filieres, err := s.extractor.Filieres(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExtract, "extract filieres")
	}
	s.observePhase("extract", extractStart)

	summary.ExamsExtracted = len(exams)
	summary.StudentsExtracted = len(students)
	summary.FilieresExtracted = len(filieres)
	summary.SubmissionsExtracted = len(submissions)
	run.ExamsExtracted = len(exams)
	run.StudentsExtracted = len(students)
	run.FilieresExtracted = len(filieres)
	run.SubmissionsExtracted = len(submissions)
	if s.metrics != nil {
		s.metrics.ObserveExtracted("exams", len(exams))
		s.metrics.ObserveExtracted("students", len(students))
		s.metrics.ObserveExtracted("filieres", len(filieres))
		s.metrics.ObserveExtracted("submissions", len(submissions))
	}

	// Transform and load dimensions; first transaction boundary.
	dimStart := s.now()
	now := s.now().UTC()
	keys, err := s.dimensions.LoadAll(ctx,
		transform.ExamRows(exams, now),
		transform.StudentRows(students),
		transform.FiliereRows(filieres),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDimensionLoad, "load dimensions")
	}
	s.observePhase("load_dimensions", dimStart)
	s.logger.Info("dimensions committed",
		zap.Int("exams", len(keys.Exams)),
		zap.Int("students", len(keys.Students)),
		zap.Int("filieres", len(keys.Filieres)))

	// Transform facts against the committed indexes.
	factStart := s.now()
	builder := transform.NewFactBuilder(keys, students, s.logger)
	facts, stats := builder.Build(submissions)
	summary.FactsBuilt = len(facts)
	summary.SkippedMissingExam = stats.MissingExam
	summary.SkippedMissingStudent = stats.MissingStudent
	summary.SkippedMissingFiliere = stats.MissingFiliere
	run.SubmissionsSkipped = stats.Skipped()
	if s.metrics != nil {
		s.metrics.ObserveSkipped("missing_exam", stats.MissingExam)
		s.metrics.ObserveSkipped("missing_student", stats.MissingStudent)
		s.metrics.ObserveSkipped("missing_filiere", stats.MissingFiliere)
	}
	if stats.Skipped() > 0 {
		s.logger.Warn("submissions dropped for unresolved references",
			zap.Int("missing_exam", stats.MissingExam),
			zap.Int("missing_student", stats.MissingStudent),
			zap.Int("missing_filiere", stats.MissingFiliere))
	}

	dates, err := transform.DateRows(facts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFactLoad, "derive date dimension rows")
	}

	// Second transaction boundary: dates then facts.
	inserted, err := s.facts.Load(ctx, dates, facts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeFactLoad, "load facts")
	}
	s.observePhase("load_facts", factStart)

	summary.FactsLoaded = inserted
	run.FactsLoaded = inserted
	if s.metrics != nil {
		s.metrics.ObserveFactsLoaded(inserted)
	}

	return summary, nil
}

func (s *ETLService) observePhase(phase string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePhase(phase, s.now().Sub(start))
	}
}
