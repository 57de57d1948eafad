package transform

import (
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

// FactBuildStats counts submissions dropped during fact transformation,
// broken down by the reference that failed to resolve.
type FactBuildStats struct {
	MissingExam    int
	MissingStudent int
	MissingFiliere int
}

// Skipped returns the total number of dropped submissions.
func (s FactBuildStats) Skipped() int {
	return s.MissingExam + s.MissingStudent + s.MissingFiliere
}

// FactBuilder joins raw submissions against the surrogate-key indexes
// built after the dimension commit and emits fact rows. Submissions whose
// exam, student or program reference does not resolve are dropped, never
// stored with a null reference.
type FactBuilder struct {
	keys             *models.DimensionKeys
	filiereByStudent map[string]string
	logger           *zap.Logger

	// Now supplies the processing time used as a fallback for missing
	// submission timestamps. Overridable in tests.
	Now func() time.Time
}

// NewFactBuilder constructs a FactBuilder. The raw student documents are
// needed alongside the key indexes because the program reference lives on
// the student profile, not on the submission.
func NewFactBuilder(keys *models.DimensionKeys, students []models.StudentDocument, logger *zap.Logger) *FactBuilder {
	filiereByStudent := make(map[string]string, len(students))
	for _, s := range students {
		if ref := s.StudentInfo.Filiere; !ref.IsZero() {
			filiereByStudent[s.ID.Hex()] = ref.ID()
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &FactBuilder{
		keys:             keys,
		filiereByStudent: filiereByStudent,
		logger:           logger,
		Now:              time.Now,
	}
}

// Build transforms the submission batch into fact rows, preserving source
// order. Dropped submissions are logged and counted, never fatal.
func (b *FactBuilder) Build(submissions []models.SubmissionDocument) ([]models.ExamResultFact, FactBuildStats) {
	facts := make([]models.ExamResultFact, 0, len(submissions))
	var stats FactBuildStats

	for _, sub := range submissions {
		examID := sub.Exam.Hex()
		studentID := sub.Student.Hex()

		exam, ok := b.keys.Exams[examID]
		if sub.Exam.IsZero() || !ok {
			stats.MissingExam++
			b.logger.Debug("skipping submission: unknown exam",
				zap.String("submission_id", sub.ID.Hex()),
				zap.String("exam_id", examID))
			continue
		}

		studentKey, ok := b.keys.Students.Lookup(studentID)
		if sub.Student.IsZero() || !ok {
			stats.MissingStudent++
			b.logger.Debug("skipping submission: unknown student",
				zap.String("submission_id", sub.ID.Hex()),
				zap.String("student_id", studentID))
			continue
		}

		filiereID, hasRef := b.filiereByStudent[studentID]
		filiereKey, resolved := b.keys.Filieres.Lookup(filiereID)
		if !hasRef || !resolved {
			stats.MissingFiliere++
			b.logger.Debug("skipping submission: unresolved filiere",
				zap.String("submission_id", sub.ID.Hex()),
				zap.String("student_id", studentID),
				zap.String("filiere_id", filiereID))
			continue
		}

		now := b.Now()

		facts = append(facts, models.ExamResultFact{
			ExamKey:              exam.Key,
			StudentKey:           studentKey,
			FiliereKey:           filiereKey,
			DateKey:              DateKey(sub.SubmittedAt.Or(now)),
			Score:                sub.Score,
			TotalPoints:          sub.TotalPoints,
			Percentage:           derivePercentage(sub.Percentage, sub.Score, sub.TotalPoints),
			Passed:               sub.Passed,
			DurationMinutes:      exam.DurationMinutes,
			TimeTakenMinutes:     elapsedMinutes(sub.StartedAt, sub.SubmittedAt),
			CertificateGenerated: sub.CertificateGenerated,
			CreatedAt:            sub.CreatedAt.Or(now),
			SubmittedAt:          sub.SubmittedAt.Ptr(),
		})
	}

	return facts, stats
}

// derivePercentage recomputes the percentage from score and total points
// only when the source value is exactly zero and total points is
// positive; otherwise the source value is trusted as-is.
func derivePercentage(percentage, score, totalPoints float64) float64 {
	if percentage == 0 && totalPoints > 0 {
		return score / totalPoints * 100
	}
	return percentage
}

// elapsedMinutes computes floor((submitted-started)/60s) when both
// timestamps are present, nil otherwise.
func elapsedMinutes(started, submitted models.FlexTime) *int {
	start, okStart := started.Time()
	end, okEnd := submitted.Time()
	if !okStart || !okEnd {
		return nil
	}
	minutes := int(end.Sub(start) / time.Minute)
	return &minutes
}
