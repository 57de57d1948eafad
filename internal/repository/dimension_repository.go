package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

const upsertExamQuery = `INSERT INTO dim_exam (exam_id, title, description, total_points, min_passing_score, duration, is_published, published_date, created_date, updated_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (exam_id) DO UPDATE SET
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            total_points = EXCLUDED.total_points,
            min_passing_score = EXCLUDED.min_passing_score,
            duration = EXCLUDED.duration,
            is_published = EXCLUDED.is_published,
            published_date = EXCLUDED.published_date,
            updated_date = EXCLUDED.updated_date
        RETURNING exam_key`

const upsertStudentQuery = `INSERT INTO dim_student (student_id, username, email, first_name, last_name, full_name, enrollment_date, student_number)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (student_id) DO UPDATE SET
            username = EXCLUDED.username,
            email = EXCLUDED.email,
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            full_name = EXCLUDED.full_name,
            enrollment_date = EXCLUDED.enrollment_date,
            student_number = EXCLUDED.student_number
        RETURNING student_key`

const upsertFiliereQuery = `INSERT INTO dim_filiere (filiere_id, name, code, description, duration)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (filiere_id) DO UPDATE SET
            name = EXCLUDED.name,
            code = EXCLUDED.code,
            description = EXCLUDED.description,
            duration = EXCLUDED.duration
        RETURNING filiere_key`

// DimensionRepository loads the exam, student and filiere dimensions.
// Each load is a Type-1 upsert keyed on the source natural key: existing
// rows are overwritten in place, keeping their surrogate key. Re-running
// with identical input leaves the warehouse unchanged.
type DimensionRepository struct {
	db *sqlx.DB
}

// NewDimensionRepository constructs a DimensionRepository.
func NewDimensionRepository(db *sqlx.DB) *DimensionRepository {
	return &DimensionRepository{db: db}
}

// LoadAll upserts every dimension row inside a single transaction and
// returns the natural-key indexes. The indexes are populated only after
// the transaction commits, so facts never resolve against a
// partially-loaded dimension. Any single-row failure rolls back the
// whole dimension phase.
func (r *DimensionRepository) LoadAll(ctx context.Context, exams []models.DimExam, students []models.DimStudent, filieres []models.DimFiliere) (*models.DimensionKeys, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin dimension transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	examKeys := make([]int64, len(exams))
	for i := range exams {
		if err := tx.GetContext(ctx, &examKeys[i], upsertExamQuery,
			exams[i].ExamID, exams[i].Title, exams[i].Description,
			exams[i].TotalPoints, exams[i].MinPassingScore, exams[i].Duration,
			exams[i].IsPublished, exams[i].PublishedDate, exams[i].CreatedDate,
			exams[i].UpdatedDate,
		); err != nil {
			return nil, fmt.Errorf("upsert exam %s: %w", exams[i].ExamID, err)
		}
	}

	studentKeys := make([]int64, len(students))
	for i := range students {
		if err := tx.GetContext(ctx, &studentKeys[i], upsertStudentQuery,
			students[i].StudentID, students[i].Username, students[i].Email,
			students[i].FirstName, students[i].LastName, students[i].FullName,
			students[i].EnrollmentDate, students[i].StudentNumber,
		); err != nil {
			return nil, fmt.Errorf("upsert student %s: %w", students[i].StudentID, err)
		}
	}

	filiereKeys := make([]int64, len(filieres))
	for i := range filieres {
		if err := tx.GetContext(ctx, &filiereKeys[i], upsertFiliereQuery,
			filieres[i].FiliereID, filieres[i].Name, filieres[i].Code,
			filieres[i].Description, filieres[i].Duration,
		); err != nil {
			return nil, fmt.Errorf("upsert filiere %s: %w", filieres[i].FiliereID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit dimension transaction: %w", err)
	}

	keys := &models.DimensionKeys{
		Exams:    make(map[string]models.ExamKeyEntry, len(exams)),
		Students: make(models.KeyIndex, len(students)),
		Filieres: make(models.KeyIndex, len(filieres)),
	}
	for i := range exams {
		exams[i].ExamKey = examKeys[i]
		keys.Exams[exams[i].ExamID] = models.ExamKeyEntry{
			Key:             examKeys[i],
			DurationMinutes: exams[i].Duration,
		}
	}
	for i := range students {
		students[i].StudentKey = studentKeys[i]
		keys.Students[students[i].StudentID] = studentKeys[i]
	}
	for i := range filieres {
		filieres[i].FiliereKey = filiereKeys[i]
		keys.Filieres[filieres[i].FiliereID] = filiereKeys[i]
	}

	return keys, nil
}
