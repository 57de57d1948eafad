package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

const insertDateQuery = `INSERT INTO dim_date (date_key, date, year, quarter, month, month_name, week, day_of_month, day_of_week, day_name, is_weekend, is_month_end, is_quarter_end, is_year_end)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (date_key) DO NOTHING`

const factColumnCount = 13

// FactRepository loads exam-result facts. One call covers the second
// transaction boundary of a run: referenced date-dimension rows are
// materialised first, then the whole fact batch is inserted in a single
// statement with duplicate rows silently suppressed.
type FactRepository struct {
	db *sqlx.DB
}

// NewFactRepository constructs a FactRepository.
func NewFactRepository(db *sqlx.DB) *FactRepository {
	return &FactRepository{db: db}
}

// Load inserts the date rows and the fact batch inside one transaction
// and returns the number of facts actually inserted. Facts already
// present under the composite uniqueness constraint are dropped by the
// warehouse, not reported as errors.
func (r *FactRepository) Load(ctx context.Context, dates []models.DimDate, facts []models.ExamResultFact) (int64, error) {
	if len(facts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin fact transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Facts reference dim_date by key, so dates go in first.
	for _, d := range dates {
		if _, err := tx.ExecContext(ctx, insertDateQuery,
			d.DateKey, d.FullDate, d.Year, d.Quarter, d.Month, d.MonthName,
			d.Week, d.DayOfMonth, d.DayOfWeek, d.DayName, d.IsWeekend,
			d.IsMonthEnd, d.IsQuarterEnd, d.IsYearEnd,
		); err != nil {
			return 0, fmt.Errorf("insert date %d: %w", d.DateKey, err)
		}
	}

	query, args := buildFactInsert(facts)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert facts: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count inserted facts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit fact transaction: %w", err)
	}

	return inserted, nil
}

// buildFactInsert renders the multi-row insert statement for the batch.
func buildFactInsert(facts []models.ExamResultFact) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO fact_exam_results (exam_key, student_key, filiere_key, date_key, score, total_points, percentage, passed, duration_minutes, time_taken_minutes, certificate_generated, created_at, submitted_at) VALUES `)

	args := make([]interface{}, 0, len(facts)*factColumnCount)
	for i, f := range facts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := 0; c < factColumnCount; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*factColumnCount+c+1)
		}
		sb.WriteString(")")

		args = append(args,
			f.ExamKey, f.StudentKey, f.FiliereKey, f.DateKey,
			f.Score, f.TotalPoints, f.Percentage, f.Passed,
			f.DurationMinutes, f.TimeTakenMinutes, f.CertificateGenerated,
			f.CreatedAt, f.SubmittedAt,
		)
	}

	sb.WriteString(" ON CONFLICT DO NOTHING")
	return sb.String(), args
}
