package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

func factFixtures() ([]models.DimDate, []models.ExamResultFact) {
	dates := []models.DimDate{{
		DateKey:    20240307,
		FullDate:   time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		Year:       2024,
		Quarter:    1,
		Month:      3,
		MonthName:  "March",
		Week:       10,
		DayOfMonth: 7,
		DayOfWeek:  4,
		DayName:    "Thursday",
	}}
	facts := []models.ExamResultFact{
		{ExamKey: 11, StudentKey: 22, FiliereKey: 33, DateKey: 20240307, Score: 45, TotalPoints: 90, Percentage: 50, CreatedAt: time.Now()},
		{ExamKey: 11, StudentKey: 44, FiliereKey: 33, DateKey: 20240307, Score: 80, TotalPoints: 90, Percentage: 88.9, Passed: true, CreatedAt: time.Now()},
	}
	return dates, facts
}

func TestFactRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFactRepository(db)
	dates, facts := factFixtures()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dim_date").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO fact_exam_results").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	inserted, err := repo.Load(context.Background(), dates, facts)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactRepositoryDuplicatesSuppressed(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFactRepository(db)
	dates, facts := factFixtures()

	// A re-run inserts nothing: every row conflicts with an existing one
	// and the warehouse drops it silently.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dim_date").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO fact_exam_results").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	inserted, err := repo.Load(context.Background(), dates, facts)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactRepositoryEmptyBatch(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFactRepository(db)

	inserted, err := repo.Load(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactRepositoryRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepositoryMock(t)
	defer cleanup()
	repo := NewFactRepository(db)
	dates, facts := factFixtures()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO dim_date").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO fact_exam_results").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Load(context.Background(), dates, facts)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildFactInsertPlaceholders(t *testing.T) {
	_, facts := factFixtures()

	query, args := buildFactInsert(facts)

	assert.Contains(t, query, "($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)")
	assert.Contains(t, query, "($14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)")
	assert.Contains(t, query, "ON CONFLICT DO NOTHING")
	assert.Len(t, args, 2*factColumnCount)
}
