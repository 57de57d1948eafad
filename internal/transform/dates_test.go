package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

func TestDateKey(t *testing.T) {
	assert.Equal(t, 20240307, DateKey(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)))
	// A timestamp east of UTC still keys on the UTC calendar day.
	loc := time.FixedZone("UTC+3", 3*3600)
	assert.Equal(t, 20240306, DateKey(time.Date(2024, 3, 7, 1, 0, 0, 0, loc)))
}

func TestDateRowThursday(t *testing.T) {
	row, err := DateRow(20240307)
	require.NoError(t, err)

	assert.Equal(t, 2024, row.Year)
	assert.Equal(t, 1, row.Quarter)
	assert.Equal(t, 3, row.Month)
	assert.Equal(t, "March", row.MonthName)
	assert.Equal(t, 10, row.Week)
	assert.Equal(t, 7, row.DayOfMonth)
	assert.Equal(t, 4, row.DayOfWeek)
	assert.Equal(t, "Thursday", row.DayName)
	assert.False(t, row.IsWeekend)
	assert.False(t, row.IsMonthEnd)
	assert.False(t, row.IsQuarterEnd)
	assert.False(t, row.IsYearEnd)
}

func TestDateRowWeekend(t *testing.T) {
	saturday, err := DateRow(20240309)
	require.NoError(t, err)
	sunday, err := DateRow(20240310)
	require.NoError(t, err)

	assert.True(t, saturday.IsWeekend)
	assert.Equal(t, 6, saturday.DayOfWeek)
	assert.True(t, sunday.IsWeekend)
	assert.Equal(t, 7, sunday.DayOfWeek)
}

func TestDateRowPeriodEnds(t *testing.T) {
	tests := []struct {
		key        int
		monthEnd   bool
		quarterEnd bool
		yearEnd    bool
	}{
		{key: 20240331, monthEnd: true, quarterEnd: true, yearEnd: false},
		{key: 20240430, monthEnd: true, quarterEnd: false, yearEnd: false},
		{key: 20241231, monthEnd: true, quarterEnd: true, yearEnd: true},
		{key: 20240229, monthEnd: true, quarterEnd: false, yearEnd: false},
		{key: 20240315, monthEnd: false, quarterEnd: false, yearEnd: false},
	}

	for _, tt := range tests {
		row, err := DateRow(tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.monthEnd, row.IsMonthEnd, "month end for %d", tt.key)
		assert.Equal(t, tt.quarterEnd, row.IsQuarterEnd, "quarter end for %d", tt.key)
		assert.Equal(t, tt.yearEnd, row.IsYearEnd, "year end for %d", tt.key)
	}
}

func TestDateRowRejectsInvalidKey(t *testing.T) {
	_, err := DateRow(20241301)
	assert.Error(t, err)

	_, err = DateRow(20240230)
	assert.Error(t, err)
}

func TestDateRowsDeduplicatesAndSorts(t *testing.T) {
	facts := []models.ExamResultFact{
		{DateKey: 20240310},
		{DateKey: 20240307},
		{DateKey: 20240310},
	}

	rows, err := DateRows(facts)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, 20240307, rows[0].DateKey)
	assert.Equal(t, 20240310, rows[1].DateKey)
}
