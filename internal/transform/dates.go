package transform

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

// DateKey derives the integer YYYYMMDD key for a timestamp. Keys are
// always computed in UTC so a submission lands on the same calendar day
// regardless of where the pipeline runs.
func DateKey(t time.Time) int {
	u := t.UTC()
	return u.Year()*10000 + int(u.Month())*100 + u.Day()
}

// DateRow derives the full set of calendar attributes for a YYYYMMDD key.
func DateRow(key int) (models.DimDate, error) {
	year := key / 10000
	month := key / 100 % 100
	day := key % 100

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return models.DimDate{}, fmt.Errorf("invalid date key %d", key)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return models.DimDate{}, fmt.Errorf("invalid date key %d", key)
	}

	// ISO weekday numbering: Monday=1 .. Sunday=7.
	dayOfWeek := (int(date.Weekday())+6)%7 + 1
	_, isoWeek := date.ISOWeek()

	monthEnd := date.AddDate(0, 0, 1).Day() == 1

	return models.DimDate{
		DateKey:      key,
		FullDate:     date,
		Year:         year,
		Quarter:      (month-1)/3 + 1,
		Month:        month,
		MonthName:    date.Month().String(),
		Week:         isoWeek,
		DayOfMonth:   day,
		DayOfWeek:    dayOfWeek,
		DayName:      date.Weekday().String(),
		IsWeekend:    dayOfWeek >= 6,
		IsMonthEnd:   monthEnd,
		IsQuarterEnd: monthEnd && month%3 == 0,
		IsYearEnd:    month == 12 && day == 31,
	}, nil
}

// DateRows derives rows for every distinct date key referenced by the
// fact batch, in ascending key order.
func DateRows(facts []models.ExamResultFact) ([]models.DimDate, error) {
	seen := make(map[int]struct{}, len(facts))
	keys := make([]int, 0, len(facts))
	for _, fact := range facts {
		if _, ok := seen[fact.DateKey]; ok {
			continue
		}
		seen[fact.DateKey] = struct{}{}
		keys = append(keys, fact.DateKey)
	}
	sort.Ints(keys)

	rows := make([]models.DimDate, 0, len(keys))
	for _, key := range keys {
		row, err := DateRow(key)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
