package models

import "time"

// DimExam is a row of the dim_exam dimension. ExamID is the natural key
// from the source store; ExamKey is the warehouse surrogate key.
type DimExam struct {
	ExamKey         int64      `db:"exam_key"`
	ExamID          string     `db:"exam_id"`
	Title           string     `db:"title"`
	Description     string     `db:"description"`
	TotalPoints     float64    `db:"total_points"`
	MinPassingScore float64    `db:"min_passing_score"`
	Duration        int        `db:"duration"`
	IsPublished     bool       `db:"is_published"`
	PublishedDate   *time.Time `db:"published_date"`
	CreatedDate     time.Time  `db:"created_date"`
	UpdatedDate     *time.Time `db:"updated_date"`
}

// DimStudent is a row of the dim_student dimension.
type DimStudent struct {
	StudentKey     int64      `db:"student_key"`
	StudentID      string     `db:"student_id"`
	Username       string     `db:"username"`
	Email          string     `db:"email"`
	FirstName      *string    `db:"first_name"`
	LastName       *string    `db:"last_name"`
	FullName       string     `db:"full_name"`
	EnrollmentDate *time.Time `db:"enrollment_date"`
	StudentNumber  *string    `db:"student_number"`
}

// DimFiliere is a row of the dim_filiere dimension.
type DimFiliere struct {
	FiliereKey  int64  `db:"filiere_key"`
	FiliereID   string `db:"filiere_id"`
	Name        string `db:"name"`
	Code        string `db:"code"`
	Description string `db:"description"`
	Duration    *int   `db:"duration"`
}

// DimDate is a row of the dim_date dimension, keyed by YYYYMMDD.
type DimDate struct {
	DateKey      int       `db:"date_key"`
	FullDate     time.Time `db:"date"`
	Year         int       `db:"year"`
	Quarter      int       `db:"quarter"`
	Month        int       `db:"month"`
	MonthName    string    `db:"month_name"`
	Week         int       `db:"week"`
	DayOfMonth   int       `db:"day_of_month"`
	DayOfWeek    int       `db:"day_of_week"`
	DayName      string    `db:"day_name"`
	IsWeekend    bool      `db:"is_weekend"`
	IsMonthEnd   bool      `db:"is_month_end"`
	IsQuarterEnd bool      `db:"is_quarter_end"`
	IsYearEnd    bool      `db:"is_year_end"`
}

// ExamResultFact is a row of fact_exam_results. All four key columns are
// warehouse surrogate keys resolved before the row is built.
type ExamResultFact struct {
	ExamKey              int64      `db:"exam_key"`
	StudentKey           int64      `db:"student_key"`
	FiliereKey           int64      `db:"filiere_key"`
	DateKey              int        `db:"date_key"`
	Score                float64    `db:"score"`
	TotalPoints          float64    `db:"total_points"`
	Percentage           float64    `db:"percentage"`
	Passed               bool       `db:"passed"`
	DurationMinutes      int        `db:"duration_minutes"`
	TimeTakenMinutes     *int       `db:"time_taken_minutes"`
	CertificateGenerated bool       `db:"certificate_generated"`
	CreatedAt            time.Time  `db:"created_at"`
	SubmittedAt          *time.Time `db:"submitted_at"`
}

// KeyIndex maps a source natural key to its warehouse surrogate key.
type KeyIndex map[string]int64

// Lookup resolves a natural key, reporting whether it is known.
func (idx KeyIndex) Lookup(naturalKey string) (int64, bool) {
	key, ok := idx[naturalKey]
	return key, ok
}

// ExamKeyEntry carries the exam surrogate key together with the exam
// duration, which facts copy as a measure.
type ExamKeyEntry struct {
	Key             int64
	DurationMinutes int
}

// DimensionKeys holds the per-dimension natural-key indexes built after
// the dimension transaction commits. Fact transformation resolves every
// reference against these and nothing else.
type DimensionKeys struct {
	Exams    map[string]ExamKeyEntry
	Students KeyIndex
	Filieres KeyIndex
}
