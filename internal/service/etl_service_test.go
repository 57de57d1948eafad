package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-dw-etl/internal/models"
	apperrors "github.com/noah-isme/exam-dw-etl/pkg/errors"
)

type mockExtractor struct {
	exams       []models.ExamDocument
	submissions []models.SubmissionDocument
	students    []models.StudentDocument
	filieres    []models.FiliereDocument

	examsErr       error
	submissionsErr error
	studentsErr    error
	filieresErr    error
}

func (m *mockExtractor) Exams(ctx context.Context) ([]models.ExamDocument, error) {
	return m.exams, m.examsErr
}

func (m *mockExtractor) Submissions(ctx context.Context) ([]models.SubmissionDocument, error) {
	return m.submissions, m.submissionsErr
}

func (m *mockExtractor) Students(ctx context.Context) ([]models.StudentDocument, error) {
	return m.students, m.studentsErr
}

func (m *mockExtractor) Filieres(ctx context.Context) ([]models.FiliereDocument, error) {
	return m.filieres, m.filieresErr
}

type mockDimensionLoader struct {
	keys  *models.DimensionKeys
	err   error
	calls int

	gotExams    []models.DimExam
	gotStudents []models.DimStudent
	gotFilieres []models.DimFiliere
}

func (m *mockDimensionLoader) LoadAll(ctx context.Context, exams []models.DimExam, students []models.DimStudent, filieres []models.DimFiliere) (*models.DimensionKeys, error) {
	m.calls++
	m.gotExams = exams
	m.gotStudents = students
	m.gotFilieres = filieres
	if m.err != nil {
		return nil, m.err
	}
	return m.keys, nil
}

type mockFactLoader struct {
	inserted int64
	err      error
	calls    int

	gotDates []models.DimDate
	gotFacts []models.ExamResultFact
}

func (m *mockFactLoader) Load(ctx context.Context, dates []models.DimDate, facts []models.ExamResultFact) (int64, error) {
	m.calls++
	m.gotDates = dates
	m.gotFacts = facts
	if m.err != nil {
		return 0, m.err
	}
	return m.inserted, nil
}

type mockRunLogger struct {
	began     int
	completed int
	failed    int
	failMsg   string
}

func (m *mockRunLogger) Begin(ctx context.Context, run *models.ETLRun) error {
	m.began++
	return nil
}

func (m *mockRunLogger) Complete(ctx context.Context, run *models.ETLRun) error {
	m.completed++
	return nil
}

func (m *mockRunLogger) Fail(ctx context.Context, run *models.ETLRun, message string) error {
	m.failed++
	m.failMsg = message
	return nil
}

type serviceFixture struct {
	extractor *mockExtractor
	dims      *mockDimensionLoader
	facts     *mockFactLoader
	runs      *mockRunLogger
}

func newServiceFixture() *serviceFixture {
	examID := primitive.NewObjectID()
	studentID := primitive.NewObjectID()
	filiereID := primitive.NewObjectID()

	submitted := models.NewFlexTime(time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC))

	return &serviceFixture{
		extractor: &mockExtractor{
			exams: []models.ExamDocument{{ID: examID, Title: "Algebra", TotalPoints: 90, Duration: 90}},
			students: []models.StudentDocument{{
				ID:       studentID,
				Username: "jdoe",
				StudentInfo: models.StudentInfo{
					Filiere: models.NewFiliereRef(filiereID.Hex()),
				},
			}},
			filieres: []models.FiliereDocument{{ID: filiereID, Name: "Informatique", Code: "GI"}},
			submissions: []models.SubmissionDocument{{
				ID:          primitive.NewObjectID(),
				Exam:        examID,
				Student:     studentID,
				Score:       45,
				TotalPoints: 90,
				SubmittedAt: submitted,
				CreatedAt:   submitted,
			}},
		},
		dims: &mockDimensionLoader{keys: &models.DimensionKeys{
			Exams:    map[string]models.ExamKeyEntry{examID.Hex(): {Key: 11, DurationMinutes: 90}},
			Students: models.KeyIndex{studentID.Hex(): 22},
			Filieres: models.KeyIndex{filiereID.Hex(): 33},
		}},
		facts: &mockFactLoader{inserted: 1},
		runs:  &mockRunLogger{},
	}
}

func (f *serviceFixture) service() *ETLService {
	return NewETLService(f.extractor, f.dims, f.facts, f.runs, NewMetricsService(), zap.NewNop())
}

func TestETLServiceRun(t *testing.T) {
	f := newServiceFixture()

	summary, err := f.service().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ExamsExtracted)
	assert.Equal(t, 1, summary.StudentsExtracted)
	assert.Equal(t, 1, summary.FilieresExtracted)
	assert.Equal(t, 1, summary.SubmissionsExtracted)
	assert.Equal(t, 1, summary.FactsBuilt)
	assert.Equal(t, int64(1), summary.FactsLoaded)
	assert.Zero(t, summary.Skipped())

	assert.Equal(t, 1, f.dims.calls)
	assert.Equal(t, 1, f.facts.calls)
	assert.Equal(t, 1, f.runs.began)
	assert.Equal(t, 1, f.runs.completed)
	assert.Zero(t, f.runs.failed)

	// The transformed dimension rows and the fact batch flow through.
	require.Len(t, f.dims.gotExams, 1)
	assert.Equal(t, "Algebra", f.dims.gotExams[0].Title)
	require.Len(t, f.facts.gotFacts, 1)
	assert.Equal(t, int64(11), f.facts.gotFacts[0].ExamKey)
	assert.Equal(t, 50.0, f.facts.gotFacts[0].Percentage)
	require.Len(t, f.facts.gotDates, 1)
	assert.Equal(t, 20240307, f.facts.gotDates[0].DateKey)
}

func TestETLServiceExtractionFailureAborts(t *testing.T) {
	f := newServiceFixture()
	f.extractor.submissionsErr = assert.AnError

	_, err := f.service().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExtract, apperrors.Code(err))

	assert.Zero(t, f.dims.calls)
	assert.Zero(t, f.facts.calls)
	assert.Equal(t, 1, f.runs.failed)
}

func TestETLServiceDimensionFailureSkipsFactLoad(t *testing.T) {
	f := newServiceFixture()
	f.dims.err = assert.AnError

	_, err := f.service().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDimensionLoad, apperrors.Code(err))

	assert.Equal(t, 1, f.dims.calls)
	assert.Zero(t, f.facts.calls)
	assert.Equal(t, 1, f.runs.failed)
}

func TestETLServiceFactFailureAfterDimensionCommit(t *testing.T) {
	f := newServiceFixture()
	f.facts.err = assert.AnError

	_, err := f.service().Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFactLoad, apperrors.Code(err))

	// Dimensions committed in their own boundary and stand.
	assert.Equal(t, 1, f.dims.calls)
	assert.Equal(t, 1, f.runs.failed)
	assert.Zero(t, f.runs.completed)
}

func TestETLServiceCountsSkippedSubmissions(t *testing.T) {
	f := newServiceFixture()
	orphan := models.SubmissionDocument{
		ID:      primitive.NewObjectID(),
		Exam:    primitive.NewObjectID(),
		Student: primitive.NewObjectID(),
	}
	f.extractor.submissions = append(f.extractor.submissions, orphan)

	summary, err := f.service().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SubmissionsExtracted)
	assert.Equal(t, 1, summary.FactsBuilt)
	assert.Equal(t, 1, summary.SkippedMissingExam)
	assert.Equal(t, 1, summary.Skipped())
}
