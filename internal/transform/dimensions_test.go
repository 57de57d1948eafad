package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

func TestExamRowDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := models.ExamDocument{ID: primitive.NewObjectID(), Title: "  Final Exam  "}

	row := ExamRow(doc, now)

	assert.Equal(t, doc.ID.Hex(), row.ExamID)
	assert.Equal(t, "Final Exam", row.Title)
	assert.Equal(t, float64(0), row.TotalPoints)
	assert.Equal(t, float64(50), row.MinPassingScore)
	assert.Equal(t, 0, row.Duration)
	assert.False(t, row.IsPublished)
	assert.Nil(t, row.PublishedDate)
	assert.Equal(t, now, row.CreatedDate)
	assert.Nil(t, row.UpdatedDate)
}

func TestExamRowKeepsSourceValues(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
	minScore := 60.0
	doc := models.ExamDocument{
		ID:              primitive.NewObjectID(),
		Title:           "Algebra",
		Description:     "Mid-term",
		TotalPoints:     100,
		MinPassingScore: &minScore,
		Duration:        90,
		IsPublished:     true,
		CreatedAt:       models.NewFlexTime(created),
	}

	row := ExamRow(doc, now)

	assert.Equal(t, 100.0, row.TotalPoints)
	assert.Equal(t, 60.0, row.MinPassingScore)
	assert.Equal(t, 90, row.Duration)
	assert.True(t, row.IsPublished)
	assert.Equal(t, created, row.CreatedDate)
}

func TestStudentRowNormalisation(t *testing.T) {
	doc := models.StudentDocument{
		ID:       primitive.NewObjectID(),
		Username: " jdoe ",
		Email:    "  John.Doe@Example.COM ",
		StudentInfo: models.StudentInfo{
			FirstName:     " John ",
			LastName:      " Doe ",
			StudentNumber: "S-1024",
		},
	}

	row := StudentRow(doc)

	assert.Equal(t, "jdoe", row.Username)
	assert.Equal(t, "john.doe@example.com", row.Email)
	require.NotNil(t, row.FirstName)
	require.NotNil(t, row.LastName)
	assert.Equal(t, "John", *row.FirstName)
	assert.Equal(t, "Doe", *row.LastName)
	assert.Equal(t, "John Doe", row.FullName)
	require.NotNil(t, row.StudentNumber)
	assert.Equal(t, "S-1024", *row.StudentNumber)
	assert.Nil(t, row.EnrollmentDate)
}

func TestStudentRowFullNameFallsBackToUsername(t *testing.T) {
	doc := models.StudentDocument{ID: primitive.NewObjectID(), Username: "jdoe"}

	row := StudentRow(doc)

	assert.Equal(t, "jdoe", row.FullName)
	assert.Nil(t, row.FirstName)
	assert.Nil(t, row.LastName)
}

func TestStudentRowFirstNameOnly(t *testing.T) {
	doc := models.StudentDocument{
		ID:          primitive.NewObjectID(),
		Username:    "jdoe",
		StudentInfo: models.StudentInfo{FirstName: "John"},
	}

	row := StudentRow(doc)

	assert.Equal(t, "John", row.FullName)
}

func TestFiliereRowNormalisation(t *testing.T) {
	doc := models.FiliereDocument{
		ID:          primitive.NewObjectID(),
		Name:        " Informatique ",
		Code:        " gi ",
		Description: "Génie informatique",
		Duration:    3,
	}

	row := FiliereRow(doc)

	assert.Equal(t, "Informatique", row.Name)
	assert.Equal(t, "GI", row.Code)
	require.NotNil(t, row.Duration)
	assert.Equal(t, 3, *row.Duration)
}

func TestFiliereRowZeroDurationIsNull(t *testing.T) {
	row := FiliereRow(models.FiliereDocument{ID: primitive.NewObjectID(), Code: "gc"})

	assert.Nil(t, row.Duration)
	assert.Equal(t, "GC", row.Code)
}
