package transform

import (
	"strings"
	"time"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

// Default applied when the source omits a minimum passing score.
const defaultMinPassingScore = 50

// ExamRow normalises one raw exam document into a dim_exam row. Missing
// optional fields fall back to defaults; the function never fails.
func ExamRow(doc models.ExamDocument, now time.Time) models.DimExam {
	minScore := defaultMinPassingScore * 1.0
	if doc.MinPassingScore != nil {
		minScore = *doc.MinPassingScore
	}

	return models.DimExam{
		ExamID:          doc.ID.Hex(),
		Title:           strings.TrimSpace(doc.Title),
		Description:     doc.Description,
		TotalPoints:     doc.TotalPoints,
		MinPassingScore: minScore,
		Duration:        int(doc.Duration),
		IsPublished:     doc.IsPublished,
		PublishedDate:   doc.PublishedAt.Ptr(),
		CreatedDate:     doc.CreatedAt.Or(now),
		UpdatedDate:     doc.UpdatedAt.Ptr(),
	}
}

// ExamRows transforms a batch of exam documents preserving source order.
func ExamRows(docs []models.ExamDocument, now time.Time) []models.DimExam {
	rows := make([]models.DimExam, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, ExamRow(doc, now))
	}
	return rows
}
