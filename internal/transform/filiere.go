package transform

import (
	"strings"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

// FiliereRow normalises one raw filiere document into a dim_filiere row.
// Codes are upper-cased; a zero or missing duration maps to NULL.
func FiliereRow(doc models.FiliereDocument) models.DimFiliere {
	var duration *int
	if doc.Duration != 0 {
		d := int(doc.Duration)
		duration = &d
	}

	return models.DimFiliere{
		FiliereID:   doc.ID.Hex(),
		Name:        strings.TrimSpace(doc.Name),
		Code:        strings.ToUpper(strings.TrimSpace(doc.Code)),
		Description: doc.Description,
		Duration:    duration,
	}
}

// FiliereRows transforms a batch of filiere documents preserving source
// order.
func FiliereRows(docs []models.FiliereDocument) []models.DimFiliere {
	rows := make([]models.DimFiliere, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, FiliereRow(doc))
	}
	return rows
}
