package transform

import (
	"strings"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

// StudentRow normalises one raw student document into a dim_student row.
// The full name derives from first+last name, falling back to the
// username when both are blank.
func StudentRow(doc models.StudentDocument) models.DimStudent {
	info := doc.StudentInfo

	firstName := strings.TrimSpace(info.FirstName)
	lastName := strings.TrimSpace(info.LastName)

	fullName := strings.TrimSpace(firstName + " " + lastName)
	if fullName == "" {
		fullName = doc.Username
	}

	return models.DimStudent{
		StudentID:      doc.ID.Hex(),
		Username:       strings.TrimSpace(doc.Username),
		Email:          strings.ToLower(strings.TrimSpace(doc.Email)),
		FirstName:      nullableString(firstName),
		LastName:       nullableString(lastName),
		FullName:       fullName,
		EnrollmentDate: info.EnrollmentDate.Ptr(),
		StudentNumber:  nullableString(strings.TrimSpace(info.StudentNumber)),
	}
}

// StudentRows transforms a batch of student documents preserving source
// order.
func StudentRows(docs []models.StudentDocument) []models.DimStudent {
	rows := make([]models.DimStudent, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, StudentRow(doc))
	}
	return rows
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
