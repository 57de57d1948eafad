package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExamDocument mirrors a document from the `exams` collection. Optional
// fields are pointers or flexible types so a sparse document never fails
// to decode.
type ExamDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	TotalPoints     float64            `bson:"totalPoints"`
	MinPassingScore *float64           `bson:"minPassingScore"`
	Duration        float64            `bson:"duration"`
	IsPublished     bool               `bson:"isPublished"`
	PublishedAt     FlexTime           `bson:"publishedAt"`
	CreatedAt       FlexTime           `bson:"createdAt"`
	UpdatedAt       FlexTime           `bson:"updatedAt"`
}

// StudentDocument mirrors a document from the `users` collection with
// role=student.
type StudentDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Username    string             `bson:"username"`
	Email       string             `bson:"email"`
	StudentInfo StudentInfo        `bson:"studentInfo"`
}

// StudentInfo is the embedded profile object on a student user.
type StudentInfo struct {
	FirstName      string     `bson:"firstName"`
	LastName       string     `bson:"lastName"`
	EnrollmentDate FlexTime   `bson:"enrollmentDate"`
	StudentNumber  string     `bson:"studentNumber"`
	Filiere        FiliereRef `bson:"filiere"`
}

// FiliereDocument mirrors a document from the `filieres` collection.
type FiliereDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Code        string             `bson:"code"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
}

// SubmissionDocument mirrors a document from the `examsubmissions`
// collection.
type SubmissionDocument struct {
	ID                   primitive.ObjectID `bson:"_id"`
	Exam                 primitive.ObjectID `bson:"exam"`
	Student              primitive.ObjectID `bson:"student"`
	Score                float64            `bson:"score"`
	TotalPoints          float64            `bson:"totalPoints"`
	Percentage           float64            `bson:"percentage"`
	Passed               bool               `bson:"passed"`
	CertificateGenerated bool               `bson:"certificateGenerated"`
	IsSubmitted          bool               `bson:"isSubmitted"`
	StartedAt            FlexTime           `bson:"startedAt"`
	SubmittedAt          FlexTime           `bson:"submittedAt"`
	CreatedAt            FlexTime           `bson:"createdAt"`
}

// FlexTime decodes a timestamp that may arrive either as a BSON datetime
// or as an ISO-8601 string. A missing, null or unparseable value decodes
// to the zero FlexTime instead of failing the document.
type FlexTime struct {
	value *time.Time
}

// NewFlexTime wraps a concrete time, mainly for tests and fixtures.
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{value: &t}
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (ft *FlexTime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	ft.value = nil
	rv := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeDateTime:
		if v, ok := rv.TimeOK(); ok {
			u := v.UTC()
			ft.value = &u
		}
	case bson.TypeString:
		if s, ok := rv.StringValueOK(); ok {
			if parsed, ok := parseISOTime(s); ok {
				ft.value = &parsed
			}
		}
	}
	return nil
}

// Time returns the wrapped timestamp and whether one is present.
func (ft FlexTime) Time() (time.Time, bool) {
	if ft.value == nil {
		return time.Time{}, false
	}
	return *ft.value, true
}

// Ptr returns the timestamp as a nullable pointer for warehouse columns.
func (ft FlexTime) Ptr() *time.Time {
	if ft.value == nil {
		return nil
	}
	t := *ft.value
	return &t
}

// Or returns the wrapped timestamp, or the fallback when absent.
func (ft FlexTime) Or(fallback time.Time) time.Time {
	if ft.value == nil {
		return fallback
	}
	return *ft.value
}

// IsZero reports whether no timestamp is present.
func (ft FlexTime) IsZero() bool {
	return ft.value == nil
}

// parseISOTime parses an ISO-8601 string, normalising a trailing Z to an
// explicit UTC offset first.
func parseISOTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FiliereRef is the polymorphic program reference found on a student
// profile: either a bare identifier (ObjectID or string) or an embedded
// filiere document carrying an _id. Both variants normalise to a plain
// identifier through ID().
type FiliereRef struct {
	id string
}

// NewFiliereRef builds a reference from a plain identifier, for tests.
func NewFiliereRef(id string) FiliereRef {
	return FiliereRef{id: id}
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (r *FiliereRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	r.id = ""
	rv := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeObjectID:
		if oid, ok := rv.ObjectIDOK(); ok {
			r.id = oid.Hex()
		}
	case bson.TypeString:
		if s, ok := rv.StringValueOK(); ok {
			r.id = strings.TrimSpace(s)
		}
	case bson.TypeEmbeddedDocument:
		doc, ok := rv.DocumentOK()
		if !ok {
			return nil
		}
		idVal, err := doc.LookupErr("_id")
		if err != nil {
			return nil
		}
		if oid, ok := idVal.ObjectIDOK(); ok {
			r.id = oid.Hex()
		} else if s, ok := idVal.StringValueOK(); ok {
			r.id = strings.TrimSpace(s)
		}
	}
	return nil
}

// ID returns the normalised program identifier, "" when absent.
func (r FiliereRef) ID() string {
	return r.id
}

// IsZero reports whether the student carries no program reference.
func (r FiliereRef) IsZero() bool {
	return r.id == ""
}
