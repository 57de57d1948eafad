package extract

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-dw-etl/internal/models"
)

// Source collection names in the operational store.
const (
	collectionExams       = "exams"
	collectionSubmissions = "examsubmissions"
	collectionUsers       = "users"
	collectionFilieres    = "filieres"
)

// Extractor reads raw documents from the operational MongoDB store. It is
// an opaque supplier of the current full record sets; no incremental
// cursoring is done, every run reads everything.
type Extractor struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewExtractor constructs an Extractor over the given source database.
func NewExtractor(db *mongo.Database, logger *zap.Logger) *Extractor {
	return &Extractor{db: db, logger: logger}
}

// Exams returns every exam document.
func (e *Extractor) Exams(ctx context.Context) ([]models.ExamDocument, error) {
	var docs []models.ExamDocument
	if err := e.find(ctx, collectionExams, bson.M{}, &docs); err != nil {
		return nil, err
	}
	e.logger.Info("extracted exams", zap.Int("count", len(docs)))
	return docs, nil
}

// Submissions returns every submitted exam submission. Drafts
// (isSubmitted=false) never enter the pipeline.
func (e *Extractor) Submissions(ctx context.Context) ([]models.SubmissionDocument, error) {
	var docs []models.SubmissionDocument
	if err := e.find(ctx, collectionSubmissions, bson.M{"isSubmitted": true}, &docs); err != nil {
		return nil, err
	}
	e.logger.Info("extracted submissions", zap.Int("count", len(docs)))
	return docs, nil
}

// Students returns every user with the student role.
func (e *Extractor) Students(ctx context.Context) ([]models.StudentDocument, error) {
	var docs []models.StudentDocument
	if err := e.find(ctx, collectionUsers, bson.M{"role": "student"}, &docs); err != nil {
		return nil, err
	}
	e.logger.Info("extracted students", zap.Int("count", len(docs)))
	return docs, nil
}

// Filieres returns every filiere document.
func (e *Extractor) Filieres(ctx context.Context) ([]models.FiliereDocument, error) {
	var docs []models.FiliereDocument
	if err := e.find(ctx, collectionFilieres, bson.M{}, &docs); err != nil {
		return nil, err
	}
	e.logger.Info("extracted filieres", zap.Int("count", len(docs)))
	return docs, nil
}

func (e *Extractor) find(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	cursor, err := e.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}
