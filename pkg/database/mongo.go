package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/exam-dw-etl/pkg/config"
	apperrors "github.com/noah-isme/exam-dw-etl/pkg/errors"
)

// NewMongo connects to the operational source store and verifies the
// connection with a ping. The caller owns the returned client and must
// disconnect it when the run finishes.
func NewMongo(ctx context.Context, cfg config.SourceConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeSourceConn, "open source connection")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, apperrors.Wrap(err, apperrors.CodeSourceConn,
			fmt.Sprintf("source store unreachable at %s; check that MongoDB is running and MONGO_URI is correct", cfg.URI))
	}

	return client, client.Database(cfg.Database), nil
}
