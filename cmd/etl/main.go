package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/exam-dw-etl/internal/extract"
	"github.com/noah-isme/exam-dw-etl/internal/repository"
	"github.com/noah-isme/exam-dw-etl/internal/service"
	"github.com/noah-isme/exam-dw-etl/pkg/config"
	"github.com/noah-isme/exam-dw-etl/pkg/database"
	"github.com/noah-isme/exam-dw-etl/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "etl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	mongoClient, sourceDB, err := database.NewMongo(ctx, cfg.Source)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(ctx) //nolint:errcheck

	warehouse, err := database.NewPostgres(cfg.Warehouse)
	if err != nil {
		return err
	}
	defer warehouse.Close()

	etl := service.NewETLService(
		extract.NewExtractor(sourceDB, logr),
		repository.NewDimensionRepository(warehouse),
		repository.NewFactRepository(warehouse),
		repository.NewRunRepository(warehouse),
		service.NewMetricsService(),
		logr,
	)

	summary, err := etl.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	fmt.Printf("  extracted: %d exams, %d students, %d filieres, %d submissions\n",
		summary.ExamsExtracted, summary.StudentsExtracted,
		summary.FilieresExtracted, summary.SubmissionsExtracted)
	fmt.Printf("  facts: %d built, %d inserted, %d skipped (exam=%d student=%d filiere=%d)\n",
		summary.FactsBuilt, summary.FactsLoaded, summary.Skipped(),
		summary.SkippedMissingExam, summary.SkippedMissingStudent, summary.SkippedMissingFiliere)
	return nil
}
