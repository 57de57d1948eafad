// Command verify prints a read-only consistency report comparing the
// operational source store with the warehouse. It never writes to either
// side and is safe to run at any time.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/noah-isme/exam-dw-etl/pkg/config"
	"github.com/noah-isme/exam-dw-etl/pkg/database"
	"github.com/noah-isme/exam-dw-etl/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
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

	fmt.Println("source store")
	sourceCounts := []struct {
		label      string
		collection string
		filter     bson.M
	}{
		{"exams", "exams", bson.M{}},
		{"submitted submissions", "examsubmissions", bson.M{"isSubmitted": true}},
		{"students", "users", bson.M{"role": "student"}},
		{"filieres", "filieres", bson.M{}},
	}
	for _, c := range sourceCounts {
		n, err := sourceDB.Collection(c.collection).CountDocuments(ctx, c.filter)
		if err != nil {
			return fmt.Errorf("count %s: %w", c.collection, err)
		}
		fmt.Printf("  %-22s %d\n", c.label, n)
	}

	fmt.Println("warehouse")
	for _, table := range []string{"dim_exam", "dim_student", "dim_filiere", "dim_date", "fact_exam_results"} {
		var n int64
		if err := warehouse.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Printf("  %-22s %d\n", table, n)
	}

	var stats struct {
		Total  int64    `db:"total"`
		Passed int64    `db:"passed_count"`
		Failed int64    `db:"failed_count"`
		AvgPct *float64 `db:"avg_percentage"`
	}
	if err := warehouse.GetContext(ctx, &stats, `SELECT
            COUNT(*) AS total,
            COUNT(*) FILTER (WHERE passed) AS passed_count,
            COUNT(*) FILTER (WHERE NOT passed) AS failed_count,
            AVG(percentage) AS avg_percentage
        FROM fact_exam_results`); err != nil {
		return fmt.Errorf("fact statistics: %w", err)
	}
	fmt.Println("fact statistics")
	fmt.Printf("  passed                 %d\n", stats.Passed)
	fmt.Printf("  failed                 %d\n", stats.Failed)
	if stats.Total > 0 {
		fmt.Printf("  failure rate           %.2f%%\n", float64(stats.Failed)/float64(stats.Total)*100)
	}
	if stats.AvgPct != nil {
		fmt.Printf("  average percentage     %.2f\n", *stats.AvgPct)
	}

	// Every fact must resolve to exactly one row in each dimension; the
	// foreign keys enforce this, so any hit here means schema drift.
	var orphans int64
	if err := warehouse.GetContext(ctx, &orphans, `SELECT COUNT(*)
        FROM fact_exam_results f
        LEFT JOIN dim_exam e ON e.exam_key = f.exam_key
        LEFT JOIN dim_student s ON s.student_key = f.student_key
        LEFT JOIN dim_filiere fl ON fl.filiere_key = f.filiere_key
        LEFT JOIN dim_date d ON d.date_key = f.date_key
        WHERE e.exam_key IS NULL OR s.student_key IS NULL
           OR fl.filiere_key IS NULL OR d.date_key IS NULL`); err != nil {
		return fmt.Errorf("referential check: %w", err)
	}
	if orphans > 0 {
		fmt.Printf("referential check: %d orphaned facts\n", orphans)
	} else {
		fmt.Println("referential check: ok")
	}

	return nil
}
