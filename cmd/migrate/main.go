package main

import (
	"fmt"
	"log"
	"os"

	"github.com/noah-isme/exam-dw-etl/migrations"
	"github.com/noah-isme/exam-dw-etl/pkg/config"
	"github.com/noah-isme/exam-dw-etl/pkg/database"
	"github.com/noah-isme/exam-dw-etl/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
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

	db, err := database.NewPostgres(cfg.Warehouse)
	if err != nil {
		return err
	}
	defer db.Close()

	logr.Info("applying warehouse schema", zap.String("database", cfg.Warehouse.Name))
	if _, err := db.Exec(migrations.Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var tables []string
	if err := db.Select(&tables, `SELECT table_name FROM information_schema.tables
        WHERE table_schema = 'public' ORDER BY table_name`); err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for _, table := range tables {
		fmt.Printf("  %s\n", table)
	}
	fmt.Printf("schema applied: %d tables\n", len(tables))
	return nil
}
