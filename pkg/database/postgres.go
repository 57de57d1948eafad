package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/exam-dw-etl/pkg/config"
	apperrors "github.com/noah-isme/exam-dw-etl/pkg/errors"
)

// NewPostgres returns a configured warehouse client. The connection is
// pinged before returning so that an unreachable warehouse fails the run
// up front instead of midway through a load.
func NewPostgres(cfg config.WarehouseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeWarehouseConn, "open warehouse connection")
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeWarehouseConn,
			fmt.Sprintf("warehouse unreachable at %s:%d; check that PostgreSQL is running, the %q database exists and the PG_* credentials are correct", cfg.Host, cfg.Port, cfg.Name))
	}

	return db, nil
}
