package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config carries every setting the pipeline needs. It is loaded once at
// startup and handed to components at construction time; nothing reads
// the environment after Load returns.
type Config struct {
	Env string `validate:"oneof=development production"`

	Source    SourceConfig
	Warehouse WarehouseConfig
	Log       LogConfig
}

// SourceConfig points at the operational MongoDB store.
type SourceConfig struct {
	URI      string `validate:"required"`
	Database string `validate:"required"`
}

// WarehouseConfig points at the PostgreSQL data warehouse.
type WarehouseConfig struct {
	Host         string `validate:"required"`
	Port         int    `validate:"gte=1,lte=65535"`
	User         string `validate:"required"`
	Password     string
	Name         string `validate:"required"`
	SSLMode      string `validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns int
	MaxIdleConns int
}

type LogConfig struct {
	Level  string
	Format string `validate:"oneof=json console"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Source = SourceConfig{
		URI:      v.GetString("MONGO_URI"),
		Database: v.GetString("MONGO_DB"),
	}

	cfg.Warehouse = WarehouseConfig{
		Host:         v.GetString("PG_HOST"),
		Port:         v.GetInt("PG_PORT"),
		User:         v.GetString("PG_USER"),
		Password:     v.GetString("PG_PASSWORD"),
		Name:         v.GetString("PG_DB"),
		SSLMode:      v.GetString("PG_SSL_MODE"),
		MaxOpenConns: v.GetInt("PG_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("PG_MAX_IDLE_CONNS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "exam_platform")

	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_USER", "postgres")
	v.SetDefault("PG_PASSWORD", "postgres")
	v.SetDefault("PG_DB", "datawarehouse")
	v.SetDefault("PG_SSL_MODE", "disable")
	v.SetDefault("PG_MAX_OPEN_CONNS", 10)
	v.SetDefault("PG_MAX_IDLE_CONNS", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}
