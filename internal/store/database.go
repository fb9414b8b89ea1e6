// Package store persists the application state.
//
// The whole state is saved as one JSON snapshot document (the engine's unit of
// consistency), while the award log is mirrored into its own table for
// reporting queries. Backed by GORM with SQLite (default single-file install)
// or PostgreSQL.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/abontemps/classquest/internal/config"
	"github.com/abontemps/classquest/pkg/logger"
)

// DB holds the database connection.
type DB struct {
	*gorm.DB
}

// NewDB opens a database connection for the configured driver.
func NewDB(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	gormLogLevel := gormlogger.Warn
	if log.GetLogger().GetLevel() == 0 { // debug
		gormLogLevel = gormlogger.Info
	}
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(PostgresDSN(&cfg.Postgres)), gormConfig)
	default:
		db, err = gorm.Open(sqlite.Open(cfg.SQLite.Path), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == "postgres" {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Msg("Connected to database")

	return &DB{db}, nil
}

// PostgresDSN builds a keyword/value DSN from the postgres config.
func PostgresDSN(cfg *config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)
}

// AutoMigrate creates the store tables. Used for the sqlite install and in
// tests; postgres deployments run the versioned migrations instead.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&Snapshot{},
		&AwardLogRecord{},
	)
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database is reachable.
func (db *DB) Health() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
