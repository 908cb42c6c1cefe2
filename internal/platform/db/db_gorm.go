// Package db opens the shared GORM connection and migrates the schema.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipebook/internal/config"
)

// connectTimeout bounds the retry loop for network databases.
const connectTimeout = 60 * time.Second

// OpenDB opens the database selected by cfg and migrates the given models.
// The returned handle is shared by every repository for the process lifetime.
func OpenDB(cfg *config.Config, models ...any) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return OpenPostgres(cfg.DatabaseURL, models...)
	default:
		return OpenSQLite(cfg.DBPath, models...)
	}
}

// OpenSQLite opens a SQLite database at path (":memory:" works for tests).
// The pool is limited to one connection so that all requests share and
// serialize on a single SQLite connection.
func OpenSQLite(path string, models ...any) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db, models...); err != nil {
		return nil, err
	}
	slog.Info("using sqlite", "path", path)
	return db, nil
}

// OpenPostgres connects to PostgreSQL, retrying until connectTimeout passes.
func OpenPostgres(dsn string, models ...any) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(connectTimeout)
	for {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("postgres connect failed after %s: %w", connectTimeout, err)
		}
		slog.Warn("postgres connect failed, retrying", "error", err)
		time.Sleep(3 * time.Second)
	}

	if err := migrate(db, models...); err != nil {
		return nil, err
	}
	slog.Info("using postgres")
	return db, nil
}

// migrate creates missing tables and columns. It is safe to run on every start.
func migrate(db *gorm.DB, models ...any) error {
	if len(models) == 0 {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
