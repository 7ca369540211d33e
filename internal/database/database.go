// Package database owns the relational store connection: opening it for the
// configured driver, creating the schema and closing it on shutdown.
package database

import (
	"context"
	"fmt"

	"jurnal/internal/config"
	"jurnal/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the store selected by cfg.DBDriver ("postgres", "mysql" or "sqlite")
// and pings it.
func Open(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	maxOpen := cfg.DBMaxOpenConns

	switch cfg.DBDriver {
	case "postgres":
		log.WithField("dsn", cfg.PostgresDSNMasked()).Info("Connecting to PostgreSQL")
		dialector = postgres.Open(cfg.PostgresDSN())
	case "mysql":
		log.WithField("dsn", cfg.MySQLDSNMasked()).Info("Connecting to MySQL")
		dialector = mysql.Open(cfg.MySQLDSN())
	case "sqlite":
		log.WithField("path", cfg.DBPath).Info("Opening SQLite database")
		dialector = sqlite.Open(cfg.DBPath)
		// SQLite serializes writers; a single connection avoids "database is locked".
		maxOpen = 1
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the users and blogs tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.BlogPost{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping reports whether the store answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
