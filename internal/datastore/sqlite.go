package datastore

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hobbydex/coverart-go/internal/conf"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// NewSQLiteStore creates a store bound to the configured database file.
func NewSQLiteStore(settings *conf.Settings) *SQLiteStore {
	return &SQLiteStore{Settings: settings}
}

// Open sets up the SQLite database connection and runs migrations.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Output.SQLite.Path
	if path == "" {
		return fmt.Errorf("sqlite path is not configured")
	}

	level := gormlogger.Silent
	if store.Settings.Debug {
		level = gormlogger.Warn
	}
	newLogger := gormlogger.Default.LogMode(level)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newLogger})
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Single-writer friendliness for a local app: serialize writes and keep
	// the busy timeout generous so concurrent audit workers don't error out.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	store.DB = db
	return performAutoMigration(db)
}
