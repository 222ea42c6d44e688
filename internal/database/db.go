package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// busyTimeoutMS is how long a statement waits on a locked database file
// before surfacing StoreBusy. Short by default; a second writer process is
// unsupported, so contention means a stale handle, not a peer.
const busyTimeoutMS = 1000

// Open initializes the embedded store at path, creating the parent
// directory if needed.
func Open(path string, log *zap.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_fk=1", path, busyTimeoutMS)
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("store ping failed: %w", err)
	}

	log.Info("store opened", zap.String("path", path))
	return db, nil
}

// EnableWAL switches the store to write-ahead logging. Maintenance routine
// for files that look lock-stuck from stale handles.
func EnableWAL(db *gorm.DB) error {
	return db.Exec("PRAGMA journal_mode=WAL").Error
}
