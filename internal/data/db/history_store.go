package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const historyDBFile = "history.db"

// HistoryStore persists diagnosis results in SQLite using GORM.
type HistoryStore struct {
	db     *gorm.DB
	dbPath string
	mu     sync.Mutex
}

// NewHistoryStore creates or loads the diagnosis history database under
// baseDir.
func NewHistoryStore(baseDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, historyDBFile)
	dsn := dbPath + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &HistoryStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := db.AutoMigrate(&DiagnosisRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return store, nil
}

// Record saves one diagnosis result.
func (hs *HistoryStore) Record(record *DiagnosisRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	hs.mu.Lock()
	defer hs.mu.Unlock()

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return hs.db.Create(record).Error
}

// Recent returns the latest records, newest first.
func (hs *HistoryStore) Recent(limit int) ([]DiagnosisRecord, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	var records []DiagnosisRecord
	err := hs.db.Order("created_at DESC, id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return records, nil
}

// ForBaseURL returns records for one base URL, newest first.
func (hs *HistoryStore) ForBaseURL(baseURL string, limit int) ([]DiagnosisRecord, error) {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	var records []DiagnosisRecord
	err := hs.db.Where("base_url = ?", baseURL).
		Order("created_at DESC, id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return records, nil
}

// Close closes the underlying database connection.
func (hs *HistoryStore) Close() error {
	sqlDB, err := hs.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
