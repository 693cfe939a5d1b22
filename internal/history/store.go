// Package history keeps a SQLite log of processed tracks so that finished
// downloads can be skipped on later runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/ytget/musicdl/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultDBFile is created inside the cache directory
const DefaultDBFile = "history.sqlite3"

const errStoreNil = "history store is nil"

// ErrNotFound is returned when no matching entry exists
var ErrNotFound = errors.New("history entry not found")

// Entry is one processed track
type Entry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	QueryKey  string `gorm:"index:idx_query_key"`
	Query     string
	Artist    string
	Title     string
	Album     string
	URL       string `gorm:"index:idx_url"`
	FilePath  string
	Status    string `gorm:"index:idx_status"`
	Error     string
	FileSize  int64
	Duration  float64
	CreatedAt time.Time
}

// Store persists history entries with gorm
type Store struct {
	DB *gorm.DB
	db *sql.DB
}

// DefaultPath returns the history database path inside cacheDir
func DefaultPath(cacheDir string) string {
	return filepath.Join(cacheDir, DefaultDBFile)
}

// Open opens or creates the history database at dbPath
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	// SQLite allows a single writer; workers share one connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{DB: db, db: sqlDB}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func queryKey(query string) string {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == strings.ToLower(model.PlaceholderTitle) {
		return ""
	}
	return key
}

// searchKey is the query key of a track resolved by search. Tracks given as
// URLs have none and are only matched by URL.
func searchKey(t *model.Track) string {
	if t.SourceURL != "" || t.HasPlaceholderTitle() {
		return ""
	}
	return queryKey(t.Query)
}

// Record stores the current state of a track
func (s *Store) Record(ctx context.Context, t *model.Track) error {
	if s == nil || s.DB == nil {
		return errors.New(errStoreNil)
	}
	entry := Entry{
		QueryKey: searchKey(t),
		Query:    t.Query,
		Artist:   t.Artist,
		Title:    t.Title,
		Album:    t.Album,
		URL:      t.URL,
		FilePath: t.ResultPath,
		Status:   t.Status.String(),
		Error:    t.Error,
		FileSize: t.FileSize,
		Duration: t.Duration,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// FindCompleted returns the newest finished download for query or url. An
// empty or placeholder query matches by url only.
func (s *Store) FindCompleted(ctx context.Context, query, url string) (*Entry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New(errStoreNil)
	}

	tx := s.DB.WithContext(ctx).Where("status = ?", model.TrackStatusDone.String())
	key := queryKey(query)
	switch {
	case key != "" && url != "":
		tx = tx.Where("query_key = ? OR url = ?", key, url)
	case key != "":
		tx = tx.Where("query_key = ?", key)
	case url != "":
		tx = tx.Where("url = ?", url)
	default:
		return nil, ErrNotFound
	}

	var entry Entry
	err := tx.Order("created_at DESC, id DESC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return &entry, nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New(errStoreNil)
	}
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	if err := s.DB.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}
