// Package cache keeps minified output in a SQLite database so unchanged
// files are not minified again.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/benzoXdev/uglifyphp/internal/engine"
)

// AppName is the directory name used under the XDG cache home.
const AppName = "uglifyphp"

// FileName is the database file inside the cache directory.
const FileName = "cache.db"

// DefaultDir returns the XDG cache directory for uglifyphp.
// On Linux: ~/.cache/uglifyphp
// On macOS: ~/Library/Caches/uglifyphp
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

var _ engine.ResultCache = (*Store)(nil)

// Store maps cache keys (see engine.CacheKey) to minified code.
// It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the cache database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	path := filepath.Join(dir, FileName)
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, path: path, now: time.Now}
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS results (
		key TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		used_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_used_at ON results(used_at);
	`)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached code for key and marks the entry as used.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var code string
	err := s.db.QueryRowContext(ctx, "SELECT code FROM results WHERE key = ?", key).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE results SET used_at = ? WHERE key = ?", s.now().UnixNano(), key); err != nil {
		return "", false, fmt.Errorf("failed to touch cache entry: %w", err)
	}
	return code, true, nil
}

// Put stores code under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key, code string) error {
	now := s.now().UnixNano()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (key, code, size, created_at, used_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET code = excluded.code, size = excluded.size, used_at = excluded.used_at
	`, key, code, len(code), now, now)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Prune removes entries not used within olderThan and returns how many
// were removed. Zero removes everything.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UnixNano()
	res, err := s.db.ExecContext(ctx, "DELETE FROM results WHERE used_at <= ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Stats describes the cache contents.
type Stats struct {
	Entries int
	Bytes   int64
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(size), 0) FROM results").Scan(&st.Entries, &st.Bytes)
	if err != nil {
		return st, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
