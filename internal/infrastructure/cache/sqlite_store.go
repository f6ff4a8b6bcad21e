package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/pkg/filesystem"
	"github.com/doeshing/reelai/internal/ports"
)

// SQLiteStore persists entries in a SQLite table keyed by cache key.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteStore creates (or opens) the database at path. An empty path opens
// ~/.reelai/cache/cache.db; ":memory:" opens a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = filesystem.AppDir("cache", "cache.db")
	}
	if path != ":memory:" {
		path = filesystem.ExpandHome(path)
		if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" coherent and serializes writers.
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db, path: path, now: time.Now}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_entries_expires ON cache_entries(expires_at);`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.CacheStoreError{Op: "get", Key: key, Err: err}
	}
	if s.now().UnixNano() > expiresAt {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ? AND expires_at = ?`, key, expiresAt)
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, s.now().Add(ttl).UnixNano(),
	)
	if err != nil {
		return &domain.CacheStoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return &domain.CacheStoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Sweep removes every expired row.
func (s *SQLiteStore) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at < ?`, s.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

var _ ports.CacheStore = (*SQLiteStore)(nil)
