package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/pkg/filesystem"
	"github.com/doeshing/reelai/internal/ports"
)

// FileStore keeps each entry as a JSON blob addressed by the hashed key.
type FileStore struct {
	dir        string
	mu         sync.Mutex
	maxEntries int
	now        func() time.Time
}

type fileRecord struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
	Value     []byte    `json:"value"`
}

// NewFileStore returns a store rooted at dir, or ~/.reelai/cache/entries when dir is empty.
func NewFileStore(dir string, maxEntries int) (*FileStore, error) {
	if dir == "" {
		dir = filesystem.AppDir("cache", "entries")
	}
	dir = filesystem.ExpandHome(dir)
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, maxEntries: maxEntries, now: time.Now}, nil
}

// Get retrieves a live entry.
func (c *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	path := c.pathFor(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, &domain.CacheStoreError{Op: "get", Key: key, Err: err}
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = os.Remove(path)
		return nil, false, &domain.CacheStoreError{Op: "get", Key: key, Err: err}
	}
	if c.now().After(rec.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return rec.Value, true, nil
}

// Set stores value under key until ttl elapses.
func (c *FileStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	data, err := json.Marshal(fileRecord{Key: key, ExpiresAt: c.now().Add(ttl), Value: value})
	if err != nil {
		return &domain.CacheStoreError{Op: "set", Key: key, Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	tmp := c.pathFor(key) + ".tmp"
	if err := os.WriteFile(tmp, data, domain.SecureFilePermissions); err != nil {
		return &domain.CacheStoreError{Op: "set", Key: key, Err: err}
	}
	if err := os.Rename(tmp, c.pathFor(key)); err != nil {
		return &domain.CacheStoreError{Op: "set", Key: key, Err: err}
	}
	return c.evictIfNeeded()
}

// Delete removes key. Deleting a missing key is not an error.
func (c *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.pathFor(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.CacheStoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Close is a no-op.
func (c *FileStore) Close() error { return nil }

// Dir exposes the cache directory path.
func (c *FileStore) Dir() string {
	return c.dir
}

// Sweep removes expired blobs.
func (c *FileStore) Sweep(context.Context) (int64, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	now := c.now()
	var removed int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var rec fileRecord
		if err := json.Unmarshal(data, &rec); err != nil || now.After(rec.ExpiresAt) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *FileStore) pathFor(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// evictIfNeeded drops the oldest blobs by modification time (caller holds mu).
func (c *FileStore) evictIfNeeded() error {
	if c.maxEntries <= 0 {
		return nil
	}
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(files) <= c.maxEntries {
		return nil
	}
	type fileInfo struct {
		name string
		mod  time.Time
	}
	var infos []fileInfo
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{name: f.Name(), mod: info.ModTime()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].mod.Before(infos[j].mod) })
	for len(infos) > c.maxEntries {
		_ = os.Remove(filepath.Join(c.dir, infos[0].name))
		infos = infos[1:]
	}
	return nil
}

var _ ports.CacheStore = (*FileStore)(nil)
