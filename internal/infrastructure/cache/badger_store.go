package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/pkg/filesystem"
	"github.com/doeshing/reelai/internal/ports"
)

// BadgerStore persists entries in an embedded badger database using native
// per-entry TTL.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the database at dir. An empty dir opens
// ~/.reelai/cache/badger.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	if dir == "" {
		dir = filesystem.AppDir("cache", "badger")
	}
	dir = filesystem.ExpandHome(dir)
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// NewInMemoryBadgerStore opens a non-persistent database, used by tests.
func NewInMemoryBadgerStore() (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.CacheStoreError{Op: "get", Key: key, Err: err}
	}
	return value, true, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(ttl))
	})
	if err != nil {
		return &domain.CacheStoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return &domain.CacheStoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ ports.CacheStore = (*BadgerStore)(nil)
