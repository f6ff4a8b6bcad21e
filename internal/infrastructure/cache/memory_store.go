// Package cache provides the ports.CacheStore backends.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/doeshing/reelai/internal/ports"
)

type memItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local TTL map. Expired keys are dropped lazily on
// read and by the janitor sweep.
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]memItem
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates an empty store. maxEntries <= 0 disables the cap.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]memItem),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.now().After(item.expiresAt) {
		s.mu.Lock()
		if cur, still := s.items[key]; still && cur.expiresAt.Equal(item.expiresAt) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return item.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = memItem{value: buf, expiresAt: s.now().Add(ttl)}
	if s.maxEntries > 0 && len(s.items) > s.maxEntries {
		s.sweepLocked()
		for len(s.items) > s.maxEntries {
			s.evictSoonestLocked()
		}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.items = make(map[string]memItem)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored keys, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep drops every expired key and returns how many were removed.
func (s *MemoryStore) Sweep(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.sweepLocked()), nil
}

func (s *MemoryStore) sweepLocked() int {
	now := s.now()
	removed := 0
	for k, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for k, item := range s.items {
		if victim == "" || item.expiresAt.Before(soonest) {
			victim, soonest = k, item.expiresAt
		}
	}
	delete(s.items, victim)
}

var _ ports.CacheStore = (*MemoryStore)(nil)
