package recommend

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/metrics"
	"github.com/doeshing/reelai/internal/ports"
)

// storeWriteTimeout bounds the cache write after a computation finished.
const storeWriteTimeout = 5 * time.Second

// Cacheable values report emptiness; empty values are returned but never stored.
type Cacheable interface {
	Empty() bool
}

// Producer computes a fresh value for a cache miss.
type Producer[T Cacheable] func(ctx context.Context) (T, error)

// Loader is a cache-aside layer that runs at most one producer per key at a
// time. Concurrent misses for the same key share the in-flight computation.
// Store failures degrade to a miss on read and are only logged on write.
type Loader[T Cacheable] struct {
	store          ports.CacheStore
	logger         ports.Logger
	computeTimeout time.Duration
	group          singleflight.Group
	now            func() time.Time
}

// NewLoader creates a loader over store. computeTimeout bounds each shared
// computation independently of the callers waiting on it.
func NewLoader[T Cacheable](store ports.CacheStore, logger ports.Logger, computeTimeout time.Duration) *Loader[T] {
	if computeTimeout <= 0 {
		computeTimeout = domain.DefaultComputeTimeout
	}
	return &Loader[T]{
		store:          store,
		logger:         logger,
		computeTimeout: computeTimeout,
		now:            time.Now,
	}
}

// GetCached returns the live cached value for key or computes, stores and
// returns a fresh one. If ctx ends first the caller gets ctx.Err() while the
// shared computation keeps running for the remaining waiters.
func (l *Loader[T]) GetCached(ctx context.Context, key string, ttl time.Duration, producer Producer[T]) (T, error) {
	var zero T
	ns := namespaceOf(key)

	if value, ok := l.lookup(ctx, key); ok {
		metrics.RecordCacheLookup(ns, metrics.CacheHit)
		return value, nil
	}
	metrics.RecordCacheLookup(ns, metrics.CacheMiss)

	// Shared is true for the leader too. led is written before the result
	// is delivered on ch.
	var led bool
	ch := l.group.DoChan(key, func() (interface{}, error) {
		led = true
		return l.compute(ctx, key, ttl, producer)
	})

	select {
	case res := <-ch:
		if res.Shared && !led {
			metrics.RecordCoalesced(ns)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Peek reads key without computing anything.
func (l *Loader[T]) Peek(ctx context.Context, key string) (domain.CacheEntry[T], bool, error) {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil || !ok {
		return domain.CacheEntry[T]{}, false, err
	}
	var entry domain.CacheEntry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.CacheEntry[T]{}, false, &domain.CacheStoreError{Op: "decode", Key: key, Err: err}
	}
	if entry.Expired(l.now()) {
		return domain.CacheEntry[T]{}, false, nil
	}
	return entry, true, nil
}

// Invalidate removes key so the next request recomputes it. A computation
// already in flight is not interrupted and may store its result afterwards.
func (l *Loader[T]) Invalidate(ctx context.Context, key string) error {
	if err := l.store.Delete(ctx, key); err != nil {
		return &domain.CacheStoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (l *Loader[T]) compute(parent context.Context, key string, ttl time.Duration, producer Producer[T]) (interface{}, error) {
	ns := namespaceOf(key)

	// Another flight may have stored the key between our miss and this call.
	if value, ok := l.lookup(parent, key); ok {
		return value, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), l.computeTimeout)
	defer cancel()

	value, err := l.run(ctx, producer)
	metrics.RecordProducerRun(ns, err)
	if err != nil {
		l.logger.Warn("producer failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, err
	}

	if value.Empty() || ttl <= 0 {
		metrics.RecordCacheWrite(ns, metrics.WriteSkipped)
		return value, nil
	}

	l.write(parent, key, ttl, value)
	return value, nil
}

func (l *Loader[T]) run(ctx context.Context, producer Producer[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("producer panic: %v", r)
		}
	}()
	return producer(ctx)
}

func (l *Loader[T]) write(parent context.Context, key string, ttl time.Duration, value T) {
	ns := namespaceOf(key)
	entry := domain.CacheEntry[T]{
		Key:        key,
		Value:      value,
		StoredAt:   l.now().UTC(),
		TTLSeconds: int(math.Ceil(ttl.Seconds())),
	}
	data, err := json.Marshal(entry)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), storeWriteTimeout)
		err = l.store.Set(ctx, key, data, ttl)
		cancel()
	}
	if err != nil {
		metrics.RecordCacheWrite(ns, metrics.WriteFailed)
		l.logger.Error("cache write failed", &domain.CacheStoreError{Op: "set", Key: key, Err: err}, map[string]interface{}{
			"key": key,
		})
		return
	}
	metrics.RecordCacheWrite(ns, metrics.WriteOK)
}

// lookup treats read and decode failures as a miss.
func (l *Loader[T]) lookup(ctx context.Context, key string) (T, bool) {
	var zero T
	entry, ok, err := l.Peek(ctx, key)
	if err != nil {
		metrics.RecordCacheLookup(namespaceOf(key), metrics.CacheError)
		l.logger.Warn("cache read failed, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return zero, false
	}
	if !ok {
		return zero, false
	}
	return entry.Value, true
}
