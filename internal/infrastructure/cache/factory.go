package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

// Sweeper is implemented by stores whose expired entries need active removal.
type Sweeper interface {
	Sweep(context.Context) (int64, error)
}

// New builds the store selected by settings.Backend.
func New(settings domain.CacheSettings) (ports.CacheStore, error) {
	switch strings.ToLower(settings.Backend) {
	case "", domain.CacheBackendMemory:
		return NewMemoryStore(settings.MaxEntries), nil
	case domain.CacheBackendBadger:
		return NewBadgerStore(settings.Path)
	case domain.CacheBackendSQLite:
		return NewSQLiteStore(settings.Path)
	case domain.CacheBackendFile:
		return NewFileStore(settings.Path, settings.MaxEntries)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", settings.Backend)
	}
}

// Janitor periodically sweeps a store. It satisfies suture.Service.
type Janitor struct {
	sweeper  Sweeper
	interval time.Duration
	logger   ports.Logger
}

// NewJanitor returns a janitor when store supports sweeping. Badger expires
// entries natively and gets none.
func NewJanitor(store ports.CacheStore, interval time.Duration, logger ports.Logger) (*Janitor, bool) {
	sweeper, ok := store.(Sweeper)
	if !ok {
		return nil, false
	}
	if interval <= 0 {
		interval = domain.DefaultJanitorInterval
	}
	return &Janitor{sweeper: sweeper, interval: interval, logger: logger}, true
}

// Serve sweeps every interval until ctx is done.
func (j *Janitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := j.sweeper.Sweep(ctx)
			if err != nil {
				j.logger.Warn("cache sweep failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			if removed > 0 {
				j.logger.Debug("cache sweep", map[string]interface{}{"removed": removed})
			}
		}
	}
}

func (j *Janitor) String() string { return "cache-janitor" }
