package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/reelai/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateProviders(cfg); err != nil {
		return err
	}
	if err := validateServer(cfg.Server); err != nil {
		return err
	}
	if err := validateLog(cfg.Log); err != nil {
		return err
	}
	if err := validateCache(cfg.Cache); err != nil {
		return err
	}
	if err := validateTMDB(cfg.TMDB); err != nil {
		return err
	}
	if cfg.Enrich.Concurrency < 0 {
		return fmt.Errorf("enrich.concurrency must be >= 0")
	}
	return nil
}

func validateProviders(cfg domain.Config) error {
	if len(cfg.Providers) == 0 {
		return errors.New("at least one provider must be configured")
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	for i, p := range cfg.Providers {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("providers[%d].name must be set", i)
		}
		if p.Kind != "" && !knownKind(p.Kind) {
			return fmt.Errorf("provider %s: unknown kind %q", p.Name, p.Kind)
		}
		if p.Timeout < 0 {
			return fmt.Errorf("provider %s: timeout must be >= 0", p.Name)
		}
		if p.MaxTokens < 0 || p.Limit < 0 {
			return fmt.Errorf("provider %s: max_tokens and limit must be >= 0", p.Name)
		}
		if p.ResolvedKind() != domain.ProviderHeuristic && p.ResolvedKind() != domain.ProviderOllama && p.AuthEnvVar == "" {
			return fmt.Errorf("provider %s: auth_env_var must be set", p.Name)
		}
	}
	return nil
}

func validateServer(server domain.ServerSettings) error {
	if strings.TrimSpace(server.Addr) == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if server.RateLimitRequests < 0 {
		return fmt.Errorf("server.rate_limit_requests must be >= 0")
	}
	if server.RateLimitRequests > 0 && server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be > 0 when rate limiting is on")
	}
	return nil
}

func validateLog(log domain.LogSettings) error {
	switch strings.ToLower(log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be json|console, got %s", log.Format)
	}
	switch strings.ToLower(log.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("log.level %q is not a known level", log.Level)
	}
	return nil
}

func validateCache(cache domain.CacheSettings) error {
	switch cache.Backend {
	case "", domain.CacheBackendMemory, domain.CacheBackendBadger, domain.CacheBackendSQLite, domain.CacheBackendFile:
	default:
		return fmt.Errorf("cache.backend must be memory|badger|sqlite|file, got %s", cache.Backend)
	}
	if cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0")
	}
	ttls := map[string]time.Duration{
		"cache.mood_ttl":         cache.MoodTTL,
		"cache.discover_ttl":     cache.DiscoverTTL,
		"cache.blend_ttl":        cache.BlendTTL,
		"cache.watchlist_ttl":    cache.WatchlistTTL,
		"cache.compute_timeout":  cache.ComputeTimeout,
		"cache.janitor_interval": cache.JanitorInterval,
	}
	for name, value := range ttls {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	return nil
}

func validateTMDB(tmdb domain.TMDBSettings) error {
	if tmdb.RequestsPerSecond < 0 || tmdb.Burst < 0 {
		return fmt.Errorf("tmdb.requests_per_second and tmdb.burst must be >= 0")
	}
	if tmdb.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must be >= 0")
	}
	return nil
}

func knownKind(kind domain.ProviderKind) bool {
	for _, k := range domain.KnownProviderKinds {
		if strings.EqualFold(string(k), string(kind)) {
			return true
		}
	}
	return false
}
