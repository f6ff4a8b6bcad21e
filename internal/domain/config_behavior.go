package domain

import (
	"fmt"
	"time"
)

// FindProvider searches the chain for a provider by name.
func (c *Config) FindProvider(name string) (ProviderDefinition, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderDefinition{}, false
}

// HasProvider reports whether a provider with the given name is configured.
func (c *Config) HasProvider(name string) bool {
	_, ok := c.FindProvider(name)
	return ok
}

// AddProvider appends a provider to the end of the fallback chain.
// Returns an error if the name is already taken.
func (c *Config) AddProvider(p ProviderDefinition) error {
	if c.HasProvider(p.Name) {
		return fmt.Errorf("provider with name %s already exists", p.Name)
	}
	c.Providers = append(c.Providers, p)
	return nil
}

// RemoveProvider drops a provider from the chain, preserving the order of the rest.
func (c *Config) RemoveProvider(name string) error {
	for i, p := range c.Providers {
		if p.Name == name {
			c.Providers = append(c.Providers[:i:i], c.Providers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("provider %s not found", name)
}

// ActiveProviders returns the enabled providers in chain order.
func (c *Config) ActiveProviders() []ProviderDefinition {
	active := make([]ProviderDefinition, 0, len(c.Providers))
	for _, p := range c.Providers {
		if !p.Disabled {
			active = append(active, p)
		}
	}
	return active
}

// ProviderNames returns the enabled provider names in chain order.
func (c *Config) ProviderNames() []string {
	active := c.ActiveProviders()
	names := make([]string, 0, len(active))
	for _, p := range active {
		names = append(names, p.Name)
	}
	return names
}

// GetCacheMaxEntries returns the maximum number of cache entries
func (c *Config) GetCacheMaxEntries() int {
	if c.Cache.MaxEntries <= 0 {
		return DefaultMaxCacheEntries
	}
	return c.Cache.MaxEntries
}

// GetComputeTimeout bounds one shared resolution.
func (c *Config) GetComputeTimeout() time.Duration {
	if c.Cache.ComputeTimeout <= 0 {
		return DefaultComputeTimeout
	}
	return c.Cache.ComputeTimeout
}

// GetJanitorInterval returns how often the memory store sweeps.
func (c *Config) GetJanitorInterval() time.Duration {
	if c.Cache.JanitorInterval <= 0 {
		return DefaultJanitorInterval
	}
	return c.Cache.JanitorInterval
}

// TTLFor returns the cache TTL for a key namespace.
func (c *Config) TTLFor(prefix string) time.Duration {
	pick := func(v, def time.Duration) time.Duration {
		if v <= 0 {
			return def
		}
		return v
	}
	switch prefix {
	case KeyPrefixMood:
		return pick(c.Cache.MoodTTL, DefaultMoodTTL)
	case KeyPrefixDiscover:
		return pick(c.Cache.DiscoverTTL, DefaultDiscoverTTL)
	case KeyPrefixBlend:
		return pick(c.Cache.BlendTTL, DefaultBlendTTL)
	case KeyPrefixWatchlist:
		return pick(c.Cache.WatchlistTTL, DefaultWatchlistTTL)
	default:
		return DefaultDiscoverTTL
	}
}

// GetEnrichConcurrency returns the bounded parallelism for title lookups.
func (c *Config) GetEnrichConcurrency() int {
	if c.Enrich.Concurrency <= 0 {
		return DefaultEnrichConcurrency
	}
	return c.Enrich.Concurrency
}

// ValidateConsistency checks the internal consistency of the configuration.
func (c *Config) ValidateConsistency() error {
	seen := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("provider %s is declared more than once", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	if len(c.ActiveProviders()) == 0 {
		return fmt.Errorf("no enabled providers configured")
	}
	return nil
}
