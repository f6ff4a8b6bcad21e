package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultProviderTimeout bounds a single provider call
	DefaultProviderTimeout = 20 * time.Second
	// DefaultComputeTimeout bounds one coalesced resolution, shared by all waiters
	DefaultComputeTimeout = 60 * time.Second
	// DefaultHTTPClientTimeout is the timeout for metadata API requests
	DefaultHTTPClientTimeout = 10 * time.Second
	// DefaultJanitorInterval is how often the memory store sweeps expired keys
	DefaultJanitorInterval = time.Minute
	// DefaultShutdownTimeout bounds graceful HTTP shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Cache TTLs per request family
const (
	DefaultMoodTTL      = 24 * time.Hour
	DefaultDiscoverTTL  = 6 * time.Hour
	DefaultBlendTTL     = 12 * time.Hour
	DefaultWatchlistTTL = time.Hour
)

// Limit constants
const (
	// DefaultMaxCacheEntries caps the memory and file stores
	DefaultMaxCacheEntries = 10000
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
	// DefaultRecommendationLimit is how many items a provider is asked for
	DefaultRecommendationLimit = 12
	// MaxPromptLength is the longest accepted discover prompt, in characters
	MaxPromptLength = 500
	// MinBlendTitles and MaxBlendTitles bound a blend request
	MinBlendTitles = 2
	MaxBlendTitles = 10
	// MaxWatchlistItems bounds a /recommendations request
	MaxWatchlistItems = 200
	// DefaultEnrichConcurrency bounds parallel title lookups
	DefaultEnrichConcurrency = 4
	// DefaultTopGenres is how many preferred genres feed the genre group
	DefaultTopGenres = 3
	// DefaultSimilarSeeds is how many recent watchlist items seed the similar group
	DefaultSimilarSeeds = 3
)

// Cache key namespaces
const (
	KeyPrefixMood      = "mood"
	KeyPrefixDiscover  = "discover"
	KeyPrefixBlend     = "blend"
	KeyPrefixWatchlist = "watchlist"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
