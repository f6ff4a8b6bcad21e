// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the recommendation core to remain independent of specific
// implementations like AI vendors, cache backends, or the metadata API.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Provider, CacheStore)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/doeshing/reelai/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.reelai/config.yaml layered with env vars.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ProviderFactory builds provider instances based on provider definitions.
// It abstracts the creation of different provider types (Anthropic, OpenAI, Ollama, heuristic).
type ProviderFactory interface {
	ForDefinition(domain.ProviderDefinition) (Provider, error)
}

// Provider is one source of recommendations in the fallback chain.
// Fetch either returns at least one recommendation or a *domain.ProviderError;
// only the terminal heuristic provider may succeed with an empty list.
type Provider interface {
	Name() string
	Definition() domain.ProviderDefinition
	Fetch(context.Context, ProviderRequest) (domain.RecommendationResult, error)
}

// ProviderRequest contains everything an adapter needs to produce recommendations.
type ProviderRequest struct {
	Prompt    string
	MediaType domain.MediaType
	Limit     int
	// GenreIDs is an optional metadata genre hint (mood catalog).
	GenreIDs []int
	// Exclude lists titles the caller already knows about.
	Exclude []string
}

// CacheStore is a TTL key-value store for serialized cache entries.
// A missing or expired key is reported as (nil, false, nil).
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DiscoverQuery filters a metadata discover call.
type DiscoverQuery struct {
	MediaType    domain.MediaType
	GenreIDs     []int
	SortBy       string
	Page         int
	MinVoteCount int
	ExcludeIDs   []int
}

// MetadataCatalog is the subset of the metadata API the recommendation layer uses.
type MetadataCatalog interface {
	DiscoverByGenre(ctx context.Context, q DiscoverQuery) ([]domain.CatalogItem, error)
	Similar(ctx context.Context, mediaType domain.MediaType, id int) ([]domain.CatalogItem, error)
	SearchTitle(ctx context.Context, mediaType domain.MediaType, title string) (domain.CatalogItem, bool, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
