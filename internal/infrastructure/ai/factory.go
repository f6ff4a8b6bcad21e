package ai

import (
	"fmt"
	"net/http"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

// Factory creates provider instances based on provider definitions.
// It shares one HTTP client across all HTTP providers; per-call deadlines come
// from each definition's timeout.
type Factory struct {
	httpClient *http.Client
	catalog    ports.MetadataCatalog
	logger     ports.Logger
	breaker    BreakerSettings
}

// FactoryOption customizes a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient replaces the shared HTTP client.
func WithHTTPClient(client *http.Client) FactoryOption {
	return func(f *Factory) { f.httpClient = client }
}

// WithBreakerSettings replaces the circuit breaker tuning.
func WithBreakerSettings(settings BreakerSettings) FactoryOption {
	return func(f *Factory) { f.breaker = settings }
}

// NewFactory creates a provider factory. catalog backs the heuristic provider.
func NewFactory(catalog ports.MetadataCatalog, logger ports.Logger, opts ...FactoryOption) *Factory {
	f := &Factory{
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		catalog:    catalog,
		logger:     logger,
		breaker:    DefaultBreakerSettings(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForDefinition builds the adapter for def, wrapped in a circuit breaker.
func (f *Factory) ForDefinition(def domain.ProviderDefinition) (ports.Provider, error) {
	var provider ports.Provider
	switch kind := def.ResolvedKind(); kind {
	case domain.ProviderAnthropic:
		provider = newHTTPProvider(def, anthropicEndpoint, f.httpClient, anthropicAdapter())
	case domain.ProviderOpenAI:
		provider = newHTTPProvider(def, openAIEndpoint, f.httpClient, openaiAdapter())
	case domain.ProviderOllama:
		provider = newHTTPProvider(def, ollamaEndpoint, f.httpClient, ollamaAdapter())
	case domain.ProviderHeuristic:
		provider = newHeuristicProvider(def, f.catalog)
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", kind)
	}
	return withBreaker(provider, f.breaker, f.logger), nil
}

// BuildChain builds every enabled provider in configured order.
func (f *Factory) BuildChain(defs []domain.ProviderDefinition) ([]ports.Provider, error) {
	chain := make([]ports.Provider, 0, len(defs))
	for _, def := range defs {
		if def.Disabled {
			continue
		}
		p, err := f.ForDefinition(def)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", def.Name, err)
		}
		chain = append(chain, p)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no enabled providers configured")
	}
	return chain, nil
}

var _ ports.ProviderFactory = (*Factory)(nil)
