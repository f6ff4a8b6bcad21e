// Package recommend resolves, caches and serves recommendations.
//
// A Resolver walks the configured provider chain, a Loader puts a coalescing
// cache-aside layer in front of any producer, and Service exposes the mood,
// discover, blend and watchlist operations on top of both.
package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/metrics"
	"github.com/doeshing/reelai/internal/ports"
)

// Resolver tries providers in fixed order until one succeeds.
type Resolver struct {
	providers []ports.Provider
	logger    ports.Logger
}

// NewResolver creates a resolver over an ordered provider chain.
func NewResolver(providers []ports.Provider, logger ports.Logger) *Resolver {
	return &Resolver{providers: providers, logger: logger}
}

// Providers returns the chain in resolution order.
func (r *Resolver) Providers() []ports.Provider {
	return r.providers
}

// Resolve returns the first successful result. Providers after the winner are
// never called. When every provider fails the error is a *domain.ExhaustedError.
func (r *Resolver) Resolve(ctx context.Context, req ports.ProviderRequest) (domain.RecommendationResult, error) {
	exhausted := &domain.ExhaustedError{LastKind: domain.KindUnavailable}

	for i, provider := range r.providers {
		if err := ctx.Err(); err != nil {
			return domain.RecommendationResult{}, err
		}

		start := time.Now()
		result, err := provider.Fetch(ctx, req)
		if err == nil {
			metrics.RecordProviderFetch(provider.Name(), metrics.OutcomeOK, time.Since(start))
			out := result.Clone()
			out.Provider = provider.Name()
			out.IsFallback = i > 0
			if out.IsFallback {
				r.logger.Info("served by fallback provider", map[string]interface{}{
					"provider": provider.Name(),
					"position": i,
				})
			}
			return out, nil
		}

		// Cancellation belongs to the caller, not the provider.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.RecommendationResult{}, ctxErr
		}

		kind := domain.ProviderErrorKindOf(err)
		metrics.RecordProviderFetch(provider.Name(), string(kind), time.Since(start))
		r.logger.Warn("provider failed", map[string]interface{}{
			"provider": provider.Name(),
			"kind":     string(kind),
			"error":    err.Error(),
		})
		exhausted.LastKind = kind
		exhausted.Errs = append(exhausted.Errs, asProviderError(provider.Name(), err))
	}

	metrics.RecordExhausted()
	r.logger.Warn("all providers exhausted", map[string]interface{}{
		"providers": len(r.providers),
		"last_kind": string(exhausted.LastKind),
	})
	return domain.RecommendationResult{}, exhausted
}

func asProviderError(name string, err error) error {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return domain.NewProviderError(name, domain.KindUnavailable, err)
}
