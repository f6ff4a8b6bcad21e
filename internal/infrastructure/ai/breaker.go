package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/metrics"
	"github.com/doeshing/reelai/internal/ports"
)

// BreakerSettings tunes the per-provider circuit breaker.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerSettings opens after five consecutive failures and probes again after 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// breakerProvider short-circuits a failing provider so the chain falls
// through without a network call.
type breakerProvider struct {
	inner  ports.Provider
	cb     *gobreaker.CircuitBreaker[domain.RecommendationResult]
	logger ports.Logger
}

func withBreaker(inner ports.Provider, settings BreakerSettings, logger ports.Logger) *breakerProvider {
	name := inner.Name()
	metrics.SetBreakerState(name, int(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[domain.RecommendationResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		// Malformed output and caller cancellation say nothing about provider health.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return domain.ProviderErrorKindOf(err) == domain.KindInvalidResponse
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			logger.Warn("provider circuit state changed", map[string]interface{}{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			})
		},
	})
	return &breakerProvider{inner: inner, cb: cb, logger: logger}
}

func (b *breakerProvider) Name() string {
	return b.inner.Name()
}

func (b *breakerProvider) Definition() domain.ProviderDefinition {
	return b.inner.Definition()
}

// State reports the breaker state, used by doctor.
func (b *breakerProvider) State() string {
	return b.cb.State().String()
}

func (b *breakerProvider) Fetch(ctx context.Context, req ports.ProviderRequest) (domain.RecommendationResult, error) {
	result, err := b.cb.Execute(func() (domain.RecommendationResult, error) {
		return b.inner.Fetch(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.RecommendationResult{}, domain.NewProviderError(b.Name(), domain.KindUnavailable, err)
	}
	return result, err
}

var _ ports.Provider = (*breakerProvider)(nil)
