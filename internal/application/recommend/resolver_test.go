package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/pkg/logger"
	"github.com/doeshing/reelai/internal/ports"
)

func TestResolver_FallsThroughToNextProvider(t *testing.T) {
	a := failingProvider("a", domain.KindRateLimited)
	b := okProvider("b", "Paddington 2")
	r := NewResolver([]ports.Provider{a, b}, logger.NewNop())

	got, err := r.Resolve(context.Background(), ports.ProviderRequest{Prompt: "cozy"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Provider != "b" || !got.IsFallback {
		t.Fatalf("got provider=%s isFallback=%v, want b/true", got.Provider, got.IsFallback)
	}
	if len(got.Results) != 1 || got.Results[0].Title != "Paddington 2" {
		t.Fatalf("unexpected results %+v", got.Results)
	}
}

func TestResolver_FirstSuccessStopsChain(t *testing.T) {
	a := okProvider("a", "Amélie")
	b := okProvider("b", "other")
	c := okProvider("c", "other")
	r := NewResolver([]ports.Provider{a, b, c}, logger.NewNop())

	got, err := r.Resolve(context.Background(), ports.ProviderRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Provider != "a" || got.IsFallback {
		t.Fatalf("got provider=%s isFallback=%v, want a/false", got.Provider, got.IsFallback)
	}
	if b.calls.Load() != 0 || c.calls.Load() != 0 {
		t.Fatalf("later providers called: b=%d c=%d", b.calls.Load(), c.calls.Load())
	}
}

func TestResolver_AllProvidersFail(t *testing.T) {
	tests := []struct {
		name      string
		providers []ports.Provider
		wantKind  domain.ProviderErrorKind
		wantErrs  int
	}{
		{
			name: "typed failures",
			providers: []ports.Provider{
				failingProvider("a", domain.KindRateLimited),
				failingProvider("b", domain.KindTimeout),
			},
			wantKind: domain.KindTimeout,
			wantErrs: 2,
		},
		{
			name: "untyped failure becomes unavailable",
			providers: []ports.Provider{
				&stubProvider{name: "a", err: errors.New("socket closed")},
			},
			wantKind: domain.KindUnavailable,
			wantErrs: 1,
		},
		{
			name:     "empty chain",
			wantKind: domain.KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.providers, logger.NewNop())
			_, err := r.Resolve(context.Background(), ports.ProviderRequest{Prompt: "x"})
			if !errors.Is(err, domain.ErrAllProvidersExhausted) {
				t.Fatalf("expected exhaustion, got %v", err)
			}
			var exhausted *domain.ExhaustedError
			if !errors.As(err, &exhausted) {
				t.Fatalf("expected *ExhaustedError, got %T", err)
			}
			if exhausted.LastKind != tt.wantKind || len(exhausted.Errs) != tt.wantErrs {
				t.Fatalf("got kind=%s errs=%d, want %s/%d", exhausted.LastKind, len(exhausted.Errs), tt.wantKind, tt.wantErrs)
			}
			for _, e := range exhausted.Errs {
				var perr *domain.ProviderError
				if !errors.As(e, &perr) {
					t.Errorf("collected error %v is not a ProviderError", e)
				}
			}
		})
	}
}

func TestResolver_CancelledContextStopsChain(t *testing.T) {
	a := failingProvider("a", domain.KindUnavailable)
	b := okProvider("b", "x")
	r := NewResolver([]ports.Provider{a, b}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, ports.ProviderRequest{Prompt: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if a.calls.Load() != 0 || b.calls.Load() != 0 {
		t.Fatal("no provider should be called after cancellation")
	}
}

func TestResolver_DoesNotAliasProviderResult(t *testing.T) {
	a := okProvider("a", "Heat")
	r := NewResolver([]ports.Provider{a}, logger.NewNop())

	got, err := r.Resolve(context.Background(), ports.ProviderRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got.Results[0].Title = "changed"
	if a.result.Results[0].Title != "Heat" {
		t.Fatal("resolver result aliases provider state")
	}
}
