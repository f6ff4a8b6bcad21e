package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/infrastructure/tmdb"
	"github.com/doeshing/reelai/internal/pkg/logger"
	"github.com/doeshing/reelai/internal/ports"
)

const chatBody = `{"choices":[{"message":{"role":"assistant","content":"Here you go:\n` + "```json" + `\n[{\"title\":\"Amélie\",\"type\":\"movie\",\"reason\":\"Whimsical and warm.\",\"year\":2001},{\"title\":\"\",\"reason\":\"untitled\"},{\"title\":\"Paddington 2\",\"year\":\"2017\"}]\n` + "```" + `"}}]}`

func newTestFactory(catalog ports.MetadataCatalog) *Factory {
	return NewFactory(catalog, logger.NewNop())
}

func TestOpenAIProviderParsesFencedArray(t *testing.T) {
	t.Setenv("REELAI_TEST_OPENAI_KEY", "sk-test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(chatBody))
	}))
	defer srv.Close()

	provider, err := newTestFactory(nil).ForDefinition(domain.ProviderDefinition{
		Name: "gpt", Kind: domain.ProviderOpenAI, Endpoint: srv.URL, AuthEnvVar: "REELAI_TEST_OPENAI_KEY",
	})
	if err != nil {
		t.Fatalf("ForDefinition: %v", err)
	}

	result, err := provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "something cozy", MediaType: domain.MediaAll})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Provider != "gpt" {
		t.Errorf("provider = %q", result.Provider)
	}
	if len(result.Results) != 2 {
		t.Fatalf("expected 2 titled results, got %+v", result.Results)
	}
	if result.Results[0].Title != "Amélie" || result.Results[0].Year != 2001 {
		t.Errorf("unexpected first result %+v", result.Results[0])
	}
	if result.Results[1].Year != 2017 || result.Results[1].MediaType != domain.MediaMovie {
		t.Errorf("unexpected second result %+v", result.Results[1])
	}
}

func TestAnthropicProviderHeadersAndBody(t *testing.T) {
	t.Setenv("REELAI_TEST_ANTHROPIC_KEY", "ak-test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ak-test" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic headers: %v", r.Header)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"[{\"title\":\"Arrival\",\"type\":\"movie\",\"reason\":\"Cerebral.\",\"year\":2016}]"}]}`))
	}))
	defer srv.Close()

	provider, err := newTestFactory(nil).ForDefinition(domain.ProviderDefinition{
		Name: "claude", Endpoint: srv.URL + "/anthropic.com/v1/messages", Kind: domain.ProviderAnthropic, AuthEnvVar: "REELAI_TEST_ANTHROPIC_KEY",
	})
	if err != nil {
		t.Fatalf("ForDefinition: %v", err)
	}
	result, err := provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "mind-bending"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].Title != "Arrival" {
		t.Fatalf("unexpected results %+v", result.Results)
	}
}

func TestHTTPProviderErrorKinds(t *testing.T) {
	t.Setenv("REELAI_TEST_OPENAI_KEY", "sk-test")

	tests := []struct {
		name    string
		status  int
		body    string
		delay   time.Duration
		timeout time.Duration
		want    domain.ProviderErrorKind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: domain.KindRateLimited},
		{name: "server error", status: http.StatusBadGateway, want: domain.KindUnavailable},
		{name: "unauthorized", status: http.StatusUnauthorized, want: domain.KindUnavailable},
		{name: "garbage body", status: http.StatusOK, body: `not json`, want: domain.KindInvalidResponse},
		{name: "empty array", status: http.StatusOK, body: `{"choices":[{"message":{"content":"[]"}}]}`, want: domain.KindInvalidResponse},
		{name: "timeout", status: http.StatusOK, body: chatBody, delay: 200 * time.Millisecond, timeout: 20 * time.Millisecond, want: domain.KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.delay > 0 {
					select {
					case <-time.After(tt.delay):
					case <-r.Context().Done():
						return
					}
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			provider, err := newTestFactory(nil).ForDefinition(domain.ProviderDefinition{
				Name: "gpt", Kind: domain.ProviderOpenAI, Endpoint: srv.URL, AuthEnvVar: "REELAI_TEST_OPENAI_KEY", Timeout: tt.timeout,
			})
			if err != nil {
				t.Fatalf("ForDefinition: %v", err)
			}
			_, err = provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "x"})
			var perr *domain.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if perr.Kind != tt.want {
				t.Errorf("kind = %s, want %s (err %v)", perr.Kind, tt.want, err)
			}
		})
	}
}

func TestMissingCredentialsIsUnavailableWithoutNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	provider, err := newTestFactory(nil).ForDefinition(domain.ProviderDefinition{
		Name: "gpt", Kind: domain.ProviderOpenAI, Endpoint: srv.URL, AuthEnvVar: "REELAI_TEST_UNSET_KEY_A",
	})
	if err != nil {
		t.Fatalf("ForDefinition: %v", err)
	}
	t.Setenv("OPENAI_API_KEY", "")

	_, err = provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "x"})
	if domain.ProviderErrorKindOf(err) != domain.KindUnavailable || !errors.Is(err, errMissingCredentials) {
		t.Fatalf("expected unavailable missing-credentials error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("no request should be sent without credentials")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Setenv("REELAI_TEST_OPENAI_KEY", "sk-test")
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	factory := NewFactory(nil, logger.NewNop(), WithBreakerSettings(BreakerSettings{
		MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, ConsecutiveFailures: 2,
	}))
	provider, err := factory.ForDefinition(domain.ProviderDefinition{
		Name: "flaky", Kind: domain.ProviderOpenAI, Endpoint: srv.URL, AuthEnvVar: "REELAI_TEST_OPENAI_KEY",
	})
	if err != nil {
		t.Fatalf("ForDefinition: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err = provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "x"})
		if domain.ProviderErrorKindOf(err) != domain.KindUnavailable {
			t.Fatalf("call %d: expected unavailable, got %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected breaker to stop the third call, server saw %d", got)
	}
	if state := provider.(*breakerProvider).State(); state != "open" {
		t.Fatalf("breaker state = %s, want open", state)
	}
}

type stubCatalog struct {
	items   []domain.CatalogItem
	err     error
	lastReq ports.DiscoverQuery
}

func (s *stubCatalog) DiscoverByGenre(_ context.Context, q ports.DiscoverQuery) ([]domain.CatalogItem, error) {
	s.lastReq = q
	return s.items, s.err
}

func (s *stubCatalog) Similar(context.Context, domain.MediaType, int) ([]domain.CatalogItem, error) {
	return nil, nil
}

func (s *stubCatalog) SearchTitle(context.Context, domain.MediaType, string) (domain.CatalogItem, bool, error) {
	return domain.CatalogItem{}, false, nil
}

func TestHeuristicProvider(t *testing.T) {
	catalog := &stubCatalog{items: []domain.CatalogItem{
		{ID: 1, Title: "Paddington 2", MediaType: domain.MediaMovie, GenreIDs: []int{35}, Year: 2017},
		{ID: 2, Title: "Seen It", MediaType: domain.MediaMovie},
		{ID: 3, Title: " Seen It Too ", MediaType: domain.MediaMovie},
	}}
	provider, err := newTestFactory(catalog).ForDefinition(domain.ProviderDefinition{Name: "heuristic", Kind: domain.ProviderHeuristic})
	if err != nil {
		t.Fatalf("ForDefinition: %v", err)
	}

	result, err := provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "something funny", Exclude: []string{"seen it", "SEEN IT TOO"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].ID != 1 || !strings.Contains(result.Results[0].Reason, "comedy") {
		t.Fatalf("unexpected results %+v", result.Results)
	}
	if len(catalog.lastReq.GenreIDs) == 0 || catalog.lastReq.GenreIDs[0] != 35 {
		t.Fatalf("expected comedy genre hint, got %v", catalog.lastReq.GenreIDs)
	}

	// Explicit genre hints win over keywords.
	_, _ = provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "something funny", GenreIDs: []int{27}})
	if catalog.lastReq.GenreIDs[0] != 27 {
		t.Fatalf("expected explicit genre hint, got %v", catalog.lastReq.GenreIDs)
	}
}

func TestHeuristicProviderEmptyAndUnavailable(t *testing.T) {
	empty := &stubCatalog{}
	provider, _ := newTestFactory(empty).ForDefinition(domain.ProviderDefinition{Kind: domain.ProviderHeuristic})
	result, err := provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "x"})
	if err != nil || !result.Empty() {
		t.Fatalf("expected empty success, got %+v, %v", result, err)
	}

	tests := []struct {
		name    string
		catalog ports.MetadataCatalog
		want    domain.ProviderErrorKind
	}{
		{name: "not configured", catalog: nil, want: domain.KindUnavailable},
		{name: "unreachable", catalog: &stubCatalog{err: errors.New("connection refused")}, want: domain.KindUnavailable},
		{name: "rate limited", catalog: &stubCatalog{err: &tmdb.StatusError{Endpoint: "/discover/movie", Code: http.StatusTooManyRequests}}, want: domain.KindRateLimited},
		{name: "server error", catalog: &stubCatalog{err: fmt.Errorf("wrapped: %w", &tmdb.StatusError{Endpoint: "/discover/movie", Code: http.StatusBadGateway})}, want: domain.KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := newTestFactory(tt.catalog).ForDefinition(domain.ProviderDefinition{Kind: domain.ProviderHeuristic})
			if err != nil {
				t.Fatalf("ForDefinition: %v", err)
			}
			_, err = provider.Fetch(context.Background(), ports.ProviderRequest{Prompt: "x"})
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := domain.ProviderErrorKindOf(err); got != tt.want {
				t.Fatalf("kind = %s, want %s (%v)", got, tt.want, err)
			}
		})
	}
}

func TestCleanJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n[1,2]\n```":        "[1,2]",
		"Sure! [\"a\"] hope it helps": `["a"]`,
		"[]":                         "[]",
		"no array":                   "no array",
	}
	for in, want := range tests {
		if got := cleanJSON(in); got != want {
			t.Errorf("cleanJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGuessGenres(t *testing.T) {
	if got := guessGenres("a scary haunted house"); got[0] != 27 {
		t.Errorf("expected horror first, got %v", got)
	}
	if got := guessGenres("xyz"); len(got) != len(defaultGenres) {
		t.Errorf("expected default genres, got %v", got)
	}
}
