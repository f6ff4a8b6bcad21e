package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

type stubProvider struct {
	name   string
	result domain.RecommendationResult
	err    error
	calls  atomic.Int32
	// gate, when set, blocks Fetch until closed.
	gate chan struct{}
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Definition() domain.ProviderDefinition {
	return domain.ProviderDefinition{Name: p.name}
}

func (p *stubProvider) Fetch(ctx context.Context, _ ports.ProviderRequest) (domain.RecommendationResult, error) {
	p.calls.Add(1)
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return domain.RecommendationResult{}, ctx.Err()
		}
	}
	if p.err != nil {
		return domain.RecommendationResult{}, p.err
	}
	return p.result.Clone(), nil
}

func okProvider(name string, titles ...string) *stubProvider {
	recs := make([]domain.Recommendation, len(titles))
	for i, title := range titles {
		recs[i] = domain.Recommendation{Title: title, MediaType: domain.MediaMovie, Reason: "fits"}
	}
	return &stubProvider{name: name, result: domain.RecommendationResult{Results: recs}}
}

func failingProvider(name string, kind domain.ProviderErrorKind) *stubProvider {
	return &stubProvider{name: name, err: domain.NewProviderError(name, kind, errors.New("boom"))}
}

// brokenStore fails every operation.
type brokenStore struct {
	sets atomic.Int32
}

var errStoreDown = errors.New("store down")

func (s *brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errStoreDown
}

func (s *brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	s.sets.Add(1)
	return errStoreDown
}

func (s *brokenStore) Delete(context.Context, string) error { return errStoreDown }
func (s *brokenStore) Close() error                         { return nil }

// recordingStore is a map store that remembers the TTL of each write.
type recordingStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	gets int
	sets int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (s *recordingStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *recordingStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *recordingStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	delete(s.ttls, key)
	return nil
}

func (s *recordingStore) Close() error { return nil }

func (s *recordingStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func (s *recordingStore) ttl(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ttls[key]
}

type stubCatalog struct {
	mu        sync.Mutex
	discover  []domain.CatalogItem
	similar   map[int][]domain.CatalogItem
	search    map[string]domain.CatalogItem
	err       error
	queries   []ports.DiscoverQuery
	searches  int
	similarOf []int
}

func (c *stubCatalog) DiscoverByGenre(_ context.Context, q ports.DiscoverQuery) ([]domain.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, q)
	if c.err != nil {
		return nil, c.err
	}
	return c.discover, nil
}

func (c *stubCatalog) Similar(_ context.Context, _ domain.MediaType, id int) ([]domain.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.similarOf = append(c.similarOf, id)
	if c.err != nil {
		return nil, c.err
	}
	return c.similar[id], nil
}

func (c *stubCatalog) SearchTitle(_ context.Context, _ domain.MediaType, title string) (domain.CatalogItem, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches++
	if c.err != nil {
		return domain.CatalogItem{}, false, c.err
	}
	item, ok := c.search[title]
	return item, ok, nil
}

func testMoods() *domain.MoodCatalog {
	catalog, err := domain.NewMoodCatalog([]domain.Mood{
		{Slug: "cozy", Label: "Cozy Night In", Prompt: "warm comforting films", GenreIDs: []int{35, 10751}},
		{Slug: "dark", Label: "Dark & Gritty", Prompt: "bleak crime thrillers"},
	})
	if err != nil {
		panic(err)
	}
	return catalog
}
