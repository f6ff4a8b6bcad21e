package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

// Options tunes the recommendation service.
type Options struct {
	MoodTTL           time.Duration
	DiscoverTTL       time.Duration
	BlendTTL          time.Duration
	WatchlistTTL      time.Duration
	ComputeTimeout    time.Duration
	Limit             int
	Enrich            bool
	EnrichConcurrency int
}

// OptionsFromConfig maps configuration onto service options.
func OptionsFromConfig(cfg domain.Config) Options {
	return Options{
		MoodTTL:           cfg.TTLFor(domain.KeyPrefixMood),
		DiscoverTTL:       cfg.TTLFor(domain.KeyPrefixDiscover),
		BlendTTL:          cfg.TTLFor(domain.KeyPrefixBlend),
		WatchlistTTL:      cfg.TTLFor(domain.KeyPrefixWatchlist),
		ComputeTimeout:    cfg.GetComputeTimeout(),
		Limit:             domain.DefaultRecommendationLimit,
		Enrich:            cfg.Enrich.Enabled,
		EnrichConcurrency: cfg.GetEnrichConcurrency(),
	}
}

// DiscoverRequest is a free-text discovery query.
type DiscoverRequest struct {
	Prompt    string
	MediaType string
}

// BlendRequest asks for titles combining the appeal of several titles.
type BlendRequest struct {
	Titles    []string
	MediaType string
}

// WatchlistRequest asks for suggestions based on a user's watchlist.
type WatchlistRequest struct {
	Items      []domain.WatchlistItem
	ExcludeIDs []int
}

// Service handles mood, discover, blend and watchlist requests. It is built
// once per process and safe for concurrent use.
type Service struct {
	resolver   *Resolver
	results    *Loader[domain.RecommendationResult]
	watchlists *Loader[domain.WatchlistRecommendations]
	store      ports.CacheStore
	moods      *domain.MoodCatalog
	catalog    ports.MetadataCatalog
	logger     ports.Logger
	opts       Options
}

// NewService wires a service. catalog may be nil when no metadata API is
// configured; enrichment and watchlist suggestions are then unavailable.
func NewService(
	resolver *Resolver,
	store ports.CacheStore,
	moods *domain.MoodCatalog,
	catalog ports.MetadataCatalog,
	logger ports.Logger,
	opts Options,
) *Service {
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultRecommendationLimit
	}
	if opts.EnrichConcurrency <= 0 {
		opts.EnrichConcurrency = domain.DefaultEnrichConcurrency
	}
	return &Service{
		resolver:   resolver,
		results:    NewLoader[domain.RecommendationResult](store, logger, opts.ComputeTimeout),
		watchlists: NewLoader[domain.WatchlistRecommendations](store, logger, opts.ComputeTimeout),
		store:      store,
		moods:      moods,
		catalog:    catalog,
		logger:     logger,
		opts:       opts,
	}
}

// Moods lists the mood catalog.
func (s *Service) Moods() []domain.Mood {
	return s.moods.List()
}

// Mood returns recommendations for a catalog mood.
func (s *Service) Mood(ctx context.Context, slug string) (domain.RecommendationResult, error) {
	mood, ok := s.moods.Find(slug)
	if !ok {
		return domain.RecommendationResult{}, domain.NewUnknownMoodError(slug)
	}

	req := ports.ProviderRequest{
		Prompt:    mood.Prompt,
		MediaType: mood.MediaType,
		Limit:     s.opts.Limit,
		GenreIDs:  mood.GenreIDs,
	}
	result, err := s.results.GetCached(ctx, MoodKey(mood.Slug), s.opts.MoodTTL, s.producer(req, mood.Label))
	if err != nil {
		return domain.RecommendationResult{}, err
	}
	return result.WithPrompt(mood.Label), nil
}

// Discover answers a free-text prompt.
func (s *Service) Discover(ctx context.Context, in DiscoverRequest) (domain.RecommendationResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return domain.RecommendationResult{}, domain.NewInputError("prompt", "must not be empty")
	}
	if utf8.RuneCountInString(prompt) > domain.MaxPromptLength {
		return domain.RecommendationResult{}, domain.NewInputError("prompt",
			fmt.Sprintf("must be at most %d characters", domain.MaxPromptLength))
	}
	mediaType, err := parseRequestMediaType(in.MediaType)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	req := ports.ProviderRequest{
		Prompt:    prompt,
		MediaType: mediaType,
		Limit:     s.opts.Limit,
	}
	result, err := s.results.GetCached(ctx, DiscoverKey(mediaType, prompt), s.opts.DiscoverTTL, s.producer(req, prompt))
	if err != nil {
		return domain.RecommendationResult{}, err
	}
	return result.WithPrompt(prompt), nil
}

// Blend finds titles that share qualities with every given title.
func (s *Service) Blend(ctx context.Context, in BlendRequest) (domain.RecommendationResult, error) {
	titles := make([]string, 0, len(in.Titles))
	seen := make(map[string]bool, len(in.Titles))
	for _, raw := range in.Titles {
		title := strings.TrimSpace(raw)
		if title == "" {
			return domain.RecommendationResult{}, domain.NewInputError("titles", "must not contain empty titles")
		}
		if norm := normalizePrompt(title); !seen[norm] {
			seen[norm] = true
			titles = append(titles, title)
		}
	}
	if len(titles) < domain.MinBlendTitles || len(titles) > domain.MaxBlendTitles {
		return domain.RecommendationResult{}, domain.NewInputError("titles",
			fmt.Sprintf("need between %d and %d distinct titles", domain.MinBlendTitles, domain.MaxBlendTitles))
	}
	mediaType, err := parseRequestMediaType(in.MediaType)
	if err != nil {
		return domain.RecommendationResult{}, err
	}

	label := "Blend of " + strings.Join(titles, " + ")
	req := ports.ProviderRequest{
		Prompt: fmt.Sprintf(
			"Recommend titles that blend the appeal of %s. Each pick should share qualities with all of them.",
			strings.Join(titles, "; "),
		),
		MediaType: mediaType,
		Limit:     s.opts.Limit,
		Exclude:   titles,
	}
	result, err := s.results.GetCached(ctx, BlendKey(mediaType, titles), s.opts.BlendTTL, s.producer(req, label))
	if err != nil {
		return domain.RecommendationResult{}, err
	}
	return result.WithPrompt(label), nil
}

// Watchlist returns genre-based and similarity-based suggestions.
func (s *Service) Watchlist(ctx context.Context, in WatchlistRequest) (domain.WatchlistRecommendations, error) {
	if len(in.Items) == 0 {
		return domain.WatchlistRecommendations{}, domain.NewInputError("watchlistItems", "must not be empty")
	}
	if len(in.Items) > domain.MaxWatchlistItems {
		return domain.WatchlistRecommendations{}, domain.NewInputError("watchlistItems",
			fmt.Sprintf("must contain at most %d items", domain.MaxWatchlistItems))
	}
	for _, item := range in.Items {
		if item.ID <= 0 {
			return domain.WatchlistRecommendations{}, domain.NewInputError("watchlistItems", "every item needs a positive id")
		}
	}
	if s.catalog == nil {
		return domain.WatchlistRecommendations{}, fmt.Errorf("watchlist recommendations: metadata catalog not configured")
	}

	key := WatchlistKey(in.Items, in.ExcludeIDs)
	return s.watchlists.GetCached(ctx, key, s.opts.WatchlistTTL, func(ctx context.Context) (domain.WatchlistRecommendations, error) {
		return s.buildWatchlist(ctx, in)
	})
}

// Invalidate drops a cached key.
func (s *Service) Invalidate(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.NewInputError("key", "must not be empty")
	}
	return s.results.Invalidate(ctx, key)
}

// Peek returns the raw cached entry for key, if live.
func (s *Service) Peek(ctx context.Context, key string) (domain.CacheEntry[json.RawMessage], bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return domain.CacheEntry[json.RawMessage]{}, false, &domain.CacheStoreError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return domain.CacheEntry[json.RawMessage]{}, false, nil
	}
	var entry domain.CacheEntry[json.RawMessage]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.CacheEntry[json.RawMessage]{}, false, &domain.CacheStoreError{Op: "decode", Key: key, Err: err}
	}
	if entry.Expired(time.Now()) {
		return domain.CacheEntry[json.RawMessage]{}, false, nil
	}
	return entry, true, nil
}

// producer resolves req through the provider chain and enriches the answer.
func (s *Service) producer(req ports.ProviderRequest, label string) Producer[domain.RecommendationResult] {
	return func(ctx context.Context) (domain.RecommendationResult, error) {
		result, err := s.resolver.Resolve(ctx, req)
		if err != nil {
			return domain.RecommendationResult{}, err
		}
		if s.opts.Enrich && s.catalog != nil {
			s.enrich(ctx, result.Results)
		}
		result.Prompt = label
		return result, nil
	}
}

// enrich fills missing ids, posters and years from the metadata catalog.
// Lookup failures leave the item as the provider returned it.
func (s *Service) enrich(ctx context.Context, recs []domain.Recommendation) {
	var g errgroup.Group
	g.SetLimit(s.opts.EnrichConcurrency)

	for i := range recs {
		if !recs[i].NeedsEnrichment() {
			continue
		}
		g.Go(func() error {
			rec := &recs[i]
			item, ok, err := s.catalog.SearchTitle(ctx, rec.MediaType, rec.Title)
			if err != nil || !ok {
				if err != nil {
					s.logger.Debug("enrichment lookup failed", map[string]interface{}{
						"title": rec.Title,
						"error": err.Error(),
					})
				}
				return nil
			}
			if rec.ID == 0 {
				rec.ID = item.ID
			}
			if rec.PosterPath == "" {
				rec.PosterPath = item.PosterPath
			}
			if rec.Year == 0 {
				rec.Year = item.Year
			}
			return nil
		})
	}
	_ = g.Wait()
}

// parseRequestMediaType accepts all, movie, tv and anime.
func parseRequestMediaType(raw string) (domain.MediaType, error) {
	mediaType, ok := domain.ParseMediaType(raw)
	if !ok || mediaType == domain.MediaAnimation {
		return "", domain.NewInputError("type", "must be one of all, movie, tv, anime")
	}
	return mediaType, nil
}
