// Package tmdb is a minimal TMDB v3 client covering discover, similar and
// title search.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/metrics"
	"github.com/doeshing/reelai/internal/ports"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("tmdb: api key not configured")

// StatusError reports a non-2xx answer.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s: status %d", e.Endpoint, e.Code)
}

// StatusCode lets callers classify the failure without importing this package.
func (e *StatusError) StatusCode() int {
	return e.Code
}

const animationGenreID = 16

// tvGenreFor maps movie genre ids onto their TV counterparts.
var tvGenreFor = map[int]int{
	28:    10759, // Action -> Action & Adventure
	12:    10759, // Adventure -> Action & Adventure
	878:   10765, // Science Fiction -> Sci-Fi & Fantasy
	14:    10765, // Fantasy -> Sci-Fi & Fantasy
	10752: 10768, // War -> War & Politics
}

// Client talks to the metadata API.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds a client from settings; the key is read from settings.APIKeyEnv.
func New(settings domain.TMDBSettings) *Client {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultHTTPClientTimeout
	}
	rps := settings.RequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	burst := settings.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:    strings.TrimRight(defaultString(settings.BaseURL, "https://api.themoviedb.org/3"), "/"),
		apiKey:     os.Getenv(defaultString(settings.APIKeyEnv, "TMDB_API_KEY")),
		language:   defaultString(settings.Language, "en-US"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// WithAPIKey overrides the key, used by tests and the CLI.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// DiscoverByGenre lists popular titles in any of the given genres. MediaAll
// interleaves movie and TV results; anime is Japanese-language animated TV.
func (c *Client) DiscoverByGenre(ctx context.Context, q ports.DiscoverQuery) ([]domain.CatalogItem, error) {
	switch q.MediaType {
	case domain.MediaMovie, domain.MediaAnimation:
		return c.discover(ctx, domain.MediaMovie, q)
	case domain.MediaTV:
		return c.discover(ctx, domain.MediaTV, q)
	case domain.MediaAnime:
		q.GenreIDs = []int{animationGenreID}
		return c.discover(ctx, domain.MediaAnime, q)
	default:
		movies, err := c.discover(ctx, domain.MediaMovie, q)
		if err != nil {
			return nil, err
		}
		shows, err := c.discover(ctx, domain.MediaTV, q)
		if err != nil {
			return movies, nil
		}
		return interleave(movies, shows), nil
	}
}

// Similar returns titles related to id.
func (c *Client) Similar(ctx context.Context, mediaType domain.MediaType, id int) ([]domain.CatalogItem, error) {
	kind := pathKind(mediaType)
	var page pageResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/similar", kind, id), url.Values{}, &page); err != nil {
		return nil, err
	}
	return page.items(itemMediaType(mediaType), nil), nil
}

// SearchTitle returns the best match for title, preferring mediaType when set.
func (c *Client) SearchTitle(ctx context.Context, mediaType domain.MediaType, title string) (domain.CatalogItem, bool, error) {
	params := url.Values{}
	params.Set("query", title)
	var page pageResponse
	if err := c.get(ctx, "/search/multi", params, &page); err != nil {
		return domain.CatalogItem{}, false, err
	}
	var fallback *domain.CatalogItem
	for _, r := range page.Results {
		if r.MediaType != "movie" && r.MediaType != "tv" {
			continue
		}
		item := r.toItem(domain.MediaType(r.MediaType))
		if mediaType == domain.MediaAll || pathKind(mediaType) == r.MediaType {
			return item, true, nil
		}
		if fallback == nil {
			fallback = &item
		}
	}
	if fallback != nil {
		return *fallback, true, nil
	}
	return domain.CatalogItem{}, false, nil
}

func (c *Client) discover(ctx context.Context, mediaType domain.MediaType, q ports.DiscoverQuery) ([]domain.CatalogItem, error) {
	kind := pathKind(mediaType)
	params := url.Values{}
	params.Set("sort_by", defaultString(q.SortBy, "popularity.desc"))
	params.Set("page", strconv.Itoa(max(q.Page, 1)))
	params.Set("include_adult", "false")
	if q.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(q.MinVoteCount))
	}
	if genres := genreParam(kind, q.GenreIDs); genres != "" {
		params.Set("with_genres", genres)
	}
	if mediaType == domain.MediaAnime {
		params.Set("with_original_language", "ja")
	}

	var page pageResponse
	if err := c.get(ctx, "/discover/"+kind, params, &page); err != nil {
		return nil, err
	}
	return page.items(itemMediaType(mediaType), q.ExcludeIDs), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("language", c.language)
	bearer := strings.HasPrefix(c.apiKey, "eyJ")
	if !bearer {
		params.Set("api_key", c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	if bearer {
		req.Header.Set("authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordMetadataRequest(endpointLabel(path), 0)
		return err
	}
	defer resp.Body.Close()
	metrics.RecordMetadataRequest(endpointLabel(path), resp.StatusCode)

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Endpoint: path, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", path, err)
	}
	return nil
}

type pageResponse struct {
	Page    int         `json:"page"`
	Results []tmdbTitle `json:"results"`
}

type tmdbTitle struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	GenreIDs         []int   `json:"genre_ids"`
	VoteAverage      float64 `json:"vote_average"`
	Popularity       float64 `json:"popularity"`
	MediaType        string  `json:"media_type"`
	OriginalLanguage string  `json:"original_language"`
}

func (p pageResponse) items(mediaType domain.MediaType, exclude []int) []domain.CatalogItem {
	skip := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := make([]domain.CatalogItem, 0, len(p.Results))
	for _, r := range p.Results {
		if _, ok := skip[r.ID]; ok {
			continue
		}
		item := r.toItem(mediaType)
		if item.Title == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (t tmdbTitle) toItem(mediaType domain.MediaType) domain.CatalogItem {
	title := t.Title
	if title == "" {
		title = t.Name
	}
	date := t.ReleaseDate
	if date == "" {
		date = t.FirstAirDate
	}
	if mediaType == domain.MediaTV && t.OriginalLanguage == "ja" && containsInt(t.GenreIDs, animationGenreID) {
		mediaType = domain.MediaAnime
	}
	return domain.CatalogItem{
		ID:          t.ID,
		Title:       title,
		MediaType:   mediaType,
		Overview:    t.Overview,
		PosterPath:  t.PosterPath,
		Year:        yearOf(date),
		GenreIDs:    t.GenreIDs,
		VoteAverage: t.VoteAverage,
		Popularity:  t.Popularity,
	}
}

func genreParam(kind string, ids []int) string {
	seen := make(map[int]struct{}, len(ids))
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if kind == "tv" {
			if mapped, ok := tvGenreFor[id]; ok {
				id = mapped
			}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		parts = append(parts, strconv.Itoa(id))
	}
	// Pipe means OR in TMDB's discover filters.
	return strings.Join(parts, "|")
}

func pathKind(mediaType domain.MediaType) string {
	switch mediaType {
	case domain.MediaTV, domain.MediaAnime:
		return "tv"
	default:
		return "movie"
	}
}

func itemMediaType(mediaType domain.MediaType) domain.MediaType {
	switch mediaType {
	case domain.MediaTV, domain.MediaAnime:
		return mediaType
	default:
		return domain.MediaMovie
	}
}

func endpointLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/discover/"):
		return "discover"
	case strings.HasSuffix(path, "/similar"):
		return "similar"
	case strings.HasPrefix(path, "/search/"):
		return "search"
	default:
		return "other"
	}
}

func interleave(a, b []domain.CatalogItem) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Year()
	}
	y, _ := strconv.Atoi(date[:4])
	return y
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

var _ ports.MetadataCatalog = (*Client)(nil)
