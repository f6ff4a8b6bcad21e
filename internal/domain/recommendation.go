// Package domain defines core business entities and value objects for reelai.
//
// The domain layer is independent of infrastructure concerns: recommendation
// values, provider definitions, cache entries, configuration and the typed
// errors shared by every adapter live here.
package domain

import (
	"strings"
	"time"
)

// MediaType identifies the kind of content a recommendation points at.
type MediaType string

const (
	MediaAll       MediaType = "all"
	MediaMovie     MediaType = "movie"
	MediaTV        MediaType = "tv"
	MediaAnime     MediaType = "anime"
	MediaAnimation MediaType = "animation"
)

// ParseMediaType normalizes user input. Empty input means MediaAll.
func ParseMediaType(raw string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", MediaAll:
		return MediaAll, true
	case MediaMovie, "movies", "film":
		return MediaMovie, true
	case MediaTV, "show", "series":
		return MediaTV, true
	case MediaAnime:
		return MediaAnime, true
	case MediaAnimation:
		return MediaAnimation, true
	default:
		return "", false
	}
}

// Recommendation is one suggested content item.
type Recommendation struct {
	ID         int       `json:"id,omitempty"`
	Title      string    `json:"title"`
	MediaType  MediaType `json:"mediaType"`
	Reason     string    `json:"reason"`
	PosterPath string    `json:"posterPath,omitempty"`
	Year       int       `json:"year,omitempty"`
}

// Valid reports whether the recommendation carries a usable title.
func (r Recommendation) Valid() bool {
	return strings.TrimSpace(r.Title) != ""
}

// NeedsEnrichment reports whether metadata lookup could fill missing fields.
func (r Recommendation) NeedsEnrichment() bool {
	return r.ID == 0 || r.PosterPath == "" || r.Year == 0
}

// RecommendationResult is the outcome of one resolution attempt.
// Results are ordered by relevance, most relevant first.
type RecommendationResult struct {
	Results    []Recommendation `json:"results"`
	Provider   string           `json:"provider"`
	IsFallback bool             `json:"isFallback"`
	Prompt     string           `json:"prompt"`
}

// Empty reports whether the result holds no recommendations.
func (r RecommendationResult) Empty() bool {
	return len(r.Results) == 0
}

// Clone returns a deep copy so callers can label a shared value safely.
func (r RecommendationResult) Clone() RecommendationResult {
	out := r
	if r.Results != nil {
		out.Results = make([]Recommendation, len(r.Results))
		copy(out.Results, r.Results)
	}
	return out
}

// WithPrompt returns a copy labelled for the caller.
func (r RecommendationResult) WithPrompt(prompt string) RecommendationResult {
	out := r.Clone()
	out.Prompt = prompt
	return out
}

// CacheEntry is the stored form of a cached value. Recommendation entries
// are CacheEntry[RecommendationResult].
type CacheEntry[T any] struct {
	Key        string    `json:"key"`
	Value      T         `json:"value"`
	StoredAt   time.Time `json:"storedAt"`
	TTLSeconds int       `json:"ttlSeconds"`
}

// ExpiresAt returns the instant after which the entry is absent.
func (e CacheEntry[T]) ExpiresAt() time.Time {
	return e.StoredAt.Add(time.Duration(e.TTLSeconds) * time.Second)
}

// Expired reports whether now is past StoredAt + TTL.
func (e CacheEntry[T]) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt())
}

// CatalogItem is a metadata-API row used by the heuristic provider and the
// watchlist recommendations.
type CatalogItem struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	MediaType   MediaType `json:"mediaType"`
	Overview    string    `json:"overview,omitempty"`
	PosterPath  string    `json:"posterPath,omitempty"`
	Year        int       `json:"year,omitempty"`
	GenreIDs    []int     `json:"genreIds,omitempty"`
	VoteAverage float64   `json:"voteAverage,omitempty"`
	Popularity  float64   `json:"popularity,omitempty"`
}
