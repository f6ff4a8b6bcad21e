package domain

import "time"

// WatchlistItem is one title the user saved.
type WatchlistItem struct {
	ID        int       `json:"id" validate:"required,gt=0"`
	Title     string    `json:"title,omitempty"`
	MediaType MediaType `json:"mediaType,omitempty" validate:"omitempty,oneof=movie tv anime animation"`
	GenreIDs  []int     `json:"genreIds,omitempty"`
	AddedAt   time.Time `json:"addedAt,omitempty"`
}

// GenreCount is one preferred genre with its watchlist frequency.
type GenreCount struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Count int    `json:"count"`
}

// WatchlistRecommendations groups personalized suggestions.
type WatchlistRecommendations struct {
	GenreBased []Recommendation `json:"genreBased"`
	Similar    []Recommendation `json:"similar"`
	TopGenres  []GenreCount     `json:"topGenres"`
}

// Empty reports whether neither group has suggestions.
func (w WatchlistRecommendations) Empty() bool {
	return len(w.GenreBased) == 0 && len(w.Similar) == 0
}

// GenreNames maps TMDB genre ids (movie and TV) to display names.
var GenreNames = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
	99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy", 36: "History",
	27: "Horror", 10402: "Music", 9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	53: "Thriller", 10752: "War", 37: "Western", 10759: "Action & Adventure",
	10762: "Kids", 10763: "News", 10764: "Reality", 10765: "Sci-Fi & Fantasy",
	10766: "Soap", 10767: "Talk", 10768: "War & Politics", 10770: "TV Movie",
}
