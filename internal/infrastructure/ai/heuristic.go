package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

// genreNames holds TMDB movie genre ids.
var genreNames = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
	99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy", 36: "History",
	27: "Horror", 10402: "Music", 9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	53: "Thriller", 10752: "War", 37: "Western",
}

// keywordGenres maps prompt vocabulary to genre ids.
var keywordGenres = []struct {
	keywords []string
	genres   []int
}{
	{[]string{"funny", "comedy", "laugh", "hilarious", "silly", "lighthearted"}, []int{35}},
	{[]string{"scary", "horror", "creepy", "spooky", "terrifying", "haunted"}, []int{27}},
	{[]string{"romance", "romantic", "love", "date night", "heartfelt"}, []int{10749}},
	{[]string{"action", "explosive", "fight", "heist", "adrenaline"}, []int{28}},
	{[]string{"adventure", "quest", "journey", "epic", "explore"}, []int{12}},
	{[]string{"space", "sci-fi", "scifi", "science fiction", "future", "robot", "alien", "mind-bending", "time travel"}, []int{878}},
	{[]string{"fantasy", "magic", "dragon", "wizard", "mythical"}, []int{14}},
	{[]string{"mystery", "detective", "whodunit", "twist", "puzzle"}, []int{9648}},
	{[]string{"thriller", "suspense", "tense", "edge of my seat", "thrilling"}, []int{53}},
	{[]string{"crime", "mafia", "gangster", "noir"}, []int{80}},
	{[]string{"documentary", "true story", "real events", "nature"}, []int{99}},
	{[]string{"family", "kids", "children", "wholesome", "cozy"}, []int{10751}},
	{[]string{"animated", "animation", "cartoon", "pixar", "ghibli"}, []int{16}},
	{[]string{"war", "battle", "soldier"}, []int{10752}},
	{[]string{"history", "historical", "period piece"}, []int{36}},
	{[]string{"music", "musical", "band", "concert"}, []int{10402}},
	{[]string{"western", "cowboy"}, []int{37}},
	{[]string{"sad", "drama", "emotional", "tearjerker", "moving", "dark"}, []int{18}},
}

// defaultGenres is used when the prompt yields no hint.
var defaultGenres = []int{18, 35}

type heuristicProvider struct {
	def     domain.ProviderDefinition
	catalog ports.MetadataCatalog
}

func newHeuristicProvider(def domain.ProviderDefinition, catalog ports.MetadataCatalog) *heuristicProvider {
	return &heuristicProvider{def: def, catalog: catalog}
}

func (p *heuristicProvider) Name() string {
	return defaultString(p.def.Name, string(domain.ProviderHeuristic))
}

func (p *heuristicProvider) Definition() domain.ProviderDefinition {
	return p.def
}

// Fetch answers from the metadata API alone. A reachable API with no matches
// is an empty success: this provider is the end of the chain and the cache
// layer declines to store empty results.
func (p *heuristicProvider) Fetch(ctx context.Context, req ports.ProviderRequest) (domain.RecommendationResult, error) {
	if p.catalog == nil {
		return domain.RecommendationResult{}, domain.NewProviderError(p.Name(), domain.KindUnavailable, fmt.Errorf("no metadata catalog configured"))
	}
	ctx, cancel := context.WithTimeout(ctx, p.def.EffectiveTimeout())
	defer cancel()

	genres := req.GenreIDs
	if len(genres) == 0 {
		genres = guessGenres(req.Prompt)
	}

	items, err := p.catalog.DiscoverByGenre(ctx, ports.DiscoverQuery{
		MediaType:    req.MediaType,
		GenreIDs:     genres,
		SortBy:       "popularity.desc",
		MinVoteCount: 200,
	})
	if err != nil {
		return domain.RecommendationResult{}, domain.NewProviderError(p.Name(), classifyTransport(err), err)
	}

	exclude := make(map[string]struct{}, len(req.Exclude))
	for _, title := range req.Exclude {
		exclude[strings.ToLower(strings.TrimSpace(title))] = struct{}{}
	}

	limit := p.def.EffectiveLimit(req.Limit)
	results := make([]domain.Recommendation, 0, limit)
	for _, item := range items {
		if _, skip := exclude[strings.ToLower(strings.TrimSpace(item.Title))]; skip {
			continue
		}
		results = append(results, domain.Recommendation{
			ID:         item.ID,
			Title:      item.Title,
			MediaType:  item.MediaType,
			Reason:     heuristicReason(item, genres),
			PosterPath: item.PosterPath,
			Year:       item.Year,
		})
		if len(results) == limit {
			break
		}
	}
	return domain.RecommendationResult{Results: results, Provider: p.Name()}, nil
}

// guessGenres scans the prompt for keywords, most matched genres first.
func guessGenres(prompt string) []int {
	prompt = strings.ToLower(prompt)
	score := map[int]int{}
	for _, entry := range keywordGenres {
		for _, kw := range entry.keywords {
			if strings.Contains(prompt, kw) {
				for _, g := range entry.genres {
					score[g]++
				}
			}
		}
	}
	if len(score) == 0 {
		return defaultGenres
	}
	genres := make([]int, 0, len(score))
	for g := range score {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if score[genres[i]] != score[genres[j]] {
			return score[genres[i]] > score[genres[j]]
		}
		return genres[i] < genres[j]
	})
	return genres
}

func heuristicReason(item domain.CatalogItem, requested []int) string {
	for _, g := range item.GenreIDs {
		for _, want := range requested {
			if g == want {
				if name, ok := genreNames[g]; ok {
					return fmt.Sprintf("A popular, well-rated %s pick.", strings.ToLower(name))
				}
			}
		}
	}
	return "A popular, well-rated pick that fits the mood."
}

var _ ports.Provider = (*heuristicProvider)(nil)
