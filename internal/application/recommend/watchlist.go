package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

const watchlistMinVotes = 100

// buildWatchlist runs the genre query and one similarity query per seed in
// parallel. A failing query only empties its own group; the whole build fails
// only when every query failed.
func (s *Service) buildWatchlist(ctx context.Context, in WatchlistRequest) (domain.WatchlistRecommendations, error) {
	genres := topGenres(in.Items, domain.DefaultTopGenres)
	seeds := recentSeeds(in.Items, domain.DefaultSimilarSeeds)

	exclude := make(map[int]bool, len(in.Items)+len(in.ExcludeIDs))
	excludeIDs := make([]int, 0, len(in.Items)+len(in.ExcludeIDs))
	for _, item := range in.Items {
		exclude[item.ID] = true
		excludeIDs = append(excludeIDs, item.ID)
	}
	for _, id := range in.ExcludeIDs {
		if !exclude[id] {
			exclude[id] = true
			excludeIDs = append(excludeIDs, id)
		}
	}

	var (
		genreItems []domain.CatalogItem
		genreErr   error
		similar    = make([][]domain.CatalogItem, len(seeds))
		similarErr = make([]error, len(seeds))
	)

	var g errgroup.Group
	g.SetLimit(s.opts.EnrichConcurrency)

	if len(genres) > 0 {
		ids := make([]int, len(genres))
		for i, genre := range genres {
			ids[i] = genre.ID
		}
		g.Go(func() error {
			genreItems, genreErr = s.catalog.DiscoverByGenre(ctx, ports.DiscoverQuery{
				MediaType:    dominantMediaType(in.Items),
				GenreIDs:     ids,
				SortBy:       "popularity.desc",
				MinVoteCount: watchlistMinVotes,
				ExcludeIDs:   excludeIDs,
			})
			return nil
		})
	}
	for i, seed := range seeds {
		g.Go(func() error {
			similar[i], similarErr[i] = s.catalog.Similar(ctx, seedMediaType(seed), seed.ID)
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	calls, failures := 0, 0
	if len(genres) > 0 {
		calls++
		if genreErr != nil {
			failures++
			firstErr = genreErr
		}
	}
	for i, err := range similarErr {
		calls++
		if err != nil {
			failures++
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn("similar lookup failed", map[string]interface{}{
				"seed":  seeds[i].ID,
				"error": err.Error(),
			})
		}
	}
	if calls > 0 && failures == calls {
		return domain.WatchlistRecommendations{}, fmt.Errorf("watchlist recommendations: %w", firstErr)
	}
	if genreErr != nil {
		s.logger.Warn("genre discovery failed", map[string]interface{}{"error": genreErr.Error()})
	}

	out := domain.WatchlistRecommendations{
		GenreBased: []domain.Recommendation{},
		Similar:    []domain.Recommendation{},
		TopGenres:  genres,
	}
	if out.TopGenres == nil {
		out.TopGenres = []domain.GenreCount{}
	}

	used := make(map[int]bool)
	reason := genreReason(genres)
	for _, item := range genreItems {
		if len(out.GenreBased) >= s.opts.Limit {
			break
		}
		if exclude[item.ID] || used[item.ID] {
			continue
		}
		used[item.ID] = true
		out.GenreBased = append(out.GenreBased, fromCatalog(item, reason))
	}

	// Round-robin across seeds so one prolific seed does not crowd out the rest.
	for depth := 0; len(out.Similar) < s.opts.Limit; depth++ {
		progressed := false
		for i, items := range similar {
			if depth >= len(items) {
				continue
			}
			progressed = true
			item := items[depth]
			if exclude[item.ID] || used[item.ID] || len(out.Similar) >= s.opts.Limit {
				continue
			}
			used[item.ID] = true
			out.Similar = append(out.Similar, fromCatalog(item, similarReason(seeds[i])))
		}
		if !progressed {
			break
		}
	}

	return out, nil
}

// topGenres ranks genres by watchlist frequency, ties broken by first appearance.
func topGenres(items []domain.WatchlistItem, n int) []domain.GenreCount {
	counts := make(map[int]int)
	order := make(map[int]int)
	for _, item := range items {
		for _, id := range item.GenreIDs {
			if _, ok := order[id]; !ok {
				order[id] = len(order)
			}
			counts[id]++
		}
	}

	ranked := make([]domain.GenreCount, 0, len(counts))
	for id, count := range counts {
		ranked = append(ranked, domain.GenreCount{ID: id, Name: domain.GenreNames[id], Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return order[ranked[i].ID] < order[ranked[j].ID]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// recentSeeds picks the n most recently added items. Without timestamps the
// end of the list is treated as most recent.
func recentSeeds(items []domain.WatchlistItem, n int) []domain.WatchlistItem {
	ordered := make([]domain.WatchlistItem, len(items))
	for i, item := range items {
		ordered[len(items)-1-i] = item
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AddedAt.After(ordered[j].AddedAt)
	})
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	return ordered
}

func dominantMediaType(items []domain.WatchlistItem) domain.MediaType {
	var movies, shows int
	for _, item := range items {
		switch seedMediaType(item) {
		case domain.MediaTV:
			shows++
		default:
			movies++
		}
	}
	switch {
	case shows == 0:
		return domain.MediaMovie
	case movies == 0:
		return domain.MediaTV
	default:
		return domain.MediaAll
	}
}

func seedMediaType(item domain.WatchlistItem) domain.MediaType {
	switch item.MediaType {
	case domain.MediaTV, domain.MediaAnime:
		return domain.MediaTV
	default:
		return domain.MediaMovie
	}
}

func fromCatalog(item domain.CatalogItem, reason string) domain.Recommendation {
	return domain.Recommendation{
		ID:         item.ID,
		Title:      item.Title,
		MediaType:  item.MediaType,
		Reason:     reason,
		PosterPath: item.PosterPath,
		Year:       item.Year,
	}
}

func genreReason(genres []domain.GenreCount) string {
	names := make([]string, 0, len(genres))
	for _, genre := range genres {
		if genre.Name != "" {
			names = append(names, genre.Name)
		}
	}
	if len(names) == 0 {
		return "Popular with fans of your watchlist"
	}
	return "Because you like " + strings.Join(names, ", ")
}

func similarReason(seed domain.WatchlistItem) string {
	if seed.Title == "" {
		return "Similar to a title on your watchlist"
	}
	return "Similar to " + seed.Title
}
