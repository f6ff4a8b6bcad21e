package recommend

import (
	"strings"
	"testing"

	"github.com/doeshing/reelai/internal/domain"
)

func TestKeys(t *testing.T) {
	if got := MoodKey(" Cozy "); got != "mood:cozy:recommendations" {
		t.Errorf("MoodKey = %q", got)
	}

	d1 := DiscoverKey(domain.MediaTV, "Slow  burn\tmysteries")
	d2 := DiscoverKey(domain.MediaTV, "slow burn mysteries")
	if d1 != d2 {
		t.Errorf("equivalent prompts produced different keys: %s vs %s", d1, d2)
	}
	if !strings.HasPrefix(d1, "discover:tv:") || len(strings.TrimPrefix(d1, "discover:tv:")) != 16 {
		t.Errorf("unexpected discover key %q", d1)
	}
	if d1 == DiscoverKey(domain.MediaMovie, "slow burn mysteries") {
		t.Error("media type must be part of the discover key")
	}

	if BlendKey(domain.MediaAll, []string{"Heat", "Ronin"}) != BlendKey(domain.MediaAll, []string{"ronin", "heat"}) {
		t.Error("blend key must not depend on title order or case")
	}

	w := WatchlistKey([]domain.WatchlistItem{{ID: 1}, {ID: 2}}, []int{9, 3})
	if w != WatchlistKey([]domain.WatchlistItem{{ID: 1}, {ID: 2}}, []int{3, 9}) {
		t.Error("exclusion order must not change the watchlist key")
	}
	if w == WatchlistKey([]domain.WatchlistItem{{ID: 2}, {ID: 1}}, []int{3, 9}) {
		t.Error("item order selects similarity seeds and must change the key")
	}

	tests := map[string]string{
		"mood:cozy:recommendations": "mood",
		"watchlist:abc":             "watchlist",
		"bare":                      "bare",
	}
	for key, want := range tests {
		if got := namespaceOf(key); got != want {
			t.Errorf("namespaceOf(%q) = %q, want %q", key, got, want)
		}
	}
}
