package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/doeshing/reelai/internal/domain"
)

const keyHashLength = 16

// MoodKey is the cache key for a mood's recommendations.
func MoodKey(slug string) string {
	return fmt.Sprintf("%s:%s:recommendations", domain.KeyPrefixMood, domain.NormalizeSlug(slug))
}

// DiscoverKey hashes the normalized prompt so equivalent wording shares an entry.
func DiscoverKey(mediaType domain.MediaType, prompt string) string {
	return fmt.Sprintf("%s:%s:%s", domain.KeyPrefixDiscover, mediaType, hashKey(normalizePrompt(prompt)))
}

// BlendKey is order-insensitive over titles.
func BlendKey(mediaType domain.MediaType, titles []string) string {
	normalized := make([]string, len(titles))
	for i, title := range titles {
		normalized[i] = normalizePrompt(title)
	}
	sort.Strings(normalized)
	return fmt.Sprintf("%s:%s:%s", domain.KeyPrefixBlend, mediaType, hashKey(strings.Join(normalized, "|")))
}

// WatchlistKey hashes the watchlist identity (ids, types, order) and exclusions.
// Item order matters because similarity seeds come from the most recent items.
func WatchlistKey(items []domain.WatchlistItem, excludeIDs []int) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(string(item.MediaType))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(item.ID))
		b.WriteByte(',')
	}
	excluded := append([]int(nil), excludeIDs...)
	sort.Ints(excluded)
	b.WriteByte('|')
	for _, id := range excluded {
		b.WriteString(strconv.Itoa(id))
		b.WriteByte(',')
	}
	return fmt.Sprintf("%s:%s", domain.KeyPrefixWatchlist, hashKey(b.String()))
}

// namespaceOf returns the key family used for metrics and TTL lookup.
func namespaceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}

func normalizePrompt(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:keyHashLength]
}
