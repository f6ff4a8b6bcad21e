package ai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/doeshing/reelai/internal/domain"
)

// aiItem is one element of the model's JSON array. Year arrives as a number
// or a string depending on the model.
type aiItem struct {
	Title  string          `json:"title"`
	Type   string          `json:"type"`
	Reason string          `json:"reason"`
	Year   json.RawMessage `json:"year"`
}

// cleanJSON strips markdown fences and surrounding prose, keeping the
// outermost JSON array.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// parseRecommendations decodes model output into recommendations, dropping
// items without a title. Zero usable items is an error.
func parseRecommendations(content string, fallbackType domain.MediaType, limit int) ([]domain.Recommendation, error) {
	cleaned := cleanJSON(content)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model output")
	}

	var items []aiItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]domain.Recommendation, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, domain.Recommendation{
			Title:     title,
			MediaType: itemType(it.Type, fallbackType),
			Reason:    strings.TrimSpace(it.Reason),
			Year:      parseYear(it.Year),
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("model output contained no titled recommendations")
	}
	return out, nil
}

func itemType(raw string, fallback domain.MediaType) domain.MediaType {
	if mt, ok := domain.ParseMediaType(raw); ok && mt != domain.MediaAll {
		return mt
	}
	switch fallback {
	case domain.MediaTV, domain.MediaAnime, domain.MediaAnimation:
		return fallback
	default:
		return domain.MediaMovie
	}
}

func parseYear(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if len(s) > 4 {
		s = s[:4]
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1870 || y > 2100 {
		return 0
	}
	return y
}
