package domain

import (
	"fmt"
	"strings"
)

// Mood is one entry of the curated mood catalog.
type Mood struct {
	Slug        string    `yaml:"slug" json:"slug"`
	Label       string    `yaml:"label" json:"label"`
	Emoji       string    `yaml:"emoji,omitempty" json:"emoji,omitempty"`
	Description string    `yaml:"description" json:"description"`
	Prompt      string    `yaml:"prompt" json:"-"`
	MediaType   MediaType `yaml:"media_type,omitempty" json:"mediaType,omitempty"`
	GenreIDs    []int     `yaml:"genre_ids" json:"genreIds"`
}

// MoodCatalog is an ordered, slug-indexed mood list.
type MoodCatalog struct {
	moods []Mood
	index map[string]int
}

// NewMoodCatalog indexes moods by slug. Duplicate or empty slugs are rejected.
func NewMoodCatalog(moods []Mood) (*MoodCatalog, error) {
	c := &MoodCatalog{moods: make([]Mood, 0, len(moods)), index: make(map[string]int, len(moods))}
	for _, m := range moods {
		slug := NormalizeSlug(m.Slug)
		if slug == "" {
			return nil, fmt.Errorf("mood %q has no slug", m.Label)
		}
		if _, dup := c.index[slug]; dup {
			return nil, fmt.Errorf("mood %s declared twice", slug)
		}
		if strings.TrimSpace(m.Prompt) == "" {
			return nil, fmt.Errorf("mood %s has no prompt", slug)
		}
		m.Slug = slug
		if m.Label == "" {
			m.Label = slug
		}
		if m.MediaType == "" {
			m.MediaType = MediaAll
		}
		c.index[slug] = len(c.moods)
		c.moods = append(c.moods, m)
	}
	return c, nil
}

// Find returns the mood for slug.
func (c *MoodCatalog) Find(slug string) (Mood, bool) {
	if c == nil {
		return Mood{}, false
	}
	i, ok := c.index[NormalizeSlug(slug)]
	if !ok {
		return Mood{}, false
	}
	return c.moods[i], true
}

// List returns the moods in declaration order.
func (c *MoodCatalog) List() []Mood {
	if c == nil {
		return nil
	}
	out := make([]Mood, len(c.moods))
	copy(out, c.moods)
	return out
}

// Len returns the number of moods.
func (c *MoodCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.moods)
}

// NormalizeSlug lowercases and trims a slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
