package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/reelai/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoader_LayersFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := writeFile(t, dir, "config.yaml", `
server:
  addr: ":9000"
providers:
  - name: local
    endpoint: http://localhost:11434/v1/chat/completions
    model_id: llama3.1
  - name: heuristic
    kind: heuristic
cache:
  backend: sqlite
  mood_ttl: 2h
`)
	t.Setenv("REELAI_SERVER_ADDR", ":9100")
	t.Setenv("REELAI_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REELAI_CACHE_DISCOVER_TTL", "30m")
	t.Setenv("REELAI_UNRELATED", "ignored")

	cfg, err := NewLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9100" {
		t.Errorf("env must override file: addr = %s", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Cache.MoodTTL != 2*time.Hour || cfg.Cache.DiscoverTTL != 30*time.Minute {
		t.Errorf("ttls = %v / %v", cfg.Cache.MoodTTL, cfg.Cache.DiscoverTTL)
	}
	if cfg.Cache.BlendTTL != domain.DefaultBlendTTL {
		t.Errorf("default blend ttl lost: %v", cfg.Cache.BlendTTL)
	}
	if cfg.Cache.Path != filepath.Join(dir, ".reelai", "cache", "cache.db") {
		t.Errorf("sqlite path = %s", cfg.Cache.Path)
	}
	if got := cfg.ProviderNames(); len(got) != 2 || got[0] != "local" {
		t.Fatalf("file providers must replace defaults, got %v", got)
	}
	if cfg.Providers[0].Kind != domain.ProviderOllama {
		t.Errorf("kind not inferred: %s", cfg.Providers[0].Kind)
	}
	if cfg.TMDB.APIKeyEnv != "TMDB_API_KEY" {
		t.Errorf("tmdb defaults lost: %+v", cfg.TMDB)
	}
}

func TestLoader_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(PathEnvVar, "")
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := NewLoader("").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.ProviderNames(); len(got) != 3 || got[2] != "heuristic" {
		t.Fatalf("default chain = %v", got)
	}
	if cfg.Cache.MoodTTL != 24*time.Hour {
		t.Fatalf("mood ttl = %v", cfg.Cache.MoodTTL)
	}
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	if _, err := NewLoader(filepath.Join(dir, "missing.yaml")).Load(context.Background()); err == nil {
		t.Error("expected error for an explicit missing config file")
	}

	bad := writeFile(t, dir, "bad.yaml", "cache:\n  backend: redis\n")
	if _, err := NewLoader(bad).Load(context.Background()); err == nil {
		t.Error("expected validation error for unknown backend")
	}

	dup := writeFile(t, dir, "dup.yaml", "providers:\n  - name: a\n    kind: heuristic\n  - name: a\n    kind: heuristic\n")
	if _, err := NewLoader(dup).Load(context.Background()); err == nil {
		t.Error("expected validation error for duplicate providers")
	}
}

func TestLoader_WriteDefaultRoundTrips(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "nested", "config.yaml")
	loader := NewLoader(path)

	written, err := loader.WriteDefault(false)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if written != path || loader.Path() != path {
		t.Fatalf("paths differ: %s vs %s", written, loader.Path())
	}
	if _, err := loader.WriteDefault(false); err == nil {
		t.Fatal("expected refusal to overwrite without force")
	}
	if _, err := loader.WriteDefault(true); err != nil {
		t.Fatalf("forced WriteDefault: %v", err)
	}

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load written default: %v", err)
	}
	want := domain.DefaultConfig()
	if len(cfg.Providers) != len(want.Providers) || cfg.Cache.WatchlistTTL != want.Cache.WatchlistTTL {
		t.Fatalf("embedded default drifted from DefaultConfig: %+v", cfg)
	}
	if cfg.Server.Addr != want.Server.Addr || cfg.TMDB.BaseURL != want.TMDB.BaseURL {
		t.Fatalf("embedded default drifted from DefaultConfig: %+v", cfg)
	}
}

func TestLoadMoods(t *testing.T) {
	catalog, err := LoadMoods("")
	if err != nil {
		t.Fatalf("LoadMoods embedded: %v", err)
	}
	if catalog.Len() != 10 {
		t.Fatalf("embedded catalog has %d moods, want 10", catalog.Len())
	}
	cozy, ok := catalog.Find("cozy")
	if !ok || cozy.Label != "Cozy Night In" || len(cozy.GenreIDs) == 0 || cozy.Prompt == "" {
		t.Fatalf("unexpected cozy mood %+v", cozy)
	}

	dir := t.TempDir()
	custom := writeFile(t, dir, "moods.yaml", "moods:\n  - slug: rainy\n    prompt: films for a rainy day\n    media_type: movie\n")
	catalog, err = LoadMoods(custom)
	if err != nil {
		t.Fatalf("LoadMoods custom: %v", err)
	}
	rainy, ok := catalog.Find("rainy")
	if !ok || rainy.MediaType != domain.MediaMovie || catalog.Len() != 1 {
		t.Fatalf("unexpected custom catalog %+v", catalog.List())
	}

	if _, err := LoadMoods(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatal("expected error for missing moods file")
	}
	empty := writeFile(t, dir, "empty.yaml", "moods: []\n")
	if _, err := LoadMoods(empty); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}
