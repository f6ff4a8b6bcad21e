// Package config loads reelai configuration and the mood catalog.
//
// Configuration is layered with koanf: built-in defaults, then the YAML file,
// then REELAI_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/doeshing/reelai/assets"
	appconfig "github.com/doeshing/reelai/internal/application/config"
	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/pkg/filesystem"
	"github.com/doeshing/reelai/internal/ports"
)

const (
	// PathEnvVar overrides the config file location.
	PathEnvVar = "REELAI_CONFIG"
	envPrefix  = "REELAI_"
)

// localConfigFiles are tried after the home config.
var localConfigFiles = []string{"config.yaml", "config.yml"}

// envMappings maps REELAI_* variables (lowercased, prefix removed) to koanf paths.
var envMappings = map[string]string{
	"server_addr":                "server.addr",
	"server_read_timeout":        "server.read_timeout",
	"server_write_timeout":       "server.write_timeout",
	"server_shutdown_timeout":    "server.shutdown_timeout",
	"server_cors_origins":        "server.cors_origins",
	"server_rate_limit_requests": "server.rate_limit_requests",
	"server_rate_limit_window":   "server.rate_limit_window",
	"log_level":                  "log.level",
	"log_format":                 "log.format",
	"cache_backend":              "cache.backend",
	"cache_path":                 "cache.path",
	"cache_max_entries":          "cache.max_entries",
	"cache_janitor_interval":     "cache.janitor_interval",
	"cache_compute_timeout":      "cache.compute_timeout",
	"cache_mood_ttl":             "cache.mood_ttl",
	"cache_discover_ttl":         "cache.discover_ttl",
	"cache_blend_ttl":            "cache.blend_ttl",
	"cache_watchlist_ttl":        "cache.watchlist_ttl",
	"tmdb_base_url":              "tmdb.base_url",
	"tmdb_api_key_env":           "tmdb.api_key_env",
	"tmdb_language":              "tmdb.language",
	"tmdb_timeout":               "tmdb.timeout",
	"tmdb_requests_per_second":   "tmdb.requests_per_second",
	"tmdb_burst":                 "tmdb.burst",
	"enrich_enabled":             "enrich.enabled",
	"enrich_concurrency":         "enrich.concurrency",
	"moods_file":                 "moods_file",
}

// sliceConfigPaths are split on commas when they come from the environment.
var sliceConfigPaths = []string{"server.cors_origins"}

// Loader loads layered configuration (defaults, YAML file, environment).
type Loader struct {
	overridePath string
}

// NewLoader builds a loader. An empty path means the default search order.
func NewLoader(path string) *Loader {
	return &Loader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *Loader) Load(context.Context) (domain.Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(domain.DefaultConfig(), "koanf"), nil); err != nil {
		return domain.Config{}, fmt.Errorf("load defaults: %w", err)
	}

	path, ok := l.existingPath()
	if !ok && l.explicit() {
		return domain.Config{}, fmt.Errorf("config file %s not found", path)
	}
	if ok {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return domain.Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return domain.Config{}, fmt.Errorf("load environment: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg = hydrateDefaults(cfg)

	if err := appconfig.Validate(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Path returns the file Load reads, or the file `config init` would create.
func (l *Loader) Path() string {
	if path, ok := l.existingPath(); ok {
		return path
	}
	return l.preferredPath()
}

// WriteDefault writes the embedded default config to Path. An existing file
// is only replaced when force is set.
func (l *Loader) WriteDefault(force bool) (string, error) {
	path := l.preferredPath()
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config already exists at %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return path, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return path, fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// existingPath walks the search order and returns the first file present.
func (l *Loader) existingPath() (string, bool) {
	if l.overridePath != "" {
		path := filesystem.ExpandHome(l.overridePath)
		_, err := os.Stat(path)
		return path, err == nil
	}
	if custom := os.Getenv(PathEnvVar); custom != "" {
		path := filesystem.ExpandHome(custom)
		_, err := os.Stat(path)
		return path, err == nil
	}
	candidates := append([]string{filesystem.AppDir("config.yaml")}, localConfigFiles...)
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func (l *Loader) explicit() bool {
	return l.overridePath != "" || os.Getenv(PathEnvVar) != ""
}

func (l *Loader) preferredPath() string {
	if l.overridePath != "" {
		return filesystem.ExpandHome(l.overridePath)
	}
	if custom := os.Getenv(PathEnvVar); custom != "" {
		return filesystem.ExpandHome(custom)
	}
	return filesystem.AppDir("config.yaml")
}

// envTransform maps REELAI_SERVER_ADDR to server.addr. Unknown variables are
// skipped so unrelated REELAI_* values cannot pollute the config.
func envTransform(key string) string {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// processSliceFields converts comma-separated env values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = domain.CurrentConfigFormatVersion
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = domain.CacheBackendMemory
	}
	if cfg.Cache.Path == "" {
		switch cfg.Cache.Backend {
		case domain.CacheBackendBadger:
			cfg.Cache.Path = filesystem.AppDir("cache", "badger")
		case domain.CacheBackendSQLite:
			cfg.Cache.Path = filesystem.AppDir("cache", "cache.db")
		case domain.CacheBackendFile:
			cfg.Cache.Path = filesystem.AppDir("cache", "entries")
		}
	} else {
		cfg.Cache.Path = filesystem.ExpandHome(cfg.Cache.Path)
	}
	if cfg.MoodsFile != "" {
		cfg.MoodsFile = filesystem.ExpandHome(cfg.MoodsFile)
	}
	for i := range cfg.Providers {
		if cfg.Providers[i].Kind == "" {
			cfg.Providers[i].Kind = cfg.Providers[i].ResolvedKind()
		}
	}
	return cfg
}

type moodFile struct {
	Moods []domain.Mood `yaml:"moods"`
}

// LoadMoods reads the mood catalog from path, or the embedded catalog when
// path is empty.
func LoadMoods(path string) (*domain.MoodCatalog, error) {
	raw := assets.DefaultMoodsYAML
	if path != "" {
		data, err := os.ReadFile(filesystem.ExpandHome(path))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("moods file %s not found", path)
			}
			return nil, fmt.Errorf("read moods file: %w", err)
		}
		raw = data
	}

	var parsed moodFile
	if err := yamlv3.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse moods: %w", err)
	}
	if len(parsed.Moods) == 0 {
		return nil, errors.New("mood catalog is empty")
	}
	return domain.NewMoodCatalog(parsed.Moods)
}

var _ ports.ConfigProvider = (*Loader)(nil)
