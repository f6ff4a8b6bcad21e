package domain

import "time"

// Config mirrors ~/.reelai/config.yaml.
type Config struct {
	ConfigFormatVersion string               `koanf:"config_format_version" yaml:"config_format_version"`
	Server              ServerSettings       `koanf:"server" yaml:"server"`
	Log                 LogSettings          `koanf:"log" yaml:"log"`
	Providers           []ProviderDefinition `koanf:"providers" yaml:"providers"`
	Cache               CacheSettings        `koanf:"cache" yaml:"cache"`
	TMDB                TMDBSettings         `koanf:"tmdb" yaml:"tmdb"`
	Enrich              EnrichSettings       `koanf:"enrich" yaml:"enrich"`
	MoodsFile           string               `koanf:"moods_file" yaml:"moods_file,omitempty"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Addr              string        `koanf:"addr" yaml:"addr"`
	ReadTimeout       time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins" yaml:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" yaml:"rate_limit_window"`
}

// LogSettings configures zerolog output.
type LogSettings struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
	CacheBackendSQLite = "sqlite"
	CacheBackendFile   = "file"
)

// CacheSettings selects the cache store and per-family TTLs.
type CacheSettings struct {
	Backend         string        `koanf:"backend" yaml:"backend"`
	Path            string        `koanf:"path" yaml:"path,omitempty"`
	MaxEntries      int           `koanf:"max_entries" yaml:"max_entries"`
	JanitorInterval time.Duration `koanf:"janitor_interval" yaml:"janitor_interval"`
	ComputeTimeout  time.Duration `koanf:"compute_timeout" yaml:"compute_timeout"`
	MoodTTL         time.Duration `koanf:"mood_ttl" yaml:"mood_ttl"`
	DiscoverTTL     time.Duration `koanf:"discover_ttl" yaml:"discover_ttl"`
	BlendTTL        time.Duration `koanf:"blend_ttl" yaml:"blend_ttl"`
	WatchlistTTL    time.Duration `koanf:"watchlist_ttl" yaml:"watchlist_ttl"`
}

// TMDBSettings configures the metadata API client.
type TMDBSettings struct {
	BaseURL           string        `koanf:"base_url" yaml:"base_url"`
	ImageBaseURL      string        `koanf:"image_base_url" yaml:"image_base_url"`
	APIKeyEnv         string        `koanf:"api_key_env" yaml:"api_key_env"`
	Language          string        `koanf:"language" yaml:"language"`
	Timeout           time.Duration `koanf:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `koanf:"burst" yaml:"burst"`
}

// EnrichSettings toggles metadata enrichment of AI results.
type EnrichSettings struct {
	Enabled     bool `koanf:"enabled" yaml:"enabled"`
	Concurrency int  `koanf:"concurrency" yaml:"concurrency"`
}

// DefaultConfig returns the built-in configuration used as the lowest layer.
func DefaultConfig() Config {
	return Config{
		ConfigFormatVersion: CurrentConfigFormatVersion,
		Server: ServerSettings{
			Addr:              ":8080",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      90 * time.Second,
			ShutdownTimeout:   DefaultShutdownTimeout,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Log: LogSettings{Level: "info", Format: "json"},
		Providers: []ProviderDefinition{
			{
				Name:       "anthropic",
				Kind:       ProviderAnthropic,
				Endpoint:   "https://api.anthropic.com/v1/messages",
				AuthEnvVar: "ANTHROPIC_API_KEY",
				ModelID:    "claude-3-5-haiku-latest",
				MaxTokens:  DefaultMaxTokens,
				Timeout:    DefaultProviderTimeout,
			},
			{
				Name:       "openai",
				Kind:       ProviderOpenAI,
				Endpoint:   "https://api.openai.com/v1/chat/completions",
				AuthEnvVar: "OPENAI_API_KEY",
				OrgEnvVar:  "OPENAI_ORG_ID",
				ModelID:    "gpt-4o-mini",
				MaxTokens:  DefaultMaxTokens,
				Timeout:    DefaultProviderTimeout,
			},
			{
				Name:    "heuristic",
				Kind:    ProviderHeuristic,
				Timeout: DefaultProviderTimeout,
			},
		},
		Cache: CacheSettings{
			Backend:         CacheBackendMemory,
			MaxEntries:      DefaultMaxCacheEntries,
			JanitorInterval: DefaultJanitorInterval,
			ComputeTimeout:  DefaultComputeTimeout,
			MoodTTL:         DefaultMoodTTL,
			DiscoverTTL:     DefaultDiscoverTTL,
			BlendTTL:        DefaultBlendTTL,
			WatchlistTTL:    DefaultWatchlistTTL,
		},
		TMDB: TMDBSettings{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p/w500",
			APIKeyEnv:         "TMDB_API_KEY",
			Language:          "en-US",
			Timeout:           DefaultHTTPClientTimeout,
			RequestsPerSecond: 20,
			Burst:             10,
		},
		Enrich: EnrichSettings{Enabled: true, Concurrency: DefaultEnrichConcurrency},
	}
}

// CurrentConfigFormatVersion is written by `config init`.
const CurrentConfigFormatVersion = "1"
