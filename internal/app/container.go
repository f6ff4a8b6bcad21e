package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/doeshing/reelai/internal/application/doctor"
	"github.com/doeshing/reelai/internal/application/recommend"
	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/infrastructure/ai"
	"github.com/doeshing/reelai/internal/infrastructure/cache"
	"github.com/doeshing/reelai/internal/infrastructure/config"
	"github.com/doeshing/reelai/internal/infrastructure/httpapi"
	"github.com/doeshing/reelai/internal/infrastructure/tmdb"
	"github.com/doeshing/reelai/internal/pkg/logger"
	"github.com/doeshing/reelai/internal/ports"
)

// Options tunes container construction from the CLI.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
// It is built once per process.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.Loader
	Logger         *logger.ZeroLogger
	CacheStore     ports.CacheStore
	Metadata       *tmdb.Client
	Providers      []ports.Provider
	Recommend      *recommend.Service
	DoctorService  *doctor.Service
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{Level: level, Format: cfg.Log.Format, Output: os.Stderr})

	moods, err := config.LoadMoods(cfg.MoodsFile)
	if err != nil {
		return nil, err
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	metadata := tmdb.New(cfg.TMDB)
	var catalog ports.MetadataCatalog
	if metadata.Configured() {
		catalog = metadata
	}

	providers, err := ai.NewFactory(catalog, log).BuildChain(cfg.ActiveProviders())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	resolver := recommend.NewResolver(providers, log)
	service := recommend.NewService(resolver, store, moods, catalog, log, recommend.OptionsFromConfig(cfg))

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Store:          store,
		Providers:      providers,
		Metadata:       metadata,
		Moods:          moods,
	}

	log.Debug("container ready", map[string]interface{}{
		"providers": cfg.ProviderNames(),
		"backend":   cfg.Cache.Backend,
		"moods":     moods.Len(),
	})

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		CacheStore:     store,
		Metadata:       metadata,
		Providers:      providers,
		Recommend:      service,
		DoctorService:  doctorService,
	}, nil
}

// HTTPServer builds the API server for the serve command.
func (c *Container) HTTPServer() *http.Server {
	router := httpapi.NewRouter(c.Recommend, c.DoctorService, c.Logger, httpapi.Options{
		CORSOrigins:       c.Config.Server.CORSOrigins,
		RateLimitRequests: c.Config.Server.RateLimitRequests,
		RateLimitWindow:   c.Config.Server.RateLimitWindow,
	})
	return httpapi.NewHTTPServer(c.Config.Server, router, c.Config.GetComputeTimeout())
}

// Close releases the cache store.
func (c *Container) Close() error {
	if c.CacheStore == nil {
		return nil
	}
	return c.CacheStore.Close()
}
