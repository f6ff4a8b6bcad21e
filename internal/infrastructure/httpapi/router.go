// Package httpapi exposes the recommendation service over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doeshing/reelai/internal/ports"
)

// Options configures cross-cutting middleware.
type Options struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the chi router for the API. health may be nil.
func NewRouter(recommender Recommender, health HealthChecker, logger ports.Logger, opts Options) http.Handler {
	h := &handlers{recommender: recommender, health: health, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(Instrument(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitRequests > 0 && opts.RateLimitWindow > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitRequests, opts.RateLimitWindow))
		}
		r.Get("/moods", h.listMoods)
		r.Get("/mood/{slug}", h.mood)
		r.Post("/discover", h.discover)
		r.Post("/blend", h.blend)
		r.Post("/recommendations", h.recommendations)
		r.Delete("/cache/{key}", h.invalidate)
	})

	return r
}
