package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/doeshing/reelai/internal/application/recommend"
	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

// Recommender is the application surface served over HTTP.
type Recommender interface {
	Moods() []domain.Mood
	Mood(ctx context.Context, slug string) (domain.RecommendationResult, error)
	Discover(ctx context.Context, in recommend.DiscoverRequest) (domain.RecommendationResult, error)
	Blend(ctx context.Context, in recommend.BlendRequest) (domain.RecommendationResult, error)
	Watchlist(ctx context.Context, in recommend.WatchlistRequest) (domain.WatchlistRecommendations, error)
	Invalidate(ctx context.Context, key string) error
}

// HealthChecker produces the /healthz report.
type HealthChecker interface {
	Run(ctx context.Context) (domain.HealthReport, error)
}

type discoverBody struct {
	Prompt string `json:"prompt" validate:"required"`
	Type   string `json:"type" validate:"omitempty,oneof=all movie tv anime"`
}

type blendBody struct {
	Titles []string `json:"titles" validate:"required,min=2,max=10,dive,required"`
	Type   string   `json:"type" validate:"omitempty,oneof=all movie tv anime"`
}

type watchlistBody struct {
	WatchlistItems []domain.WatchlistItem `json:"watchlistItems" validate:"required,min=1,max=200,dive"`
	ExcludeIDs     []int                  `json:"excludeIds" validate:"omitempty,dive,gt=0"`
}

type moodsResponse struct {
	Moods []domain.Mood `json:"moods"`
}

type handlers struct {
	recommender Recommender
	health      HealthChecker
	logger      ports.Logger
}

func (h *handlers) listMoods(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, moodsResponse{Moods: h.recommender.Moods()})
}

func (h *handlers) mood(w http.ResponseWriter, r *http.Request) {
	result, err := h.recommender.Mood(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handlers) discover(w http.ResponseWriter, r *http.Request) {
	var body discoverBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	result, err := h.recommender.Discover(r.Context(), recommend.DiscoverRequest{
		Prompt:    body.Prompt,
		MediaType: body.Type,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handlers) blend(w http.ResponseWriter, r *http.Request) {
	var body blendBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	result, err := h.recommender.Blend(r.Context(), recommend.BlendRequest{
		Titles:    body.Titles,
		MediaType: body.Type,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	var body watchlistBody
	if !decodeAndValidate(w, r, &body) {
		return
	}
	result, err := h.recommender.Watchlist(r.Context(), recommend.WatchlistRequest{
		Items:      body.WatchlistItems,
		ExcludeIDs: body.ExcludeIDs,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handlers) invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.recommender.Invalidate(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status domain.HealthStatus  `json:"status"`
	Checks []domain.HealthCheck `json:"checks"`
	Error  string               `json:"error,omitempty"`
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		respondJSON(w, http.StatusOK, healthResponse{Status: domain.HealthOK})
		return
	}
	report, err := h.health.Run(r.Context())
	resp := healthResponse{Status: report.Status(), Checks: report.Checks}
	if err != nil {
		resp.Status = domain.HealthError
		resp.Error = err.Error()
	}
	status := http.StatusOK
	if resp.Status == domain.HealthError {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}
