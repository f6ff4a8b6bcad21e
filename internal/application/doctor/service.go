package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

const probeKey = "doctor:probe"

// StatefulProvider is a provider that reports a circuit breaker state.
type StatefulProvider interface {
	State() string
}

// MetadataStatus reports whether the metadata API has credentials.
type MetadataStatus interface {
	Configured() bool
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          ports.CacheStore
	Providers      []ports.Provider
	Metadata       MetadataStatus
	Moods          *domain.MoodCatalog
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config", fmt.Sprintf("format %s, %d providers", cfg.ConfigFormatVersion, len(cfg.ActiveProviders()))))

	if s.Moods != nil && s.Moods.Len() > 0 {
		checks = append(checks, ok("Mood catalog", fmt.Sprintf("%d moods", s.Moods.Len())))
	} else {
		checks = append(checks, fail("Mood catalog", "no moods loaded"))
	}

	checks = append(checks, s.storeCheck(ctx, cfg.Cache.Backend))

	for _, provider := range s.Providers {
		checks = append(checks, s.providerCheck(provider))
	}

	checks = append(checks, s.metadataCheck())

	return domain.HealthReport{Checks: checks}, nil
}

// storeCheck writes, reads back and deletes a probe key.
func (s *Service) storeCheck(ctx context.Context, backend string) domain.HealthCheck {
	name := "Cache store"
	if backend != "" {
		name = fmt.Sprintf("Cache store (%s)", backend)
	}
	if s.Store == nil {
		return fail(name, "not initialized")
	}
	value := []byte(time.Now().UTC().Format(domain.TimestampFormat))
	if err := s.Store.Set(ctx, probeKey, value, time.Minute); err != nil {
		return warn(name, fmt.Sprintf("write failed, results will not be cached: %v", err))
	}
	got, found, err := s.Store.Get(ctx, probeKey)
	_ = s.Store.Delete(ctx, probeKey)
	switch {
	case err != nil:
		return warn(name, fmt.Sprintf("read failed: %v", err))
	case !found || string(got) != string(value):
		return warn(name, "probe value did not round-trip")
	}
	return ok(name, "read/write ok")
}

func (s *Service) providerCheck(provider ports.Provider) domain.HealthCheck {
	def := provider.Definition()
	name := "Provider " + provider.Name()

	if sp, isStateful := provider.(StatefulProvider); isStateful && sp.State() == "open" {
		return warn(name, "circuit open, provider is being skipped")
	}

	switch def.ResolvedKind() {
	case domain.ProviderHeuristic:
		if s.Metadata == nil || !s.Metadata.Configured() {
			return warn(name, "metadata API not configured, heuristic fallback returns nothing")
		}
		return ok(name, "offline heuristic ready")
	case domain.ProviderOllama:
		return ok(name, fmt.Sprintf("local model %s", defaultString(def.ModelID, "llama3.1")))
	default:
		if envMissing(def.AuthEnvVar) {
			return warn(name, fmt.Sprintf("%s missing", defaultString(def.AuthEnvVar, "API key env var")))
		}
		return ok(name, fmt.Sprintf("credentials detected for %s", defaultString(def.ModelID, string(def.ResolvedKind()))))
	}
}

func (s *Service) metadataCheck() domain.HealthCheck {
	if s.Metadata == nil || !s.Metadata.Configured() {
		return warn("Metadata API", "TMDB key missing, enrichment and /recommendations disabled")
	}
	return ok("Metadata API", "configured")
}

func envMissing(name string) bool {
	return name == "" || strings.TrimSpace(os.Getenv(name)) == ""
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
