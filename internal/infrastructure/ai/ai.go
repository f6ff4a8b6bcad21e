// Package ai provides the recommendation provider adapters and their factory.
//
// This package implements a configuration-driven approach to providers:
//   - Factory: Creates provider instances based on provider definitions
//   - HTTP Provider: One request/parse loop shared by every chat-style AI API
//   - Prompt Templates: Renders the recommendation request into chat messages
//   - Heuristic: Metadata-API-only terminal fallback that needs no AI vendor
//
// Every HTTP adapter is wrapped in a circuit breaker, and every failure is
// reported as a *domain.ProviderError so the resolver can fall through.
package ai

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/doeshing/reelai/internal/domain"
)

// promptMessage follows the role/content pair required by most chat APIs.
type promptMessage struct {
	Role    string
	Content string
}

// classifyStatus maps an HTTP status to a provider error kind.
func classifyStatus(code int) (domain.ProviderErrorKind, bool) {
	switch {
	case code == http.StatusTooManyRequests:
		return domain.KindRateLimited, true
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return domain.KindTimeout, true
	case code >= 500:
		return domain.KindUnavailable, true
	case code >= 400:
		// Auth and request-shape failures: this provider cannot serve us.
		return domain.KindUnavailable, true
	default:
		return "", false
	}
}

// classifyTransport maps a transport error to a provider error kind.
func classifyTransport(err error) domain.ProviderErrorKind {
	var statusErr interface{ StatusCode() int }
	if errors.As(err, &statusErr) {
		if kind, ok := classifyStatus(statusErr.StatusCode()); ok {
			return kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.KindTimeout
	}
	return domain.KindUnavailable
}
