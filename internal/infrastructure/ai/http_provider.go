package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

// maxResponseBytes caps how much of a provider body is read.
const maxResponseBytes = 1 << 20

var errMissingCredentials = errors.New("missing API key")

type httpProvider struct {
	name       string
	def        domain.ProviderDefinition
	endpoint   string
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	buildRequest  func(domain.ProviderDefinition, []promptMessage) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.ProviderDefinition) error
}

func newHTTPProvider(def domain.ProviderDefinition, endpoint string, client *http.Client, adapter providerAdapter) *httpProvider {
	return &httpProvider{
		name:       defaultString(def.Name, string(def.ResolvedKind())),
		def:        def,
		endpoint:   defaultString(def.Endpoint, endpoint),
		httpClient: client,
		adapter:    adapter,
	}
}

func (p *httpProvider) Name() string {
	return p.name
}

func (p *httpProvider) Definition() domain.ProviderDefinition {
	return p.def
}

func (p *httpProvider) Fetch(ctx context.Context, req ports.ProviderRequest) (domain.RecommendationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.def.EffectiveTimeout())
	defer cancel()

	messages, err := renderPromptMessages(p.def, req)
	if err != nil {
		return domain.RecommendationResult{}, p.fail(domain.KindUnavailable, err)
	}
	requestBody, err := p.adapter.buildRequest(p.def, messages)
	if err != nil {
		return domain.RecommendationResult{}, p.fail(domain.KindUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return domain.RecommendationResult{}, p.fail(domain.KindUnavailable, err)
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := p.adapter.setHeaders(httpReq, p.def); err != nil {
		return domain.RecommendationResult{}, p.fail(domain.KindUnavailable, err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return domain.RecommendationResult{}, p.fail(classifyTransport(err), err)
	}
	defer resp.Body.Close()

	if kind, failed := classifyStatus(resp.StatusCode); failed {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RecommendationResult{}, p.fail(kind, fmt.Errorf("%s: %s", resp.Status, truncate(string(snippet), 200)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.RecommendationResult{}, p.fail(classifyTransport(err), err)
	}

	content, err := p.adapter.parseResponse(body)
	if err != nil {
		return domain.RecommendationResult{}, p.fail(domain.KindInvalidResponse, err)
	}
	recs, err := parseRecommendations(content, req.MediaType, p.def.EffectiveLimit(req.Limit))
	if err != nil {
		return domain.RecommendationResult{}, p.fail(domain.KindInvalidResponse, err)
	}

	return domain.RecommendationResult{Results: recs, Provider: p.name}, nil
}

func (p *httpProvider) fail(kind domain.ProviderErrorKind, err error) error {
	return domain.NewProviderError(p.name, kind, err)
}

var _ ports.Provider = (*httpProvider)(nil)
