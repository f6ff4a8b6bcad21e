package domain

import (
	"strings"
	"time"
)

// ProviderKind selects the adapter used for a provider entry.
type ProviderKind string

const (
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderOpenAI    ProviderKind = "openai"
	ProviderOllama    ProviderKind = "ollama"
	ProviderHeuristic ProviderKind = "heuristic"
)

// KnownProviderKinds lists the adapters the factory can build.
var KnownProviderKinds = []ProviderKind{ProviderAnthropic, ProviderOpenAI, ProviderOllama, ProviderHeuristic}

// ProviderDefinition describes one entry of the fallback chain as declared in
// the config file. The chain order is the order of the providers list.
type ProviderDefinition struct {
	Name       string        `koanf:"name" yaml:"name"`
	Kind       ProviderKind  `koanf:"kind" yaml:"kind,omitempty"`
	Endpoint   string        `koanf:"endpoint" yaml:"endpoint,omitempty"`
	AuthEnvVar string        `koanf:"auth_env_var" yaml:"auth_env_var,omitempty"`
	OrgEnvVar  string        `koanf:"org_env_var" yaml:"org_env_var,omitempty"`
	ModelID    string        `koanf:"model_id" yaml:"model_id,omitempty"`
	MaxTokens  int           `koanf:"max_tokens" yaml:"max_tokens,omitempty"`
	Timeout    time.Duration `koanf:"timeout" yaml:"timeout,omitempty"`
	Limit      int           `koanf:"limit" yaml:"limit,omitempty"`
	Disabled   bool          `koanf:"disabled" yaml:"disabled,omitempty"`
}

// ResolvedKind returns Kind, inferring it from the endpoint when unset.
func (p ProviderDefinition) ResolvedKind() ProviderKind {
	if p.Kind != "" {
		return ProviderKind(strings.ToLower(string(p.Kind)))
	}
	endpoint := strings.ToLower(p.Endpoint)
	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return ProviderAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return ProviderOpenAI
	case strings.Contains(endpoint, "ollama"), strings.Contains(endpoint, "localhost:11434"):
		return ProviderOllama
	case endpoint == "":
		return ProviderHeuristic
	default:
		// Unknown hosts are treated as OpenAI-compatible chat endpoints.
		return ProviderOpenAI
	}
}

// EffectiveTimeout returns Timeout or the default provider timeout.
func (p ProviderDefinition) EffectiveTimeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultProviderTimeout
	}
	return p.Timeout
}

// EffectiveMaxTokens returns MaxTokens or the default.
func (p ProviderDefinition) EffectiveMaxTokens() int {
	if p.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return p.MaxTokens
}

// EffectiveLimit returns how many recommendations to request.
func (p ProviderDefinition) EffectiveLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	if p.Limit > 0 {
		return p.Limit
	}
	return DefaultRecommendationLimit
}
