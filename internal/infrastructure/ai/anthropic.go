package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/doeshing/reelai/internal/domain"
)

const (
	anthropicEndpoint     = "https://api.anthropic.com/v1/messages"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
)

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func buildAnthropicRequest(def domain.ProviderDefinition, messages []promptMessage) ([]byte, error) {
	system, chat := splitSystemMessages(messages)
	request := anthropicRequest{
		Model:     defaultString(def.ModelID, anthropicDefaultModel),
		MaxTokens: def.EffectiveMaxTokens(),
		System:    system,
	}
	for _, msg := range chat {
		request.Messages = append(request.Messages, anthropicMessage{
			Role:    strings.ToLower(msg.Role),
			Content: []anthropicContent{{Type: "text", Text: msg.Content}},
		})
	}
	return json.Marshal(request)
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	var parts []string
	for _, c := range response.Content {
		if c.Type == "" || c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic response has no text content")
	}
	return strings.Join(parts, ""), nil
}

func setAnthropicHeaders(req *http.Request, def domain.ProviderDefinition) error {
	apiKey := getEnv(def.AuthEnvVar, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("%w: set %s or ANTHROPIC_API_KEY", errMissingCredentials, def.AuthEnvVar)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return nil
}
