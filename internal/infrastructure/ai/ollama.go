package ai

import (
	"net/http"

	"github.com/doeshing/reelai/internal/domain"
)

const (
	ollamaEndpoint     = "http://localhost:11434/v1/chat/completions"
	ollamaDefaultModel = "llama3.1"
)

// ollamaAdapter talks to Ollama's OpenAI-compatible endpoint.
func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest: func(def domain.ProviderDefinition, messages []promptMessage) ([]byte, error) {
			def.ModelID = defaultString(def.ModelID, ollamaDefaultModel)
			return buildChatCompletionRequest(def, messages)
		},
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOllamaHeaders,
	}
}

// setOllamaHeaders forwards an optional bearer token for proxied instances.
func setOllamaHeaders(req *http.Request, def domain.ProviderDefinition) error {
	if token := getEnv(def.AuthEnvVar, ""); token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}
	return nil
}
