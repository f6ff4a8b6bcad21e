package ai

import (
	"fmt"
	"net/http"

	"github.com/doeshing/reelai/internal/domain"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4o-mini"
)

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest: func(def domain.ProviderDefinition, messages []promptMessage) ([]byte, error) {
			def.ModelID = defaultString(def.ModelID, openAIDefaultModel)
			return buildChatCompletionRequest(def, messages)
		},
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func setOpenAIHeaders(req *http.Request, def domain.ProviderDefinition) error {
	apiKey := getEnv(def.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("%w: set %s or OPENAI_API_KEY", errMissingCredentials, def.AuthEnvVar)
	}
	req.Header.Set("authorization", "Bearer "+apiKey)

	if org := getEnv(def.OrgEnvVar, "OPENAI_ORG_ID"); org != "" {
		req.Header.Set("OpenAI-Organization", org)
	}
	return nil
}
