package ai

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/doeshing/reelai/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c chatCompletionResponse) FirstMessage() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(c.Choices[0].Message.Content)
}

func buildChatCompletionRequest(def domain.ProviderDefinition, messages []promptMessage) ([]byte, error) {
	chat := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		chat = append(chat, chatMessage{Role: strings.ToLower(msg.Role), Content: msg.Content})
	}
	return json.Marshal(chatCompletionRequest{
		Model:       def.ModelID,
		Messages:    chat,
		MaxTokens:   def.EffectiveMaxTokens(),
		Temperature: 0.7,
	})
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	content := response.FirstMessage()
	if content == "" {
		return "", fmt.Errorf("chat completion has no message content")
	}
	return content, nil
}
