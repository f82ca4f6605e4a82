package factory

import (
	"fmt"

	"exchange-support-be/pkg/llm"
	"exchange-support-be/pkg/llm/ollama"
	"exchange-support-be/pkg/llm/openai"
)

// NewLLMProvider selects the chat backend from config.
func NewLLMProvider(providerName, modelName, ollamaBaseURL, openAIBaseURL, openAIKey string) (llm.LLMProvider, error) {
	switch providerName {
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(openAIBaseURL, openAIKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", providerName)
	}
}
