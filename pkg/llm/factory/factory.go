package factory

import (
	"fmt"

	"ai-promptscope-be/pkg/llm"
	"ai-promptscope-be/pkg/llm/huggingface"
	"ai-promptscope-be/pkg/llm/ollama"
)

// NewLLMProvider selects the text-generation backend from config.
func NewLLMProvider(providerType, modelName, ollamaBaseURL, hfAPIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(hfAPIKey, "", modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
