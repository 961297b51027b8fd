package provider

import (
	"fmt"
	"os"

	"sheetpilot/internal/types"
)

// New builds a client for the named provider.
func New(name Name, cfg Config) (types.LLMClient, error) {
	switch name {
	case Gemini:
		return NewGeminiClient(cfg), nil
	case OpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// DetectFromEnv resolves a provider and API key from environment variables.
// Priority: GEMINI_API_KEY > OPENAI_API_KEY.
func DetectFromEnv() (Name, string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return Gemini, key, nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return OpenAI, key, nil
	}
	return "", "", fmt.Errorf("no API key found; set GEMINI_API_KEY or OPENAI_API_KEY")
}
