// Package llm sends a single prompt to a chat-completion provider and returns the answer text.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

// ErrEmptyResponse indicates the provider returned no usable text.
var ErrEmptyResponse = errors.New("no text content in model response")

// Completer sends one user message and returns the first candidate's text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string // optional endpoint override
}

// New creates a Completer for settings.Provider.
func New(settings Settings) (Completer, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("API key for provider %q is empty", settings.Provider)
	}

	switch settings.Provider {
	case ProviderOpenAI, "":
		return NewOpenAI(settings.APIKey, settings.Model, settings.BaseURL), nil
	case ProviderAnthropic:
		return NewAnthropic(settings.APIKey, settings.Model, settings.BaseURL), nil
	case ProviderGemini:
		return NewGemini(settings.APIKey, settings.Model, settings.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", settings.Provider)
	}
}

// IsValidProvider reports whether name is a supported provider.
func IsValidProvider(name string) bool {
	switch name {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

// KeyHint returns the last 4 characters of an API key for display purposes.
func KeyHint(apiKey string) string {
	if len(apiKey) < 4 {
		return "****"
	}
	return apiKey[len(apiKey)-4:]
}
