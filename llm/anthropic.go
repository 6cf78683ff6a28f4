package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxAnthropicTokens bounds the length of the generated review.
const maxAnthropicTokens = 4096

// Anthropic completes prompts with the Claude messages API.
type Anthropic struct {
	apiKey  string
	model   string
	baseURL string
}

// NewAnthropic creates a Claude completer. An empty model selects DefaultAnthropicModel.
func NewAnthropic(apiKey, model, baseURL string) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &Anthropic{apiKey: apiKey, model: model, baseURL: baseURL}
}

func (a *Anthropic) Name() string { return ProviderAnthropic }

// Complete sends prompt as a single user message and returns the first text block.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(a.apiKey),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}
	client := anthropic.NewClient(opts...)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(a.model)),
		MaxTokens: anthropic.F(int64(maxAnthropicTokens)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			return block.Text, nil
		}
	}

	return "", ErrEmptyResponse
}
