package llm

import (
	"context"
	"fmt"
	"strings"

	gl "cloud.google.com/go/ai/generativelanguage/apiv1beta"
	pb "cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"google.golang.org/api/option"
)

// Gemini completes prompts with the Gemini generateContent API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
}

// NewGemini creates a Gemini completer. An empty model selects DefaultGeminiModel.
func NewGemini(apiKey, model, baseURL string) *Gemini {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, model: model, baseURL: baseURL}
}

func (g *Gemini) Name() string { return ProviderGemini }

// Complete sends prompt as a single user turn and returns the first candidate's text.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	opts := []option.ClientOption{option.WithAPIKey(g.apiKey)}
	if g.baseURL != "" {
		opts = append(opts, option.WithEndpoint(g.baseURL))
	}

	client, err := gl.NewGenerativeRESTClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	// The generated defaults retry UNAVAILABLE and apply a call timeout.
	client.CallOptions.GenerateContent = nil

	resp, err := client.GenerateContent(ctx, &pb.GenerateContentRequest{
		Model: modelResource(g.model),
		Contents: []*pb.Content{{
			Role:  "user",
			Parts: []*pb.Part{{Data: &pb.Part_Text{Text: prompt}}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return candidateText(resp)
}

func modelResource(model string) string {
	if strings.Contains(model, "/") {
		return model
	}
	return "models/" + model
}

func candidateText(resp *pb.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	first := resp.Candidates[0]
	if first.GetContent() == nil {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range first.GetContent().GetParts() {
		sb.WriteString(part.GetText())
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}

	return sb.String(), nil
}
