package generativeAI

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/rawi-ai/rawi-guide/internal/types"
)

// AIClient wraps the Gemini client behind the single call the chat
// orchestrator needs.
type AIClient struct {
	client *genai.Client
	model  string
}

// NewAIClient builds the Gemini client. A missing API key is a
// configuration error: the caller degrades chat to offline mode instead
// of failing startup.
func NewAIClient(ctx context.Context, apiKey, model string) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if apiKey == "" {
		err := fmt.Errorf("gemini api key: %w", types.ErrConfiguration)
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, err
	}

	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client: client,
		model:  model,
	}, nil
}

// GenerateContent sends a single prompt and returns the first
// candidate's text. An empty candidate is a parse failure, not an empty
// answer.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return "", fmt.Errorf("%w: %v", types.ErrTransport, err)
	}

	responseText := result.Text()
	if responseText == "" {
		err := fmt.Errorf("%w: model returned no candidate text", types.ErrParse)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty candidate")
		return "", err
	}

	span.SetAttributes(attribute.Int("response.length", len(responseText)))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return responseText, nil
}
