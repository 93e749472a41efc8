package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/models"
)

// Provider implements the LLM Provider interface for OpenAI
type Provider struct {
	apiKey string
	client sdk.Client
}

// New creates a new OpenAI provider
func New(apiKey, baseURL string) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Provider{
		apiKey: apiKey,
		client: sdk.NewClient(opts...),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// Generate sends a prompt to OpenAI and returns the response
func (p *Provider) Generate(ctx context.Context, prompt string, config llm.Config) (*llm.Response, error) {
	startTime := time.Now()

	model := "gpt-4o-mini"
	if config.Model != "" {
		model = config.Model
	}

	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.UserMessage(prompt),
		},
		Temperature: sdk.Float(config.Temperature),
	}
	if config.MaxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(config.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return &llm.Response{
			Error:     err.Error(),
			LatencyMs: time.Since(startTime).Milliseconds(),
			Model:     model,
			Provider:  "openai",
		}, nil
	}

	if len(completion.Choices) == 0 {
		return &llm.Response{
			Error:     "no choices returned from API",
			LatencyMs: time.Since(startTime).Milliseconds(),
			Model:     model,
			Provider:  "openai",
		}, nil
	}

	return &llm.Response{
		Text:       completion.Choices[0].Message.Content,
		TokensUsed: int(completion.Usage.TotalTokens),
		LatencyMs:  time.Since(startTime).Milliseconds(),
		Model:      completion.Model,
		Provider:   "openai",
	}, nil
}

// ListModels lists available text-to-text models from OpenAI
func (p *Provider) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	// Filter for text-to-text models only (GPT chat models)
	var textModels []models.ModelInfo
	seen := make(map[string]bool)

	for _, model := range page.Data {
		modelID := strings.ToLower(model.ID)

		// Only include GPT models that support chat completions
		if strings.HasPrefix(modelID, "gpt-") && !seen[model.ID] {
			// Skip fine-tuned models (contains colons)
			if strings.Contains(model.ID, ":") {
				continue
			}

			// Skip embedding models
			if strings.Contains(modelID, "embed") || strings.Contains(modelID, "embedding") {
				continue
			}

			// Skip image models
			if strings.Contains(modelID, "vision") || strings.Contains(modelID, "image") {
				continue
			}

			// Skip audio models
			if strings.Contains(modelID, "whisper") || strings.Contains(modelID, "audio") {
				continue
			}

			textModels = append(textModels, models.ModelInfo{
				ID:          model.ID,
				Name:        model.ID,
				Description: fmt.Sprintf("OpenAI %s", model.ID),
				Provider:    "openai",
			})
			seen[model.ID] = true
		}
	}

	return textModels, nil
}
