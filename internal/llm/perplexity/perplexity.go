package perplexity

import (
	"context"
	"fmt"
	"time"

	pplx "github.com/sgaunet/perplexity-go/v2"

	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/models"
)

// Provider implements the LLM Provider interface for Perplexity.
// Perplexity models are web-grounded, which makes them useful for queries
// about current brand positioning.
type Provider struct {
	apiKey string
	client *pplx.Client
}

// New creates a new Perplexity provider
func New(apiKey string) *Provider {
	return &Provider{
		apiKey: apiKey,
		client: pplx.NewClient(apiKey),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "perplexity"
}

// Generate sends a prompt to Perplexity and returns the response
func (p *Provider) Generate(ctx context.Context, prompt string, config llm.Config) (*llm.Response, error) {
	startTime := time.Now()

	model := pplx.DefaultModel
	if config.Model != "" {
		model = config.Model
	}

	msg := pplx.NewMessages()
	if err := msg.AddUserMessage(prompt); err != nil {
		return nil, fmt.Errorf("invalid completion request: %w", err)
	}

	opts := []pplx.CompletionRequestOption{
		pplx.WithMessages(msg.GetMessages()),
		pplx.WithModel(model),
		pplx.WithTemperature(config.Temperature),
	}
	if config.MaxTokens > 0 {
		opts = append(opts, pplx.WithMaxTokens(config.MaxTokens))
	}

	req := pplx.NewCompletionRequest(opts...)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid completion request: %w", err)
	}

	res, err := p.client.SendCompletionRequest(req)
	if err != nil {
		return &llm.Response{
			Error:     err.Error(),
			LatencyMs: time.Since(startTime).Milliseconds(),
			Model:     model,
			Provider:  "perplexity",
		}, nil
	}

	return &llm.Response{
		Text:      res.GetLastContent(),
		LatencyMs: time.Since(startTime).Milliseconds(),
		Model:     model,
		Provider:  "perplexity",
	}, nil
}

// ListModels lists available Perplexity models
// Perplexity doesn't expose a models API, so we return the documented set
func (p *Provider) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	return []models.ModelInfo{
		{
			ID:          "sonar",
			Name:        "Sonar",
			Description: "Lightweight web-grounded model",
			Provider:    "perplexity",
		},
		{
			ID:          "sonar-pro",
			Name:        "Sonar Pro",
			Description: "Advanced web-grounded model for complex queries",
			Provider:    "perplexity",
		},
		{
			ID:          "sonar-reasoning",
			Name:        "Sonar Reasoning",
			Description: "Web-grounded reasoning model",
			Provider:    "perplexity",
		},
	}, nil
}
