package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI2HU/geolens/internal/geo"
	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/logger"
)

const (
	defaultQueryCount = 10
	maxQueryCount     = 100
)

// QueryService generates the search queries a GEO analysis will test a brand
// against.
type QueryService struct {
	llmRegistry *llm.Registry
	model       string
	provider    string
}

// NewQueryService creates a new query generation service.
func NewQueryService(registry *llm.Registry, model, defaultProvider string) *QueryService {
	if model == "" {
		model = "gpt-4o-mini"
	}
	provider := geo.ProviderNameForModel(model)
	if provider == "" {
		provider = defaultProvider
	}

	return &QueryService{
		llmRegistry: registry,
		model:       model,
		provider:    provider,
	}
}

// GenerationRequest carries the brand context queries are generated from.
type GenerationRequest struct {
	BrandName   string `json:"brand_name"`
	Country     string `json:"country"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Count       int    `json:"count"`
}

// Validate checks the generation request.
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.BrandName) == "" {
		return fmt.Errorf("brand name is required")
	}
	if strings.TrimSpace(r.Industry) == "" {
		return fmt.Errorf("industry is required")
	}
	if r.Count > maxQueryCount {
		return fmt.Errorf("query count cannot exceed %d", maxQueryCount)
	}
	return nil
}

// GenerateQueries asks the LLM for realistic user queries where the brand
// could plausibly appear. The model is told to answer with a numbered list;
// numbering prefixes are stripped on the way out. When the LLM cannot produce
// anything usable, the static fallback set is returned instead of an error.
func (s *QueryService) GenerateQueries(ctx context.Context, req *GenerationRequest) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	count := req.Count
	if count <= 0 {
		count = defaultQueryCount
	}
	country := req.Country
	if country == "" {
		country = "world"
	}

	provider, ok := s.llmRegistry.Get(s.provider)
	if !ok {
		return nil, fmt.Errorf("LLM provider %s not found", s.provider)
	}

	prompt := fmt.Sprintf(`Generate %d realistic search queries that potential customers in %s might ask an AI assistant, where a company like "%s" could be mentioned in the answer.

Company description: %s
Industry: %s

The queries must not name the company itself. Cover buying advice, comparisons, recommendations and problem-solving questions.

Respond with a numbered list, one query per line, nothing else.`, count, country, req.BrandName, req.Description, req.Industry)

	response, err := provider.Generate(ctx, prompt, llm.Config{
		Model:       s.model,
		Temperature: discoveryTemperature,
	})
	if err != nil {
		logger.Warning("Query generation failed for %q, using fallback set: %v", req.BrandName, err)
		return FallbackQueries(req.BrandName, req.Industry), nil
	}
	if response.Error != "" {
		logger.Warning("Query generation failed for %q, using fallback set: %s", req.BrandName, response.Error)
		return FallbackQueries(req.BrandName, req.Industry), nil
	}

	queries := parseNumberedList(response.Text)
	if len(queries) == 0 {
		logger.Warning("Query generation produced no usable lines for %q, using fallback set", req.BrandName)
		return FallbackQueries(req.BrandName, req.Industry), nil
	}
	if len(queries) > count {
		queries = queries[:count]
	}

	return queries, nil
}

// parseNumberedList splits LLM output into one query per non-empty line,
// stripping "1." and "1)" style prefixes.
func parseNumberedList(text string) []string {
	var queries []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if len(line) > 2 && (line[1] == '.' || line[1] == ')') && (line[0] >= '0' && line[0] <= '9') {
			line = strings.TrimSpace(line[2:])
		}

		if line != "" {
			queries = append(queries, line)
		}
	}
	return queries
}

// FallbackQueries is the deterministic query set used when LLM generation is
// unavailable.
func FallbackQueries(brandName, industry string) []string {
	return []string{
		fmt.Sprintf("What are the best %s solutions?", industry),
		fmt.Sprintf("Compare top %s companies", industry),
		fmt.Sprintf("Recommend a %s tool for startups", industry),
		fmt.Sprintf("What's the difference between %s and competitors?", brandName),
		fmt.Sprintf("Best practices for %s", industry),
		fmt.Sprintf("How to choose a %s provider?", industry),
		fmt.Sprintf("Problems with %s tools", industry),
		fmt.Sprintf("Future of %s", industry),
		fmt.Sprintf("Case studies in %s", industry),
		fmt.Sprintf("ROI of %s solutions", industry),
		fmt.Sprintf("Enterprise %s recommendations", industry),
		fmt.Sprintf("Small business %s options", industry),
		fmt.Sprintf("Open source vs commercial %s tools", industry),
		fmt.Sprintf("Security considerations for %s", industry),
		fmt.Sprintf("Integration capabilities of %s platforms", industry),
	}
}
