package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/AI2HU/geolens/internal/geo"
	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/logger"
	"github.com/AI2HU/geolens/internal/models"
)

const (
	discoveryTemperature = 0.7
	discoveryMaxTokens   = 500
	discoveryTimeout     = 30 * time.Second
)

// BrandService discovers brand facts (description, industry, competitors)
// through LLM calls so users can start an analysis from just a name and a
// website.
type BrandService struct {
	llmRegistry *llm.Registry
	model       string
	provider    string
}

// NewBrandService creates a new brand discovery service. The model defaults
// to gpt-4o-mini; defaultProvider covers model ids with no recognizable
// prefix.
func NewBrandService(registry *llm.Registry, model, defaultProvider string) *BrandService {
	if model == "" {
		model = "gpt-4o-mini"
	}
	provider := geo.ProviderNameForModel(model)
	if provider == "" {
		provider = defaultProvider
	}

	return &BrandService{
		llmRegistry: registry,
		model:       model,
		provider:    provider,
	}
}

// Discover runs the full discovery chain: description, then industry, then
// competitors. Country may be empty; "world" is assumed.
func (s *BrandService) Discover(ctx context.Context, name, website, country string) (*models.BrandInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("brand name is required")
	}
	if country == "" {
		country = "world"
	}

	description, err := s.DescribeBrand(ctx, name, website, country)
	if err != nil {
		return nil, err
	}

	industry, err := s.DiscoverIndustry(ctx, name, website, description, country)
	if err != nil {
		return nil, err
	}

	competitors := s.DiscoverCompetitors(ctx, name, website, description, industry, country)

	return &models.BrandInfo{
		Name:        name,
		Website:     website,
		Country:     country,
		Description: description,
		Industry:    industry,
		Competitors: competitors,
	}, nil
}

// DescribeBrand asks the LLM for a short company description. A missing or
// unusable answer degrades into a generic fallback description rather than an
// error.
func (s *BrandService) DescribeBrand(ctx context.Context, name, website, country string) (string, error) {
	prompt := fmt.Sprintf(`Describe the company "%s" (website: %s, operating in %s) in 2-3 sentences: what it does, who it serves and what it is known for.

Respond in JSON format:
{"description": "the description"}`, name, website, country)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to get brand description: %w", err)
	}

	var parsed struct {
		Description string `json:"description"`
	}
	if jsonErr := json.Unmarshal([]byte(stripFences(text)), &parsed); jsonErr == nil {
		if strings.TrimSpace(parsed.Description) != "" {
			return parsed.Description, nil
		}
	} else if usable(text) {
		// Model answered in prose instead of JSON; keep the raw answer
		return strings.TrimSpace(text), nil
	}

	logger.Warning("Brand description unusable for %q, using fallback", name)
	return fmt.Sprintf("%s is a business operating in %s with their website at %s. The company provides digital services and solutions to their customers in the local market.", name, country, website), nil
}

// DiscoverIndustry asks the LLM which industry the brand operates in. An
// empty answer is an error; everything downstream keys off the industry.
func (s *BrandService) DiscoverIndustry(ctx context.Context, name, website, description, country string) (string, error) {
	prompt := fmt.Sprintf(`Given the company "%s" (website: %s, operating in %s) described as:
%s

Name the single industry sector this company operates in. Answer with the industry name only, no explanation.`, name, website, country, description)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to get brand industry: %w", err)
	}
	if !usable(text) {
		return "", fmt.Errorf("empty industry received for brand %q", name)
	}

	return strings.TrimSpace(text), nil
}

// DiscoverCompetitors asks the LLM for the brand's main competitors. This
// step never fails: any problem yields an empty list so the analysis can
// still run without competitor tracking.
func (s *BrandService) DiscoverCompetitors(ctx context.Context, name, website, description, industry, country string) []string {
	prompt := fmt.Sprintf(`List the main competitors of "%s" (website: %s), a company in the %s industry operating in %s, described as:
%s

Respond in JSON format:
{"competitors": ["name1", "name2"]}`, name, website, industry, country, description)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		logger.Warning("Competitor discovery failed for %q: %v", name, err)
		return []string{}
	}

	var parsed struct {
		Competitors []competitorName `json:"competitors"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		logger.Warning("Competitor discovery returned unparsable JSON for %q: %v", name, err)
		return []string{}
	}

	out := make([]string, 0, len(parsed.Competitors))
	for _, c := range parsed.Competitors {
		if trimmed := strings.TrimSpace(string(c)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *BrandService) generate(ctx context.Context, prompt string) (string, error) {
	provider, ok := s.llmRegistry.Get(s.provider)
	if !ok {
		return "", fmt.Errorf("LLM provider %s not found", s.provider)
	}

	callCtx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	response, err := provider.Generate(callCtx, prompt, llm.Config{
		Model:       s.model,
		Temperature: discoveryTemperature,
		MaxTokens:   discoveryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	if response.Error != "" {
		return "", fmt.Errorf("LLM error: %s", response.Error)
	}
	return response.Text, nil
}

// competitorName decodes either "Acme" or {"name": "Acme", ...}.
type competitorName string

func (c *competitorName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = competitorName(s)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("competitor must be a string or an object with a name: %w", err)
	}
	*c = competitorName(obj.Name)
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func usable(s string) bool {
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && !strings.EqualFold(trimmed, "null")
}
