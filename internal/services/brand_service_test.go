package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/models"
)

type stubProvider struct {
	name     string
	generate func(prompt string, cfg llm.Config) (*llm.Response, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, prompt string, cfg llm.Config) (*llm.Response, error) {
	return s.generate(prompt, cfg)
}

func (s *stubProvider) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	return nil, nil
}

func registryWith(provider *stubProvider) *llm.Registry {
	registry := llm.NewRegistry()
	registry.Register(provider)
	return registry
}

func TestDescribeBrandParsesJSON(t *testing.T) {
	provider := &stubProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		assert.Contains(t, prompt, `"Acme"`)
		return &llm.Response{Text: "```json\n{\"description\": \"Acme builds rockets.\"}\n```"}, nil
	}}
	svc := NewBrandService(registryWith(provider), "custom-model", "fake")

	got, err := svc.DescribeBrand(context.Background(), "Acme", "https://acme.io", "world")
	require.NoError(t, err)
	assert.Equal(t, "Acme builds rockets.", got)
}

func TestDescribeBrandKeepsProseAnswer(t *testing.T) {
	provider := &stubProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		return &llm.Response{Text: "Acme is a rocket company."}, nil
	}}
	svc := NewBrandService(registryWith(provider), "custom-model", "fake")

	got, err := svc.DescribeBrand(context.Background(), "Acme", "https://acme.io", "world")
	require.NoError(t, err)
	assert.Equal(t, "Acme is a rocket company.", got)
}

func TestDescribeBrandFallsBackOnEmptyJSON(t *testing.T) {
	provider := &stubProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		return &llm.Response{Text: `{"description": "  "}`}, nil
	}}
	svc := NewBrandService(registryWith(provider), "custom-model", "fake")

	got, err := svc.DescribeBrand(context.Background(), "Acme", "https://acme.io", "France")
	require.NoError(t, err)
	assert.Contains(t, got, "Acme is a business operating in France")
	assert.Contains(t, got, "https://acme.io")
}

func TestDiscoverIndustryRejectsEmpty(t *testing.T) {
	provider := &stubProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		return &llm.Response{Text: "  \n"}, nil
	}}
	svc := NewBrandService(registryWith(provider), "custom-model", "fake")

	_, err := svc.DiscoverIndustry(context.Background(), "Acme", "https://acme.io", "desc", "world")
	require.Error(t, err)
}

func TestDiscoverCompetitorsAcceptsMixedShapes(t *testing.T) {
	provider := &stubProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		return &llm.Response{Text: `{"competitors": ["Zeta", {"name": "Orbit"}, "  "]}`}, nil
	}}
	svc := NewBrandService(registryWith(provider), "custom-model", "fake")

	got := svc.DiscoverCompetitors(context.Background(), "Acme", "", "desc", "aerospace", "world")
	assert.Equal(t, []string{"Zeta", "Orbit"}, got)
}

func TestDiscoverCompetitorsNeverFails(t *testing.T) {
	provider := &stubProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		return nil, errors.New("boom")
	}}
	svc := NewBrandService(registryWith(provider), "custom-model", "fake")

	got := svc.DiscoverCompetitors(context.Background(), "Acme", "", "desc", "aerospace", "world")
	assert.Empty(t, got)
}

func TestDiscoverChainsAllSteps(t *testing.T) {
	provider := &stubProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		switch {
		case strings.Contains(prompt, "Describe the company"):
			return &llm.Response{Text: `{"description": "Acme builds rockets."}`}, nil
		case strings.Contains(prompt, "industry sector"):
			return &llm.Response{Text: "Aerospace"}, nil
		default:
			return &llm.Response{Text: `{"competitors": ["Zeta"]}`}, nil
		}
	}}
	svc := NewBrandService(registryWith(provider), "custom-model", "fake")

	info, err := svc.Discover(context.Background(), "Acme", "https://acme.io", "")
	require.NoError(t, err)
	assert.Equal(t, "world", info.Country)
	assert.Equal(t, "Acme builds rockets.", info.Description)
	assert.Equal(t, "Aerospace", info.Industry)
	assert.Equal(t, []string{"Zeta"}, info.Competitors)
}
