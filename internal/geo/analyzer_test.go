package geo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/models"
)

// matrixProvider serves both generation and extraction calls. Extraction
// prompts are recognizable by their instruction header; everything else is a
// generation call routed by model and query.
type matrixProvider struct {
	fakeProvider
	answers     map[string]string // "model|query" -> response text
	extractions map[string]string // response fragment -> extraction JSON
}

func newMatrixProvider() *matrixProvider {
	p := &matrixProvider{
		answers: map[string]string{
			"alpha|best crm tools":          "Acme is the leading CRM today. Zeta is also popular.",
			"alpha|top marketing platforms": "There are many platforms to choose from.",
			"beta|best crm tools":           "Zeta leads the market, followed by Acme.",
		},
		extractions: map[string]string{
			"Acme is the leading": `{"brand_mentioned": true, "mention_position": 1, "sentiment": "positive", "context": "recommendation", "competitors_mentioned": [{"name": "Zeta", "position": 2, "sentiment": "neutral"}]}`,
			"many platforms":      `{"brand_mentioned": false, "mention_position": null, "sentiment": "neutral", "context": "", "competitors_mentioned": []}`,
			"Zeta leads":          `{"brand_mentioned": true, "mention_position": 2, "sentiment": "neutral", "context": "comparison", "competitors_mentioned": [{"name": "Zeta", "position": 1, "sentiment": "positive"}]}`,
		},
	}
	p.fakeProvider.name = "fake"
	p.fakeProvider.generate = func(prompt string, cfg llm.Config) (*llm.Response, error) {
		if strings.HasPrefix(prompt, "Analyze the following text response") {
			for fragment, extraction := range p.extractions {
				if strings.Contains(prompt, fragment) {
					return &llm.Response{Text: extraction}, nil
				}
			}
			return nil, errors.New("unexpected extraction prompt")
		}

		if text, ok := p.answers[cfg.Model+"|"+prompt]; ok {
			return &llm.Response{Text: text}, nil
		}
		return nil, errors.New("connection refused")
	}
	return p
}

func newTestAnalyzer(provider llm.Provider) *Analyzer {
	registry := llm.NewRegistry()
	registry.Register(provider)

	gw := NewGateway(registry, GatewayConfig{DefaultProvider: "fake"})
	gw.sleep = func(d time.Duration) {}

	interp := NewInterpreter(registry, InterpreterConfig{
		Model:           "extractor",
		DefaultProvider: "fake",
	})
	return NewAnalyzer(gw, interp)
}

func analysisRequest() *models.AnalysisRequest {
	return &models.AnalysisRequest{
		BrandName:   "Acme",
		Competitors: []string{"Zeta"},
		Queries: []models.Query{
			{Text: "best crm tools"},
			{Text: "top marketing platforms"},
		},
		Models: []string{"alpha", "beta"},
	}
}

func TestAnalyzerFullMatrix(t *testing.T) {
	analyzer := newTestAnalyzer(newMatrixProvider())

	var events []Event
	result, err := analyzer.RunStreaming(context.Background(), analysisRequest(), func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", result.BrandName)
	assert.Equal(t, 2, result.TotalQueriesTested)
	assert.Equal(t, []string{"alpha", "beta"}, result.LLMModelsTested)

	// One record per cell, model-major order matching the request
	require.Len(t, result.QueryPerformance, 4)
	assert.Equal(t, "alpha", result.QueryPerformance[0].Model)
	assert.Equal(t, "best crm tools", result.QueryPerformance[0].Query)
	assert.Equal(t, "alpha", result.QueryPerformance[1].Model)
	assert.Equal(t, "beta", result.QueryPerformance[2].Model)
	assert.Equal(t, "beta", result.QueryPerformance[3].Model)

	// beta|top marketing platforms has no scripted answer: the gateway
	// exhausts its retries and the cell degrades into a miss record.
	failed := result.QueryPerformance[3]
	assert.False(t, failed.BrandMentioned)
	assert.Equal(t, "llm request failed", failed.Context)
	assert.True(t, strings.HasPrefix(failed.LLMResponse, "Error: "))

	// 2 mentions out of 4 cells
	assert.InDelta(t, 50.0, result.OverallMetrics.MentionRate, 0.001)
	assert.Equal(t, result.OverallMetrics.MentionRate, result.OverallMetrics.BrandVisibilityScore)
	assert.InDelta(t, 1.5, result.OverallMetrics.AverageMentionPosition, 0.001)
	assert.InDelta(t, 50.0, result.OverallMetrics.PositivePositioning, 0.001)
	assert.InDelta(t, 50.0, result.OverallMetrics.NeutralPositioning, 0.001)
	assert.InDelta(t, 0.0, result.OverallMetrics.NegativePositioning, 0.001)

	alpha := result.ModelPerformance["alpha"]
	require.NotNil(t, alpha)
	assert.Equal(t, 2, alpha.QueriesTested)
	assert.InDelta(t, 50.0, alpha.MentionRate, 0.001)
	assert.InDelta(t, 1.0, alpha.AveragePosition, 0.001)
	assert.InDelta(t, 100.0, alpha.SentimentDistribution[models.SentimentPositive], 0.001)

	beta := result.ModelPerformance["beta"]
	require.NotNil(t, beta)
	assert.InDelta(t, 50.0, beta.MentionRate, 0.001)
	assert.InDelta(t, 2.0, beta.AveragePosition, 0.001)

	zeta := result.CompetitorAnalysis["Zeta"]
	require.NotNil(t, zeta)
	assert.Equal(t, 2, zeta.Mentions)
	assert.InDelta(t, 1.5, zeta.AveragePosition, 0.001)
	assert.Equal(t, 1, zeta.SentimentDistribution[models.SentimentNeutral])
	assert.Equal(t, 1, zeta.SentimentDistribution[models.SentimentPositive])

	// Zeta out-mentions Acme (2 > 1), positive sentiment below 60%
	require.Len(t, result.OptimizationSuggestions, 2)
	assert.Contains(t, result.OptimizationSuggestions[0], "positive sentiment")
	assert.Contains(t, result.OptimizationSuggestions[1], "Zeta")

	// Progress frames a complete lifecycle
	require.NotEmpty(t, events)
	first, last := events[0], events[len(events)-1]
	assert.Equal(t, StepInit, first.Step)
	require.NotNil(t, first.Progress)
	assert.Equal(t, 0.0, *first.Progress)
	assert.Equal(t, StepComplete, last.Step)
	require.NotNil(t, last.Progress)
	assert.Equal(t, 100.0, *last.Progress)

	modelStarts := 0
	for _, e := range events {
		if e.Step == StepModelStart {
			modelStarts++
		}
	}
	assert.Equal(t, 2, modelStarts)
}

func TestAnalyzerResponsePreviewTruncation(t *testing.T) {
	long := strings.Repeat("Acme ", 200)
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			if strings.HasPrefix(prompt, "Analyze the following text response") {
				return &llm.Response{Text: `{"brand_mentioned": true, "mention_position": 1, "sentiment": "positive", "context": "", "competitors_mentioned": []}`}, nil
			}
			return &llm.Response{Text: long}, nil
		},
	}
	analyzer := newTestAnalyzer(provider)

	result, err := analyzer.Run(context.Background(), &models.AnalysisRequest{
		BrandName: "Acme",
		Queries:   []models.Query{{Text: "q"}},
		Models:    []string{"alpha"},
	})
	require.NoError(t, err)

	record := result.QueryPerformance[0]
	assert.Len(t, record.LLMResponse, responsePreviewLen+3)
	assert.True(t, strings.HasSuffix(record.LLMResponse, "..."))
	assert.Equal(t, 200, record.ResponseWordCount, "word count reflects the full response, not the preview")
}

func TestAnalyzerEmptyQueries(t *testing.T) {
	analyzer := newTestAnalyzer(newMatrixProvider())

	result, err := analyzer.Run(context.Background(), &models.AnalysisRequest{
		BrandName: "Acme",
		Models:    []string{"alpha"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalQueriesTested)
	assert.Empty(t, result.QueryPerformance)
	assert.Zero(t, result.OverallMetrics.MentionRate)
	assert.Zero(t, result.ModelPerformance["alpha"].MentionRate)
	assert.NotEmpty(t, result.OptimizationSuggestions)
}

func TestAnalyzerRejectsMissingBrand(t *testing.T) {
	analyzer := newTestAnalyzer(newMatrixProvider())

	_, err := analyzer.Run(context.Background(), &models.AnalysisRequest{
		Models: []string{"alpha"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brand_name")
}

func TestAnalyzerFailsFastOnUnknownModel(t *testing.T) {
	registry := llm.NewRegistry()
	gw := NewGateway(registry, GatewayConfig{})
	interp := NewInterpreter(registry, InterpreterConfig{Model: "gpt-4o-mini"})
	analyzer := NewAnalyzer(gw, interp)

	provider := &fakeProvider{name: "fake", generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
		t.Fatal("no LLM call expected")
		return nil, nil
	}}
	registry.Register(provider)

	_, err := analyzer.Run(context.Background(), &models.AnalysisRequest{
		BrandName: "Acme",
		Queries:   []models.Query{{Text: "q"}},
		Models:    []string{"mystery-model"},
	})
	require.Error(t, err)
	assert.Zero(t, provider.promptCount())
}

func TestAnalyzerSurvivesPanickingListener(t *testing.T) {
	analyzer := newTestAnalyzer(newMatrixProvider())

	result, err := analyzer.RunStreaming(context.Background(), analysisRequest(), func(e Event) {
		panic("listener bug")
	})
	require.NoError(t, err)
	assert.Len(t, result.QueryPerformance, 4)
}
