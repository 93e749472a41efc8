package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/models"
)

func newTestInterpreter(provider *fakeProvider) *Interpreter {
	registry := llm.NewRegistry()
	registry.Register(provider)
	return NewInterpreter(registry, InterpreterConfig{
		Model:           "extractor",
		DefaultProvider: provider.name,
	})
}

func TestInterpreterExtractsFencedJSON(t *testing.T) {
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			assert.Equal(t, ExtractionTemperature, cfg.Temperature)
			assert.Contains(t, prompt, `the brand "Acme"`)
			assert.Contains(t, prompt, "Zeta")
			return &llm.Response{Text: "```json\n{\n  \"brand_mentioned\": true,\n  \"mention_position\": 2,\n  \"sentiment\": \"positive\",\n  \"context\": \"recommendation\",\n  \"competitors_mentioned\": [{\"name\": \"Zeta\", \"position\": 1, \"sentiment\": \"neutral\"}]\n}\n```"}, nil
		},
	}
	interp := newTestInterpreter(provider)
	require.NoError(t, interp.Validate())

	ext := interp.Analyze(context.Background(), "Zeta then Acme.", "Acme", []string{"Zeta"})
	assert.True(t, ext.BrandMentioned)
	require.NotNil(t, ext.MentionPosition)
	assert.Equal(t, 2, *ext.MentionPosition)
	assert.Equal(t, models.SentimentPositive, ext.Sentiment)
	require.Len(t, ext.CompetitorsMentioned, 1)
	assert.Equal(t, "Zeta", ext.CompetitorsMentioned[0].Name)
}

func TestInterpreterNormalizesSuspectOutput(t *testing.T) {
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			return &llm.Response{Text: `{
				"brand_mentioned": true,
				"mention_position": -1,
				"sentiment": "ecstatic",
				"context": "",
				"competitors_mentioned": [{"name": "Zeta", "position": 0, "sentiment": "POSITIVE"}]
			}`}, nil
		},
	}
	interp := newTestInterpreter(provider)

	ext := interp.Analyze(context.Background(), "Acme.", "Acme", []string{"Zeta"})
	assert.True(t, ext.BrandMentioned)
	assert.Nil(t, ext.MentionPosition, "non-positive position must be discarded")
	assert.Equal(t, models.SentimentNeutral, ext.Sentiment, "unknown sentiment maps to neutral")
	require.Len(t, ext.CompetitorsMentioned, 1)
	assert.Nil(t, ext.CompetitorsMentioned[0].Position)
	require.NotNil(t, ext.CompetitorsMentioned[0].Sentiment)
	assert.Equal(t, models.SentimentPositive, *ext.CompetitorsMentioned[0].Sentiment)
}

func TestInterpreterPositionClearedWhenNotMentioned(t *testing.T) {
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			return &llm.Response{Text: `{"brand_mentioned": false, "mention_position": 3, "sentiment": "neutral", "context": "", "competitors_mentioned": null}`}, nil
		},
	}
	interp := newTestInterpreter(provider)

	ext := interp.Analyze(context.Background(), "nothing here", "Acme", nil)
	assert.False(t, ext.BrandMentioned)
	assert.Nil(t, ext.MentionPosition)
	assert.NotNil(t, ext.CompetitorsMentioned)
	assert.Empty(t, ext.CompetitorsMentioned)
}

func TestInterpreterFallsBackOnGarbage(t *testing.T) {
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			return &llm.Response{Text: "Sure! The brand is mentioned positively."}, nil
		},
	}
	interp := newTestInterpreter(provider)

	var steps []Step
	ext := interp.analyze(context.Background(), "Acme ships fast.", "Acme", nil, emitter{listener: func(e Event) {
		steps = append(steps, e.Step)
	}})

	assert.True(t, ext.BrandMentioned)
	require.NotNil(t, ext.MentionPosition)
	assert.Equal(t, 1, *ext.MentionPosition)
	assert.Equal(t, models.SentimentNeutral, ext.Sentiment)
	assert.Equal(t, "automatic analysis failed", ext.Context)
	assert.Contains(t, steps, StepExtractionFallback)
}

func TestFallbackDeterministic(t *testing.T) {
	first := Fallback("We recommend ACME for this.", "acme")
	second := Fallback("We recommend ACME for this.", "acme")
	assert.Equal(t, first, second)

	assert.True(t, first.BrandMentioned, "match is case-insensitive")
	require.NotNil(t, first.MentionPosition)
	assert.Equal(t, 1, *first.MentionPosition)

	missing := Fallback("Zeta only.", "Acme")
	assert.False(t, missing.BrandMentioned)
	assert.Nil(t, missing.MentionPosition)
	assert.Equal(t, models.SentimentNeutral, missing.Sentiment)
	assert.Empty(t, missing.CompetitorsMentioned)
}

func TestInterpreterValidateFailsForUnknownProvider(t *testing.T) {
	registry := llm.NewRegistry()
	interp := NewInterpreter(registry, InterpreterConfig{Model: "gpt-4o-mini"})
	require.Error(t, interp.Validate())
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in))
	}
}
