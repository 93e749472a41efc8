package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/models"
)

const (
	// ExtractionTemperature is deliberately low: the second pass is an
	// extraction task, not creative generation.
	ExtractionTemperature = 0.1

	extractionMaxTokens = 300
)

// Extraction holds the structured facts pulled out of one raw LLM answer.
type Extraction struct {
	BrandMentioned       bool                       `json:"brand_mentioned"`
	MentionPosition      *int                       `json:"mention_position"`
	Sentiment            models.Sentiment           `json:"sentiment"`
	Context              string                     `json:"context"`
	CompetitorsMentioned []models.CompetitorMention `json:"competitors_mentioned"`
}

// InterpreterConfig carries the extraction call settings.
type InterpreterConfig struct {
	Model           string  // extraction model id, e.g. "gpt-4o-mini"
	DefaultProvider string  // used when the model id has no recognizable prefix
	Temperature     float64 // 0 means ExtractionTemperature
}

// Interpreter turns raw response text into an Extraction via a second LLM
// call, falling back to a deterministic heuristic when that call fails.
type Interpreter struct {
	registry    *llm.Registry
	model       string
	provider    string
	temperature float64
}

// NewInterpreter creates an interpreter over the given provider registry.
func NewInterpreter(registry *llm.Registry, cfg InterpreterConfig) *Interpreter {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	provider := ProviderNameForModel(model)
	if provider == "" {
		provider = cfg.DefaultProvider
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = ExtractionTemperature
	}

	return &Interpreter{
		registry:    registry,
		model:       model,
		provider:    provider,
		temperature: temperature,
	}
}

// Validate checks that the extraction model resolves to a registered
// provider.
func (i *Interpreter) Validate() error {
	if i.provider == "" {
		return fmt.Errorf("no provider configured for extraction model %q", i.model)
	}
	if _, ok := i.registry.Get(i.provider); !ok {
		return fmt.Errorf("extraction provider %q not registered", i.provider)
	}
	return nil
}

// Analyze extracts brand-mention facts from responseText. It always returns
// a usable Extraction: any upstream or parse failure yields the deterministic
// fallback instead of an error.
func (i *Interpreter) Analyze(ctx context.Context, responseText, brand string, competitors []string) *Extraction {
	return i.analyze(ctx, responseText, brand, competitors, emitter{})
}

func (i *Interpreter) analyze(ctx context.Context, responseText, brand string, competitors []string, em emitter) *Extraction {
	em.emit(fmt.Sprintf("🔍 Analyzing brand positioning for %q...", brand), StepExtractionStart, nil, nil)

	extraction, err := i.extract(ctx, responseText, brand, competitors)
	if err != nil {
		em.emit(fmt.Sprintf("❌ Brand analysis failed, using fallback: %s", err),
			StepExtractionFallback, nil, map[string]interface{}{"error": truncate(err.Error(), errPreviewLen)})
		return Fallback(responseText, brand)
	}

	em.emit("✅ Brand analysis complete", StepExtractionComplete, nil, nil)
	return extraction
}

func (i *Interpreter) extract(ctx context.Context, responseText, brand string, competitors []string) (*Extraction, error) {
	provider, ok := i.registry.Get(i.provider)
	if !ok {
		return nil, fmt.Errorf("extraction provider %q not registered", i.provider)
	}

	callCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	resp, err := provider.Generate(callCtx, extractionPrompt(brand, competitors, responseText), llm.Config{
		Model:       i.model,
		Temperature: i.temperature,
		MaxTokens:   extractionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("extraction call failed: %s", resp.Error)
	}

	var extraction Extraction
	if err := json.Unmarshal([]byte(stripCodeFences(resp.Text)), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}

	normalize(&extraction)
	return &extraction, nil
}

// normalize cleans up model output so downstream aggregation can trust the
// invariants: positions are positive 1-indexed ordinals, sentiments are one
// of the three known values.
func normalize(e *Extraction) {
	e.Sentiment = models.ParseSentiment(string(e.Sentiment))

	if e.MentionPosition != nil && *e.MentionPosition <= 0 {
		e.MentionPosition = nil
	}
	if !e.BrandMentioned {
		e.MentionPosition = nil
	}

	if e.CompetitorsMentioned == nil {
		e.CompetitorsMentioned = []models.CompetitorMention{}
	}
	for idx := range e.CompetitorsMentioned {
		comp := &e.CompetitorsMentioned[idx]
		if comp.Position != nil && *comp.Position <= 0 {
			comp.Position = nil
		}
		if comp.Sentiment != nil {
			s := models.ParseSentiment(string(*comp.Sentiment))
			comp.Sentiment = &s
		}
	}
}

// Fallback is the terminal safety net for a cell: a deterministic heuristic
// that never fails. Same inputs always produce the same shape.
func Fallback(responseText, brand string) *Extraction {
	mentioned := strings.Contains(strings.ToLower(responseText), strings.ToLower(brand))

	var position *int
	if mentioned {
		first := 1
		position = &first
	}

	return &Extraction{
		BrandMentioned:       mentioned,
		MentionPosition:      position,
		Sentiment:            models.SentimentNeutral,
		Context:              "automatic analysis failed",
		CompetitorsMentioned: []models.CompetitorMention{},
	}
}
