package geo

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI2HU/geolens/internal/logger"
	"github.com/AI2HU/geolens/internal/models"
)

const responsePreviewLen = 500

// Analyzer drives the full {model × query} test matrix and aggregates
// per-model, per-competitor and overall metrics.
//
// The matrix loop is strictly sequential: one outstanding LLM call at a time.
// Each call costs money and counts against provider rate limits, so there is
// no fan-out across cells; the gateway's rate limiter paces the stream of
// requests instead.
type Analyzer struct {
	gateway     *Gateway
	interpreter *Interpreter
}

// NewAnalyzer creates an analyzer from its two collaborators.
func NewAnalyzer(gateway *Gateway, interpreter *Interpreter) *Analyzer {
	return &Analyzer{
		gateway:     gateway,
		interpreter: interpreter,
	}
}

// Run executes the analysis without progress reporting.
func (a *Analyzer) Run(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResult, error) {
	return a.RunStreaming(ctx, req, nil)
}

// RunStreaming executes the analysis and streams progress events to the
// listener. Individual cell failures are absorbed into their MentionRecord;
// only configuration problems detected before the matrix starts return an
// error.
func (a *Analyzer) RunStreaming(ctx context.Context, req *models.AnalysisRequest, listener Listener) (*models.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.gateway.ValidateModels(req.Models); err != nil {
		return nil, err
	}
	if err := a.interpreter.Validate(); err != nil {
		return nil, err
	}

	em := emitter{listener: listener}
	queries := req.QueryStrings()
	llmModels := req.Models

	result := &models.AnalysisResult{
		BrandName:          req.BrandName,
		TotalQueriesTested: len(queries),
		LLMModelsTested:    llmModels,
		QueryPerformance:   []models.MentionRecord{},
		ModelPerformance:   make(map[string]*models.ModelPerformance),
		CompetitorAnalysis: make(map[string]*models.CompetitorSummary),
	}

	totalMentions := 0
	var mentionPositions []int
	sentimentScores := zeroCounts()
	competitorSummary := make(map[string]*models.CompetitorSummary)

	totalTests := len(queries) * len(llmModels)
	currentTest := 0

	em.emit(fmt.Sprintf("Starting GEO analysis for %d queries across %d models", len(queries), len(llmModels)),
		StepInit, pct(0), nil)
	logger.Info("Starting GEO analysis for brand %q: %d queries x %d models = %d tests",
		req.BrandName, len(queries), len(llmModels), totalTests)

	for _, model := range llmModels {
		em.emit(fmt.Sprintf("Starting analysis with %s", model),
			StepModelStart, pct(matrixProgress(currentTest, totalTests)),
			map[string]interface{}{"model": model})

		perf := &models.ModelPerformance{
			QueriesTested:         len(queries),
			SentimentDistribution: zeroPercentages(),
		}
		result.ModelPerformance[model] = perf

		modelMentions := 0
		var modelPositions []int
		modelSentiments := zeroCounts()

		for _, query := range queries {
			currentTest++
			progress := matrixProgress(currentTest, totalTests)

			em.emit(fmt.Sprintf("Asking %s: %q", model, query),
				StepQueryStart, pct(progress),
				map[string]interface{}{"model": model, "query": query})

			record := a.runCell(ctx, req, model, query, progress, em)
			result.QueryPerformance = append(result.QueryPerformance, record)

			if record.BrandMentioned {
				totalMentions++
				modelMentions++

				if record.MentionPosition != nil {
					mentionPositions = append(mentionPositions, *record.MentionPosition)
					modelPositions = append(modelPositions, *record.MentionPosition)
				}

				sentimentScores[record.Sentiment]++
				modelSentiments[record.Sentiment]++
			}

			for _, comp := range record.CompetitorsMentioned {
				foldCompetitor(competitorSummary, comp)
			}
		}

		// Model-specific metrics
		if len(queries) > 0 {
			perf.MentionRate = float64(modelMentions) / float64(len(queries)) * 100
		}
		perf.AveragePosition = meanInt(modelPositions)
		if modelMentions > 0 {
			for _, sentiment := range models.Sentiments() {
				perf.SentimentDistribution[sentiment] = float64(modelSentiments[sentiment]) / float64(modelMentions) * 100
			}
		}

		em.emit(fmt.Sprintf("Completed analysis with %s - %d/%d mentions", model, modelMentions, len(queries)),
			StepModelComplete, pct(matrixProgress(currentTest, totalTests)),
			map[string]interface{}{"model": model})
		logger.Info("Model %s complete: %d/%d mentions", model, modelMentions, len(queries))
	}

	em.emit("Calculating final metrics...", StepCalculating, pct(95), nil)

	if totalTests > 0 {
		rate := float64(totalMentions) / float64(totalTests) * 100
		result.OverallMetrics.MentionRate = rate
		result.OverallMetrics.BrandVisibilityScore = rate
	}
	result.OverallMetrics.AverageMentionPosition = meanInt(mentionPositions)
	if totalMentions > 0 {
		result.OverallMetrics.PositivePositioning = float64(sentimentScores[models.SentimentPositive]) / float64(totalMentions) * 100
		result.OverallMetrics.NeutralPositioning = float64(sentimentScores[models.SentimentNeutral]) / float64(totalMentions) * 100
		result.OverallMetrics.NegativePositioning = float64(sentimentScores[models.SentimentNegative]) / float64(totalMentions) * 100
	}

	for _, summary := range competitorSummary {
		summary.AveragePosition = meanInt(summary.Positions)
	}
	result.CompetitorAnalysis = competitorSummary

	result.OptimizationSuggestions = Suggestions(result.OverallMetrics, result.CompetitorAnalysis, result.TotalQueriesTested)

	em.emit("GEO analysis complete!", StepComplete, pct(100), nil)
	logger.Info("GEO analysis complete for brand %q: mention rate %.1f%%", req.BrandName, result.OverallMetrics.MentionRate)

	return result, nil
}

// runCell executes one (query, model) cell. It never fails: gateway
// exhaustion and interpreter problems both degrade into a record the
// aggregation can fold.
func (a *Analyzer) runCell(ctx context.Context, req *models.AnalysisRequest, model, query string, progress float64, em emitter) models.MentionRecord {
	text, err := a.gateway.ask(ctx, query, model, em)
	if err != nil {
		synthetic := "Error: " + err.Error()
		em.emit(fmt.Sprintf("❌ %q not mentioned in response", req.BrandName),
			StepBrandNotFound, pct(progress),
			map[string]interface{}{"model": model, "query": query})

		return models.MentionRecord{
			Query:                query,
			Model:                model,
			LLMResponse:          preview(synthetic, responsePreviewLen),
			BrandMentioned:       false,
			Sentiment:            models.SentimentNeutral,
			Context:              "llm request failed",
			CompetitorsMentioned: []models.CompetitorMention{},
			ResponseWordCount:    len(strings.Fields(synthetic)),
		}
	}

	em.emit("Analyzing brand positioning in response",
		StepAnalysisStart, pct(progress),
		map[string]interface{}{"model": model, "query": query})

	extraction := a.interpreter.analyze(ctx, text, req.BrandName, req.Competitors, em)

	if extraction.BrandMentioned {
		positionText := "mentioned"
		if extraction.MentionPosition != nil {
			positionText = fmt.Sprintf("at position #%d", *extraction.MentionPosition)
		}
		em.emit(fmt.Sprintf("✅ Found %q %s with %s sentiment", req.BrandName, positionText, extraction.Sentiment),
			StepBrandFound, pct(progress),
			map[string]interface{}{
				"model": model, "query": query,
				"position": extraction.MentionPosition, "sentiment": extraction.Sentiment,
			})
	} else {
		em.emit(fmt.Sprintf("❌ %q not mentioned in response", req.BrandName),
			StepBrandNotFound, pct(progress),
			map[string]interface{}{"model": model, "query": query})
	}

	return models.MentionRecord{
		Query:                query,
		Model:                model,
		LLMResponse:          preview(text, responsePreviewLen),
		BrandMentioned:       extraction.BrandMentioned,
		MentionPosition:      extraction.MentionPosition,
		Sentiment:            extraction.Sentiment,
		Context:              extraction.Context,
		CompetitorsMentioned: extraction.CompetitorsMentioned,
		ResponseWordCount:    len(strings.Fields(text)),
	}
}

// foldCompetitor merges one competitor mention into the running summary,
// creating the entry on first sight. The sentiment distribution stays a raw
// count here; only model-level distributions are percentages.
func foldCompetitor(summary map[string]*models.CompetitorSummary, comp models.CompetitorMention) {
	entry, ok := summary[comp.Name]
	if !ok {
		entry = &models.CompetitorSummary{
			Positions:             []int{},
			SentimentDistribution: zeroCounts(),
		}
		summary[comp.Name] = entry
	}

	entry.Mentions++
	if comp.Position != nil {
		entry.Positions = append(entry.Positions, *comp.Position)
	}
	if comp.Sentiment != nil {
		entry.SentimentDistribution[*comp.Sentiment]++
	}
}

func matrixProgress(current, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(current) / float64(total) * 100
}

func meanInt(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func zeroCounts() map[models.Sentiment]int {
	return map[models.Sentiment]int{
		models.SentimentPositive: 0,
		models.SentimentNeutral:  0,
		models.SentimentNegative: 0,
	}
}

func zeroPercentages() map[models.Sentiment]float64 {
	return map[models.Sentiment]float64{
		models.SentimentPositive: 0,
		models.SentimentNeutral:  0,
		models.SentimentNegative: 0,
	}
}
