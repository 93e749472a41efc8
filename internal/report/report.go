package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/AI2HU/geolens/internal/models"
)

// Report is a rendered analysis report, ready for delivery.
type Report struct {
	Subject string
	Text    string
	HTML    string
}

// Build renders both the plain-text and HTML versions of an analysis report.
func Build(result *models.AnalysisResult) (*Report, error) {
	if result == nil {
		return nil, fmt.Errorf("analysis result is required")
	}

	html, err := renderHTML(result)
	if err != nil {
		return nil, err
	}

	return &Report{
		Subject: fmt.Sprintf("Your AI Search Analysis Report for %s", result.BrandName),
		Text:    renderText(result),
		HTML:    html,
	}, nil
}

func renderText(result *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "GEO Analysis Report for %s\n", result.BrandName)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 30+len(result.BrandName)))

	fmt.Fprintf(&b, "Queries tested: %d\n", result.TotalQueriesTested)
	fmt.Fprintf(&b, "Models tested:  %s\n\n", strings.Join(result.LLMModelsTested, ", "))

	m := result.OverallMetrics
	fmt.Fprintf(&b, "Overall metrics\n")
	fmt.Fprintf(&b, "  Mention rate:        %.1f%%\n", m.MentionRate)
	fmt.Fprintf(&b, "  Average position:    %.1f\n", m.AverageMentionPosition)
	fmt.Fprintf(&b, "  Positive sentiment:  %.1f%%\n", m.PositivePositioning)
	fmt.Fprintf(&b, "  Neutral sentiment:   %.1f%%\n", m.NeutralPositioning)
	fmt.Fprintf(&b, "  Negative sentiment:  %.1f%%\n\n", m.NegativePositioning)

	if len(result.ModelPerformance) > 0 {
		fmt.Fprintf(&b, "Per-model performance\n")
		for _, model := range sortedKeys(result.ModelPerformance) {
			perf := result.ModelPerformance[model]
			fmt.Fprintf(&b, "  %s: %.1f%% mention rate, average position %.1f\n",
				model, perf.MentionRate, perf.AveragePosition)
		}
		b.WriteString("\n")
	}

	if len(result.CompetitorAnalysis) > 0 {
		fmt.Fprintf(&b, "Competitors\n")
		for _, name := range sortedKeys(result.CompetitorAnalysis) {
			summary := result.CompetitorAnalysis[name]
			fmt.Fprintf(&b, "  %s: %d mentions, average position %.1f\n",
				name, summary.Mentions, summary.AveragePosition)
		}
		b.WriteString("\n")
	}

	if len(result.OptimizationSuggestions) > 0 {
		fmt.Fprintf(&b, "Suggestions\n")
		for _, suggestion := range result.OptimizationSuggestions {
			fmt.Fprintf(&b, "  - %s\n", suggestion)
		}
	}

	return b.String()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 640px; margin: 0 auto;">
  <h1>GEO Analysis Report for {{.BrandName}}</h1>
  <p>{{.TotalQueriesTested}} queries tested across {{len .LLMModelsTested}} models.</p>

  <h2>Overall metrics</h2>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td>Mention rate</td><td><strong>{{printf "%.1f" .OverallMetrics.MentionRate}}%</strong></td></tr>
    <tr><td>Average mention position</td><td><strong>{{printf "%.1f" .OverallMetrics.AverageMentionPosition}}</strong></td></tr>
    <tr><td>Positive sentiment</td><td>{{printf "%.1f" .OverallMetrics.PositivePositioning}}%</td></tr>
    <tr><td>Neutral sentiment</td><td>{{printf "%.1f" .OverallMetrics.NeutralPositioning}}%</td></tr>
    <tr><td>Negative sentiment</td><td>{{printf "%.1f" .OverallMetrics.NegativePositioning}}%</td></tr>
  </table>

  {{if .Models}}
  <h2>Per-model performance</h2>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Model</th><th align="left">Mention rate</th><th align="left">Avg position</th></tr>
    {{range .Models}}
    <tr><td>{{.Name}}</td><td>{{printf "%.1f" .MentionRate}}%</td><td>{{printf "%.1f" .AveragePosition}}</td></tr>
    {{end}}
  </table>
  {{end}}

  {{if .Competitors}}
  <h2>Competitors</h2>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Competitor</th><th align="left">Mentions</th><th align="left">Avg position</th></tr>
    {{range .Competitors}}
    <tr><td>{{.Name}}</td><td>{{.Mentions}}</td><td>{{printf "%.1f" .AveragePosition}}</td></tr>
    {{end}}
  </table>
  {{end}}

  {{if .OptimizationSuggestions}}
  <h2>Suggestions</h2>
  <ul>
    {{range .OptimizationSuggestions}}<li>{{.}}</li>{{end}}
  </ul>
  {{end}}
</body>
</html>`))

type modelRow struct {
	Name            string
	MentionRate     float64
	AveragePosition float64
}

type competitorRow struct {
	Name            string
	Mentions        int
	AveragePosition float64
}

func renderHTML(result *models.AnalysisResult) (string, error) {
	data := struct {
		*models.AnalysisResult
		Models      []modelRow
		Competitors []competitorRow
	}{AnalysisResult: result}

	for _, model := range sortedKeys(result.ModelPerformance) {
		perf := result.ModelPerformance[model]
		data.Models = append(data.Models, modelRow{
			Name:            model,
			MentionRate:     perf.MentionRate,
			AveragePosition: perf.AveragePosition,
		})
	}
	for _, name := range sortedKeys(result.CompetitorAnalysis) {
		summary := result.CompetitorAnalysis[name]
		data.Competitors = append(data.Competitors, competitorRow{
			Name:            name,
			Mentions:        summary.Mentions,
			AveragePosition: summary.AveragePosition,
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
