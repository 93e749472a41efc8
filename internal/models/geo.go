package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sentiment is the coarse three-way tone classification toward a named entity.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments lists all valid sentiment values in a stable order.
func Sentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}
}

// ParseSentiment normalizes a free-form sentiment string. Anything that is not
// recognizably positive or negative is treated as neutral.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Query is a GEO test query. Callers may submit queries either as plain
// strings or as objects carrying a "query" field; both decode into the same
// type so the rest of the pipeline only ever sees strings.
type Query struct {
	Text string
}

// UnmarshalJSON accepts "a query" and {"query": "a query", ...} alike.
func (q *Query) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		q.Text = s
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("query must be a string or an object: %w", err)
	}

	if raw, ok := obj["query"]; ok {
		if err := json.Unmarshal(raw, &s); err == nil {
			q.Text = s
			return nil
		}
	}

	// No usable query field; fall back to the raw representation.
	q.Text = string(data)
	return nil
}

// MarshalJSON renders the query back as a plain string.
func (q Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Text)
}

// AnalysisRequest describes one GEO analysis run: a brand tested against an
// ordered list of queries across an ordered list of LLM models.
type AnalysisRequest struct {
	BrandName   string   `json:"brand_name" bson:"brand_name"`
	Competitors []string `json:"competitors" bson:"competitors"`
	Queries     []Query  `json:"queries" bson:"queries"`
	Models      []string `json:"models" bson:"models"`
}

// QueryStrings returns the normalized query texts in submission order.
func (r *AnalysisRequest) QueryStrings() []string {
	out := make([]string, len(r.Queries))
	for i, q := range r.Queries {
		out[i] = q.Text
	}
	return out
}

// TotalTests is the number of (query, model) cells the run will execute.
func (r *AnalysisRequest) TotalTests() int {
	return len(r.Queries) * len(r.Models)
}

// Validate checks the fields required before any LLM call is issued.
func (r *AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.BrandName) == "" {
		return fmt.Errorf("brand_name is required")
	}
	return nil
}

// CompetitorMention is one competitor referenced inside a single response.
type CompetitorMention struct {
	Name      string     `json:"name" bson:"name"`
	Position  *int       `json:"position" bson:"position"`
	Sentiment *Sentiment `json:"sentiment" bson:"sentiment"`
}

// MentionRecord captures the outcome of one (query, model) cell. Records are
// immutable once appended to the result.
type MentionRecord struct {
	Query                string              `json:"query" bson:"query"`
	Model                string              `json:"model" bson:"model"`
	LLMResponse          string              `json:"llm_response" bson:"llm_response"` // truncated preview, not the full text
	BrandMentioned       bool                `json:"brand_mentioned" bson:"brand_mentioned"`
	MentionPosition      *int                `json:"mention_position" bson:"mention_position"`
	Sentiment            Sentiment           `json:"sentiment" bson:"sentiment"`
	Context              string              `json:"context" bson:"context"`
	CompetitorsMentioned []CompetitorMention `json:"competitors_mentioned" bson:"competitors_mentioned"`
	ResponseWordCount    int                 `json:"response_length" bson:"response_length"`
}

// ModelPerformance aggregates mention metrics for one model across all
// queries. The sentiment distribution holds percentages of mentions.
type ModelPerformance struct {
	QueriesTested         int                   `json:"queries_tested" bson:"queries_tested"`
	MentionRate           float64               `json:"mention_rate" bson:"mention_rate"`
	AveragePosition       float64               `json:"average_position" bson:"average_position"`
	SentimentDistribution map[Sentiment]float64 `json:"sentiment_distribution" bson:"sentiment_distribution"`
}

// CompetitorSummary aggregates mentions of one competitor across the whole
// matrix. Unlike ModelPerformance, the sentiment distribution holds raw
// counts; consumers depend on that difference.
type CompetitorSummary struct {
	Mentions              int               `json:"mentions" bson:"mentions"`
	AveragePosition       float64           `json:"average_position" bson:"average_position"`
	Positions             []int             `json:"positions" bson:"positions"`
	SentimentDistribution map[Sentiment]int `json:"sentiment_distribution" bson:"sentiment_distribution"`
}

// OverallMetrics holds the run-wide derived rates. MentionRate and
// BrandVisibilityScore always carry the same value; both fields exist because
// downstream report consumers read them independently.
type OverallMetrics struct {
	MentionRate            float64 `json:"mention_rate" bson:"mention_rate"`
	PositivePositioning    float64 `json:"positive_positioning" bson:"positive_positioning"`
	NeutralPositioning     float64 `json:"neutral_positioning" bson:"neutral_positioning"`
	NegativePositioning    float64 `json:"negative_positioning" bson:"negative_positioning"`
	AverageMentionPosition float64 `json:"average_mention_position" bson:"average_mention_position"`
	BrandVisibilityScore   float64 `json:"brand_visibility_score" bson:"brand_visibility_score"`
}

// AnalysisResult is the full outcome of one GEO analysis run.
type AnalysisResult struct {
	BrandName               string                       `json:"brand_name" bson:"brand_name"`
	TotalQueriesTested      int                          `json:"total_queries_tested" bson:"total_queries_tested"`
	LLMModelsTested         []string                     `json:"llm_models_tested" bson:"llm_models_tested"`
	QueryPerformance        []MentionRecord              `json:"query_performance" bson:"query_performance"`
	ModelPerformance        map[string]*ModelPerformance `json:"model_performance" bson:"model_performance"`
	CompetitorAnalysis      map[string]*CompetitorSummary `json:"competitor_analysis" bson:"competitor_analysis"`
	OverallMetrics          OverallMetrics               `json:"overall_metrics" bson:"overall_metrics"`
	OptimizationSuggestions []string                     `json:"optimization_suggestions" bson:"optimization_suggestions"`
}
