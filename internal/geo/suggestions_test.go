package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/geolens/internal/models"
)

func healthyMetrics() models.OverallMetrics {
	return models.OverallMetrics{
		MentionRate:            80,
		PositivePositioning:    75,
		NeutralPositioning:     20,
		NegativePositioning:    5,
		AverageMentionPosition: 1.2,
		BrandVisibilityScore:   80,
	}
}

func TestSuggestionsStrongPerformance(t *testing.T) {
	got := Suggestions(healthyMetrics(), nil, 10)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Strong GEO performance")
}

func TestSuggestionsRuleOrder(t *testing.T) {
	metrics := models.OverallMetrics{
		MentionRate:            20,
		PositivePositioning:    30,
		AverageMentionPosition: 4.5,
	}
	competitors := map[string]*models.CompetitorSummary{
		"Zeta": {Mentions: 9},
	}

	got := Suggestions(metrics, competitors, 10)
	require.Len(t, got, 4)
	assert.Contains(t, got[0], "Low mention rate")
	assert.Contains(t, got[1], "positive sentiment")
	assert.Contains(t, got[2], "mentioned late")
	assert.Contains(t, got[3], "Zeta")
}

func TestSuggestionsThresholdBoundaries(t *testing.T) {
	metrics := models.OverallMetrics{
		MentionRate:            50, // not strictly below
		PositivePositioning:    60, // not strictly below
		AverageMentionPosition: 3,  // not strictly above
	}
	got := Suggestions(metrics, nil, 10)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Strong GEO performance")
}

func TestSuggestionsCompetitorRule(t *testing.T) {
	metrics := healthyMetrics() // 80% of 10 queries = 8 brand mentions

	competitors := map[string]*models.CompetitorSummary{
		"Under": {Mentions: 8}, // ties do not count
		"Over":  {Mentions: 9},
	}
	got := Suggestions(metrics, competitors, 10)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Strong competitor presence detected: Over.")
	assert.NotContains(t, got[0], "Under")
}

func TestSuggestionsCompetitorNamesCappedAndSorted(t *testing.T) {
	metrics := models.OverallMetrics{MentionRate: 0}
	competitors := map[string]*models.CompetitorSummary{
		"Delta": {Mentions: 1},
		"Alpha": {Mentions: 1},
		"Echo":  {Mentions: 1},
		"Bravo": {Mentions: 1},
	}

	got := Suggestions(metrics, competitors, 5)
	require.Len(t, got, 3) // low mention, low positive, competitors
	assert.Contains(t, got[2], "Alpha, Bravo, Delta")
	assert.NotContains(t, got[2], "Echo")
}

func TestSuggestionsArePure(t *testing.T) {
	metrics := models.OverallMetrics{MentionRate: 10, PositivePositioning: 10}
	competitors := map[string]*models.CompetitorSummary{
		"B": {Mentions: 5},
		"A": {Mentions: 5},
	}

	first := Suggestions(metrics, competitors, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Suggestions(metrics, competitors, 10))
	}
}
