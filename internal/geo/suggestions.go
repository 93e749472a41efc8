package geo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AI2HU/geolens/internal/models"
)

const (
	lowMentionRateThreshold = 50.0
	lowPositiveThreshold    = 60.0
	latePositionThreshold   = 3.0
	maxCompetitorsNamed     = 3
)

// Suggestions derives optimization advice from the final metrics. It is a
// pure function of its inputs: no LLM call, no randomness, so the same
// analysis result always yields the same advice in the same order.
func Suggestions(metrics models.OverallMetrics, competitors map[string]*models.CompetitorSummary, totalQueriesTested int) []string {
	var out []string

	if metrics.MentionRate < lowMentionRateThreshold {
		out = append(out, "🔍 Low mention rate detected. Consider creating more content that positions your brand as a solution to common queries.")
	}

	if metrics.PositivePositioning < lowPositiveThreshold {
		out = append(out, "😊 Improve positive sentiment by highlighting customer success stories and unique value propositions.")
	}

	if metrics.AverageMentionPosition > latePositionThreshold {
		out = append(out, "⬆️ Brand mentioned late in responses. Create authoritative content to become the primary reference.")
	}

	if strong := strongCompetitors(metrics, competitors, totalQueriesTested); len(strong) > 0 {
		out = append(out, fmt.Sprintf("🥊 Strong competitor presence detected: %s. Consider differentiation strategies.",
			strings.Join(strong, ", ")))
	}

	if len(out) == 0 {
		out = append(out, "🎉 Strong GEO performance! Continue monitoring and optimizing content for emerging queries.")
	}

	return out
}

// strongCompetitors returns the competitors whose mention count beats the
// brand's own mention count (mention rate scaled back to raw queries),
// alphabetically ordered and capped at maxCompetitorsNamed.
func strongCompetitors(metrics models.OverallMetrics, competitors map[string]*models.CompetitorSummary, totalQueriesTested int) []string {
	brandMentions := metrics.MentionRate / 100 * float64(totalQueriesTested)

	var strong []string
	for name, summary := range competitors {
		if float64(summary.Mentions) > brandMentions {
			strong = append(strong, name)
		}
	}
	sort.Strings(strong)

	if len(strong) > maxCompetitorsNamed {
		strong = strong[:maxCompetitorsNamed]
	}
	return strong
}
