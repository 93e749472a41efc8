package geo

import (
	"fmt"
	"strings"
)

// extractionPrompt builds the instruction for the second-pass extraction
// call. The model is asked to answer in strict JSON so the interpreter can
// decode it directly; anything else falls through to the heuristic fallback.
func extractionPrompt(brand string, competitors []string, responseText string) string {
	competitorList := "[]"
	if len(competitors) > 0 {
		competitorList = "[" + strings.Join(competitors, ", ") + "]"
	}

	return fmt.Sprintf(`Analyze the following text response and determine:
1. Is the brand "%s" mentioned? (yes/no)
2. If mentioned, what position in the response (1=first mention, 2=second, etc.)?
3. What is the sentiment toward "%s"? (positive/neutral/negative)
4. What is the context of the mention? (recommendation, comparison, criticism, etc.)
5. Which of these competitors are mentioned: %s

Text to analyze: "%s"

Respond in JSON format:
{
    "brand_mentioned": true/false,
    "mention_position": number or null,
    "sentiment": "positive"/"neutral"/"negative",
    "context": "brief description",
    "competitors_mentioned": [
        {"name": "competitor", "position": number, "sentiment": "positive/neutral/negative"}
    ]
}`, brand, brand, competitorList, responseText)
}

// stripCodeFences removes optional leading/trailing markdown fences that
// models wrap JSON answers in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// preview shortens a response for storage; full texts are never retained in
// the aggregate.
func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
