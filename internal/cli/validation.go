package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// validateAPIKey checks an API key entered during init
func validateAPIKey(input string, provider string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("API key is required for %s", provider)
	}
	if len(input) < 10 {
		return "", fmt.Errorf("API key seems too short")
	}
	return input, nil
}

// validateBaseURL checks a provider base URL, defaulting to local Ollama
func validateBaseURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "http://localhost:11434", nil
	}
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return "", fmt.Errorf("base URL must start with http:// or https://")
	}
	return input, nil
}

// validateNumber parses numeric input within a range, empty means min
func validateNumber(input string, min, max int) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return min, nil
	}

	num, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s (enter a positive integer)", input)
	}
	if num < min || num > max {
		return 0, fmt.Errorf("number must be between %d and %d, got: %d", min, max, num)
	}
	return num, nil
}

// maskSensitiveData hides most of a credential for display
func maskSensitiveData(data string, maskChar string) string {
	if data == "" {
		return "(not set)"
	}
	if len(data) <= 8 {
		return strings.Repeat(maskChar, 3)
	}
	return data[:4] + "..." + data[len(data)-4:]
}

// formatDuration renders an elapsed time in the largest sensible unit
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
