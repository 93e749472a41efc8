package geo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AI2HU/geolens/internal/llm"
)

const (
	// GenerationTemperature is the sampling temperature for generation
	// calls. Non-zero so repeated queries produce varied phrasing.
	GenerationTemperature = 0.7

	generationMaxTokens = 500
	maxAttempts         = 3
	baseDelay           = 2 * time.Second
	nonRetryablePause   = 1 * time.Second
	attemptTimeout      = 45 * time.Second
	errPreviewLen       = 100
	queryPreviewLen     = 50
)

// retryableFragments classify upstream failures worth backing off for.
// Matching is case-insensitive substring search over the error message.
var retryableFragments = []string{
	"timeout",
	"network",
	"connection",
	"rate limit",
	"server error",
	"internal error",
}

// GatewayError is the typed failure returned when all attempts for one cell
// are exhausted. Callers treat it as a non-fatal per-cell result.
type GatewayError struct {
	Model    string
	Attempts int
	LastErr  string // truncated to errPreviewLen
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("Could not get response from %s after %d attempts: %s", e.Model, e.Attempts, e.LastErr)
}

// GatewayConfig carries the tunable parts of the gateway.
type GatewayConfig struct {
	Temperature       float64 // 0 means GenerationTemperature
	MaxTokens         int     // 0 means generationMaxTokens
	RequestsPerSecond float64 // 0 disables rate limiting
	DefaultProvider   string  // provider for model ids with no recognizable prefix
}

// Gateway sends a single query to a chosen model with bounded retry and
// exponential backoff.
type Gateway struct {
	registry        *llm.Registry
	temperature     float64
	maxTokens       int
	defaultProvider string
	limiter         *rate.Limiter
	sleep           func(time.Duration)
}

// NewGateway creates a gateway over the given provider registry.
func NewGateway(registry *llm.Registry, cfg GatewayConfig) *Gateway {
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = GenerationTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = generationMaxTokens
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Gateway{
		registry:        registry,
		temperature:     temperature,
		maxTokens:       maxTokens,
		defaultProvider: cfg.DefaultProvider,
		limiter:         limiter,
		sleep:           time.Sleep,
	}
}

// ProviderNameForModel maps a free-form model id to a provider name.
// Unrecognized ids map to the empty string; the gateway falls back to its
// configured default provider for those.
func ProviderNameForModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gpt-"), strings.HasPrefix(m, "chatgpt"),
		strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"), strings.HasPrefix(m, "o4"):
		return "openai"
	case strings.HasPrefix(m, "claude"):
		return "anthropic"
	case strings.Contains(m, "gemini"):
		return "google"
	case strings.Contains(m, "sonar"):
		return "perplexity"
	default:
		return ""
	}
}

// providerFor resolves the provider responsible for a model id.
func (g *Gateway) providerFor(model string) (llm.Provider, error) {
	name := ProviderNameForModel(model)
	if name == "" {
		name = g.defaultProvider
	}
	if name == "" {
		return nil, fmt.Errorf("no provider configured for model %q", model)
	}

	provider, ok := g.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("provider %q not registered (model %q)", name, model)
	}
	return provider, nil
}

// ValidateModels checks that every model id resolves to a registered
// provider, so the matrix loop can fail fast on misconfiguration.
func (g *Gateway) ValidateModels(models []string) error {
	for _, model := range models {
		if _, err := g.providerFor(model); err != nil {
			return err
		}
	}
	return nil
}

// Ask sends one query to one model, retrying per the gateway policy, with no
// progress reporting.
func (g *Gateway) Ask(ctx context.Context, query, model string) (string, error) {
	return g.ask(ctx, query, model, emitter{})
}

// AskWithProgress behaves like Ask but streams request/retry/error events to
// the listener.
func (g *Gateway) AskWithProgress(ctx context.Context, query, model string, listener Listener) (string, error) {
	return g.ask(ctx, query, model, emitter{listener: listener})
}

func (g *Gateway) ask(ctx context.Context, query, model string, em emitter) (string, error) {
	provider, err := g.providerFor(model)
	if err != nil {
		return "", err
	}

	queryPreview := preview(query, queryPreviewLen)

	var lastErr string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				lastErr = truncate(err.Error(), errPreviewLen)
				break
			}
		}

		if attempt > 0 {
			em.emit(fmt.Sprintf("🔄 Retrying query to %s (attempt %d/%d)...", model, attempt+1, maxAttempts),
				StepLLMRetry, nil, map[string]interface{}{
					"model": model, "query": queryPreview, "attempt": attempt + 1,
				})
		} else {
			em.emit(fmt.Sprintf("🤖 Sending query to %s: %q", model, queryPreview),
				StepLLMRequest, nil, map[string]interface{}{
					"model": model, "query": queryPreview,
				})
		}

		text, attemptErr := g.attempt(ctx, provider, query, model)
		if attemptErr == nil {
			em.emit(fmt.Sprintf("✅ Received response from %s: %q", model, preview(text, errPreviewLen)),
				StepLLMResponse, nil, map[string]interface{}{
					"model": model, "query": queryPreview,
				})
			return text, nil
		}

		lastErr = truncate(attemptErr.Error(), errPreviewLen)

		if attempt < maxAttempts-1 {
			if isRetryable(attemptErr) {
				delay := baseDelay * (1 << attempt)
				em.emit(fmt.Sprintf("⚠️ Retryable error with %s, retrying in %s: %s", model, delay, lastErr),
					StepLLMRetryWarning, nil, map[string]interface{}{
						"model": model, "query": queryPreview, "error": lastErr, "delay": delay.Seconds(),
					})
				g.sleep(delay)
			} else {
				// Non-retryable, but still try once more
				em.emit(fmt.Sprintf("⚠️ Non-retryable error with %s, trying once more: %s", model, lastErr),
					StepLLMRetryWarning, nil, map[string]interface{}{
						"model": model, "query": queryPreview, "error": lastErr,
					})
				g.sleep(nonRetryablePause)
			}
		} else {
			em.emit(fmt.Sprintf("❌ Failed to get response from %s after %d attempts: %s", model, maxAttempts, lastErr),
				StepLLMError, nil, map[string]interface{}{
					"model": model, "query": queryPreview, "error": lastErr,
				})
		}
	}

	return "", &GatewayError{Model: model, Attempts: maxAttempts, LastErr: lastErr}
}

// attempt performs exactly one completion request with the per-attempt
// timeout. An empty or whitespace-only answer counts as a failure so it goes
// through the same retry policy.
func (g *Gateway) attempt(ctx context.Context, provider llm.Provider, query, model string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	resp, err := provider.Generate(callCtx, query, llm.Config{
		Model:       model,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s", resp.Error)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("empty response received from API")
	}

	return resp.Text, nil
}

func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
