package geo

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/geolens/internal/llm"
	"github.com/AI2HU/geolens/internal/models"
)

// fakeProvider is a scripted llm.Provider shared by the tests in this package.
type fakeProvider struct {
	name     string
	generate func(prompt string, cfg llm.Config) (*llm.Response, error)

	mu      sync.Mutex
	prompts []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string, cfg llm.Config) (*llm.Response, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.generate(prompt, cfg)
}

func (f *fakeProvider) ListModels(ctx context.Context) ([]models.ModelInfo, error) {
	return nil, nil
}

func (f *fakeProvider) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// newTestGateway wires a gateway around the fake provider with sleeping
// stubbed out, recording every requested delay.
func newTestGateway(provider *fakeProvider) (*Gateway, *[]time.Duration) {
	registry := llm.NewRegistry()
	registry.Register(provider)

	gw := NewGateway(registry, GatewayConfig{DefaultProvider: provider.name})

	var delays []time.Duration
	gw.sleep = func(d time.Duration) { delays = append(delays, d) }
	return gw, &delays
}

func TestGatewayAskSucceedsFirstAttempt(t *testing.T) {
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			assert.Equal(t, GenerationTemperature, cfg.Temperature)
			assert.Equal(t, generationMaxTokens, cfg.MaxTokens)
			return &llm.Response{Text: "Acme is a great choice."}, nil
		},
	}
	gw, delays := newTestGateway(provider)

	text, err := gw.Ask(context.Background(), "best crm tools", "some-model")
	require.NoError(t, err)
	assert.Equal(t, "Acme is a great choice.", text)
	assert.Equal(t, 1, provider.promptCount())
	assert.Empty(t, *delays)
}

func TestGatewayRetriesWithExponentialBackoff(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("connection reset by peer")
			}
			return &llm.Response{Text: "finally"}, nil
		},
	}
	gw, delays := newTestGateway(provider)

	text, err := gw.Ask(context.Background(), "q", "some-model")
	require.NoError(t, err)
	assert.Equal(t, "finally", text)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *delays)
}

func TestGatewayEmptyResponseIsRetried(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			calls++
			if calls == 1 {
				return &llm.Response{Text: "   \n"}, nil
			}
			return &llm.Response{Text: "real answer"}, nil
		},
	}
	gw, _ := newTestGateway(provider)

	text, err := gw.Ask(context.Background(), "q", "some-model")
	require.NoError(t, err)
	assert.Equal(t, "real answer", text)
	assert.Equal(t, 2, calls)
}

func TestGatewayNonRetryableErrorStillGetsAnotherTry(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			calls++
			return nil, errors.New("invalid api key")
		},
	}
	gw, delays := newTestGateway(provider)

	_, err := gw.Ask(context.Background(), "q", "some-model")
	require.Error(t, err)
	assert.Equal(t, maxAttempts, calls)
	// Lenient pause between attempts, not exponential backoff
	assert.Equal(t, []time.Duration{nonRetryablePause, nonRetryablePause}, *delays)
}

func TestGatewayExhaustionReturnsTypedError(t *testing.T) {
	longMsg := "rate limit " + strings.Repeat("x", 200)
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			return nil, errors.New(longMsg)
		},
	}
	gw, _ := newTestGateway(provider)

	_, err := gw.Ask(context.Background(), "q", "some-model")
	require.Error(t, err)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "some-model", gwErr.Model)
	assert.Equal(t, maxAttempts, gwErr.Attempts)
	assert.Len(t, gwErr.LastErr, errPreviewLen)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestGatewayProviderErrorFieldCountsAsFailure(t *testing.T) {
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			return &llm.Response{Error: "upstream server error"}, nil
		},
	}
	gw, delays := newTestGateway(provider)

	_, err := gw.Ask(context.Background(), "q", "some-model")
	require.Error(t, err)
	// "server error" is a retryable fragment
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *delays)
}

func TestGatewayUnresolvableModel(t *testing.T) {
	registry := llm.NewRegistry()
	gw := NewGateway(registry, GatewayConfig{})

	_, err := gw.Ask(context.Background(), "q", "mystery-model")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider configured")

	err = gw.ValidateModels([]string{"mystery-model"})
	require.Error(t, err)
}

func TestProviderNameForModel(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o", "openai"},
		{"chatgpt-4o-latest", "openai"},
		{"o3-mini", "openai"},
		{"claude-sonnet-4-20250514", "anthropic"},
		{"gemini-2.0-flash", "google"},
		{"models/gemini-1.5-pro", "google"},
		{"sonar-pro", "perplexity"},
		{"llama3", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProviderNameForModel(tt.model), tt.model)
	}
}

func TestGatewayEmitsRetryEvents(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		name: "fake",
		generate: func(prompt string, cfg llm.Config) (*llm.Response, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("timeout waiting for response")
			}
			return &llm.Response{Text: "ok"}, nil
		},
	}
	gw, _ := newTestGateway(provider)

	var steps []Step
	_, err := gw.AskWithProgress(context.Background(), "q", "some-model", func(e Event) {
		steps = append(steps, e.Step)
	})
	require.NoError(t, err)
	assert.Equal(t, []Step{StepLLMRequest, StepLLMRetryWarning, StepLLMRetry, StepLLMResponse}, steps)
}
