package llm

import (
	"context"
	"sync"

	"github.com/AI2HU/geolens/internal/models"
)

// Config carries per-call generation parameters
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Response represents a completion returned by a provider
type Response struct {
	Text       string
	TokensUsed int
	LatencyMs  int64
	Model      string
	Provider   string
	Error      string
}

// Provider is the interface implemented by each LLM backend
type Provider interface {
	// Name returns the provider name (openai, anthropic, google, ...)
	Name() string

	// Generate sends a prompt and returns the completion
	Generate(ctx context.Context, prompt string, config Config) (*Response, error)

	// ListModels lists the text-to-text models available from the provider
	ListModels(ctx context.Context) ([]models.ModelInfo, error)
}

// Registry holds the configured providers by name
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// Get returns the provider with the given name
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[name]
	return provider, ok
}

// Names returns the registered provider names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
