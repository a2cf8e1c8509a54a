// Package llm adapts the teacher's pkg/core/llm provider abstraction
// (pkg/core/llm/provider.go, gemini.go) to the pension domain: a Provider
// interface the specialist reasoners and summarizer call through, selected
// per agent type by a Manager loaded from config/agents.yaml the same way
// the teacher's agent.Manager does.
package llm

import "context"

// Provider is the interface every LLM backend implements. The specialist
// reasoners (internal/reasoner) and the summarizer call GenerateResponse;
// they never talk to a concrete SDK directly.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms a raw system prompt into the model's
	// preferred style, mirroring the teacher's per-provider prompt adaptation.
	AdaptInstructions(rawInstructions string) string
}

// OpenAIProvider is a thin stub kept for parity with the teacher's provider
// registry; the active provider defaults to Gemini for this domain unless
// config/agents.yaml names another.
type OpenAIProvider struct{}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return "", errUnconfiguredProvider("openai")
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}

func errUnconfiguredProvider(name string) error {
	return &ProviderError{Provider: name}
}

// ProviderError reports that a provider was selected but has no working
// credentials or implementation wired up — a normal, surfaced condition, not
// a panic. The specialist reasoner reports it in its best-effort final
// answer.
type ProviderError struct {
	Provider string
}

func (e *ProviderError) Error() string {
	return "llm provider " + e.Provider + " is not configured"
}
