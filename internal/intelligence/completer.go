// Package intelligence assigns semantic action IDs to parsed user actions
// and generates per-project insight reports, using an LLM provider selected
// by configuration.
package intelligence

import (
	"context"
	"fmt"

	"github.com/replaydeck/replaydeck/pkg/env"
)

// CompletionRequest is a single prompt for the configured model.
type CompletionRequest struct {
	System string
	Prompt string

	// SchemaName and Schema, when set, request strict JSON-schema output.
	// Providers without native schema support fold the schema into the
	// prompt instead.
	SchemaName string
	Schema     map[string]interface{}

	Temperature float64
	MaxTokens   int64
}

// Completer is the minimal LLM surface the analysis pipeline needs. Both
// provider clients and test fakes implement it.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewCompleterFromEnv builds the provider client selected by
// REPLAY_LLM_PROVIDER.
func NewCompleterFromEnv() (Completer, error) {
	provider := env.LLMProvider.Get()
	switch provider {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:  env.OpenAIAPIKey.Get(),
			BaseURL: env.OpenAIAPIBase.Get(),
			Model:   env.LLMModel.Get(),
		})
	case "anthropic":
		return NewAnthropicClient(AnthropicConfig{
			APIKey: env.AnthropicAPIKey.Get(),
			Model:  env.LLMModel.Get(),
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
