package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = string(anthropic.ModelClaudeSonnet4_5)

// AnthropicConfig holds Anthropic configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Optional: override the default model
}

// AnthropicClient implements Completer on the Anthropic messages API. The
// API has no structured-output mode, so schemas are folded into the prompt
// and the first JSON object in the reply is extracted.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient creates an Anthropic-backed completer.
func NewAnthropicClient(config AnthropicConfig) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}
	model := config.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		model:  model,
	}, nil
}

func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	prompt := req.Prompt
	if req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema)
		if err != nil {
			return "", fmt.Errorf("failed to encode response schema: %w", err)
		}
		prompt = fmt.Sprintf("%s\n\nRespond with a single JSON object matching this JSON schema, and nothing else:\n%s", prompt, schemaJSON)
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: req.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := sb.String()
	if req.Schema != nil {
		out = extractJSONObject(out)
	}
	return out, nil
}

// extractJSONObject trims any prose surrounding the first top-level JSON
// object in a model reply.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

var _ Completer = (*AnthropicClient)(nil)
