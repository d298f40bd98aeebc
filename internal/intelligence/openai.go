package intelligence

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const defaultOpenAIModel = "gpt-4.1"

// OpenAIConfig holds OpenAI configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional: override API base URL
	Model   string // Optional: override the default model
}

// OpenAIClient implements Completer on the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed completer.
func NewOpenAIClient(config OpenAIConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(req.MaxTokens),
	}

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Strict: openai.Bool(true),
					Schema: req.Schema,
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Completer = (*OpenAIClient)(nil)
