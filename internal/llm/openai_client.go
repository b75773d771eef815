package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements TextGenerator using the OpenAI chat completions API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient returns nil if apiKey is empty.
func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) *OpenAIClient {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &OpenAIClient{
		client: client,
		model:  model,
	}
}

// Generate sends prompt with the shared system prompt and returns the reply text.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (text string, err error) {
	if c == nil {
		return "", ErrUnavailable
	}

	ctx, span := startGeneration(ctx, ProviderOpenAI, c.model, prompt)
	var usage openai.CompletionUsage
	defer func() { endGeneration(span, text, usage.PromptTokens, usage.CompletionTokens, err) }()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.model,
		MaxCompletionTokens: openai.Int(defaultMaxTokens),
		Temperature:         openai.Float(defaultTemperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	usage = resp.Usage

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrEmptyResponse)
	}
	text = strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
