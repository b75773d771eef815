package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicClient implements TextGenerator using the Anthropic messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient returns nil if apiKey is empty.
func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) *AnthropicClient {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = defaultAnthropicModel
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)

	return &AnthropicClient{
		client: client,
		model:  model,
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (text string, err error) {
	if c == nil {
		return "", ErrUnavailable
	}

	ctx, span := startGeneration(ctx, ProviderAnthropic, c.model, prompt)
	var usage anthropic.Usage
	defer func() { endGeneration(span, text, usage.InputTokens, usage.OutputTokens, err) }()

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   defaultMaxTokens,
		Temperature: anthropic.Float(defaultTemperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRequest, err)
	}
	usage = resp.Usage

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text = strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
