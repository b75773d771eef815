// Package llm holds the text-generation collaborators used for insights.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable indicates no provider is configured.
	ErrUnavailable = errors.New("text generation unavailable")
	// ErrRequest indicates the provider call failed.
	ErrRequest = errors.New("text generation request failed")
	// ErrEmptyResponse indicates the provider returned no text.
	ErrEmptyResponse = errors.New("text generation returned no text")
)

// TextGenerator turns a prompt into plain text, fallibly.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Provider names accepted by NewGenerator.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider       string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string
}

// NewGenerator returns the configured provider. A provider without an API key,
// or "none", yields a generator that always fails with ErrUnavailable so callers
// fall back.
func NewGenerator(cfg ProviderConfig) (TextGenerator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		if c := NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel); c != nil {
			return c, nil
		}
	case ProviderAnthropic:
		if c := NewAnthropicClient(cfg.AnthropicKey, cfg.AnthropicModel); c != nil {
			return c, nil
		}
	case ProviderNone:
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	return Unavailable(), nil
}

// Unavailable returns a generator that always fails with ErrUnavailable.
func Unavailable() TextGenerator {
	return GeneratorFunc(func(context.Context, string) (string, error) {
		return "", ErrUnavailable
	})
}
