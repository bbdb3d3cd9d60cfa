// Package llm connects the assistant to a language model through
// langchaingo and implements the email operations built on top of it.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Supported provider names.
const (
	ProviderBedrock   = "bedrock"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

// Model call defaults.
const (
	DefaultModelID     = "eu.anthropic.claude-3-7-sonnet-20250219-v1:0"
	DefaultMaxTokens   = 256
	DefaultTemperature = 0.3
	DefaultTopP        = 0.2
	DefaultOllamaURL   = "http://localhost:11434"
)

// Options selects and tunes the model behind a Client. Zero values fall
// back to the defaults above. An empty APIKey defers to the provider's
// own environment variables.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Client is a thin veneer over a langchaingo model carrying the call
// parameters every prompt is sent with.
type Client struct {
	model       llms.Model
	provider    string
	maxTokens   int
	temperature float64
	topP        float64
}

// New builds a client for the configured provider. Bedrock is the
// default and relies on ambient AWS credentials.
func New(opts Options) (*Client, error) {
	if opts.Provider == "" {
		opts.Provider = ProviderBedrock
	}
	if opts.Model == "" {
		opts.Model = DefaultModelID
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = DefaultTopP
	}

	var (
		model llms.Model
		err   error
	)
	switch opts.Provider {
	case ProviderBedrock:
		model, err = bedrock.New(bedrock.WithModel(opts.Model))
	case ProviderAnthropic:
		aopts := []anthropic.Option{anthropic.WithModel(opts.Model)}
		if opts.APIKey != "" {
			aopts = append(aopts, anthropic.WithToken(opts.APIKey))
		}
		model, err = anthropic.New(aopts...)
	case ProviderOpenAI:
		oopts := []openai.Option{openai.WithModel(opts.Model)}
		if opts.APIKey != "" {
			oopts = append(oopts, openai.WithToken(opts.APIKey))
		}
		if opts.BaseURL != "" {
			oopts = append(oopts, openai.WithBaseURL(opts.BaseURL))
		}
		model, err = openai.New(oopts...)
	case ProviderOllama:
		url := opts.BaseURL
		if url == "" {
			url = DefaultOllamaURL
		}
		model, err = ollama.New(ollama.WithServerURL(url), ollama.WithModel(opts.Model))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", opts.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", opts.Provider, err)
	}

	log.Debug().
		Str("provider", opts.Provider).
		Str("model", opts.Model).
		Int("max_tokens", opts.MaxTokens).
		Msg("model client ready")

	return &Client{
		model:       model,
		provider:    opts.Provider,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		topP:        opts.TopP,
	}, nil
}

// Provider returns the provider name the client was built for.
func (c *Client) Provider() string { return c.provider }

// Generate sends one prompt and returns the model's text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
		llms.WithTopP(c.topP),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	log.Debug().
		Str("provider", c.provider).
		Int("prompt_chars", len(prompt)).
		Int("response_chars", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("model call completed")
	return out, nil
}
