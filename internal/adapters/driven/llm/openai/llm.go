// Package openai provides an LLM provider adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.LLMProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultModel = "gpt-4o-mini"

	maxTokens = 4000
)

// Config holds configuration for the OpenAI provider.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API base URL (for compatible endpoints).
	BaseURL string

	// Model is the model to use (default: gpt-4o-mini).
	Model string
}

// Provider issues analysis and synthesis calls via chat completions.
type Provider struct {
	client *goopenai.Client
	model  string
}

// NewProvider creates a new OpenAI provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Analyze sends an analysis prompt and parses the structured result.
func (p *Provider) Analyze(ctx context.Context, prompt string) (*driven.AnalysisResult, error) {
	text, err := p.complete(ctx, prompt, 0.1, true)
	if err != nil {
		return nil, err
	}
	return llm.ParseAnalysis(text)
}

// Synthesize sends a generation prompt and returns free text.
func (p *Provider) Synthesize(ctx context.Context, prompt string) (string, error) {
	text, err := p.complete(ctx, prompt, 0.3, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// complete is the internal implementation for both Analyze and Synthesize.
func (p *Provider) complete(ctx context.Context, prompt string, temperature float32, jsonMode bool) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices returned", domain.ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai errors onto the domain taxonomy.
func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: openai: %v", llm.ClassifyStatus(apiErr.HTTPStatusCode), err)
	}
	return fmt.Errorf("%w: openai: %v", domain.ErrTransientFailure, err)
}

// Name returns the provider/model identifier.
func (p *Provider) Name() string {
	return "openai/" + p.model
}

// Ping validates the API key by listing models without running inference.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}
