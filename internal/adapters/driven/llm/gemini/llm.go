// Package gemini provides an LLM provider adapter using the Google
// Generative Language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.LLMProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Gemini provider.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public endpoint).
	BaseURL string

	// Model is the model to use (default: gemini-2.0-flash). Fallback
	// across several Gemini models is expressed as multiple chain entries.
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Provider issues analysis and synthesis calls against generateContent.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// generateRequest is the generateContent request format.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse is the generateContent response format.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewProvider creates a new Gemini provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Analyze sends an analysis prompt and parses the structured result.
func (p *Provider) Analyze(ctx context.Context, prompt string) (*driven.AnalysisResult, error) {
	text, err := p.generate(ctx, prompt, 0.1)
	if err != nil {
		return nil, err
	}
	return llm.ParseAnalysis(text)
}

// Synthesize sends a generation prompt and returns free text.
func (p *Provider) Synthesize(ctx context.Context, prompt string) (string, error) {
	text, err := p.generate(ctx, prompt, 0.3)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// generate is the internal implementation for both Analyze and Synthesize.
func (p *Provider) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{Temperature: temperature},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrTransientFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: read response: %v", domain.ErrTransientFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: gemini status %d: %s", llm.ClassifyStatus(resp.StatusCode), resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: gemini: %v", domain.ErrMalformedResponse, err)
	}
	if genResp.Error != nil {
		// RESOURCE_EXHAUSTED arrives in the body on some quota failures.
		if genResp.Error.Status == "RESOURCE_EXHAUSTED" {
			return "", fmt.Errorf("%w: gemini: %s", domain.ErrQuotaExceeded, genResp.Error.Message)
		}
		return "", fmt.Errorf("%w: gemini: %s", domain.ErrTransientFailure, genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: gemini: no candidates returned", domain.ErrMalformedResponse)
	}

	var result strings.Builder
	for _, prt := range genResp.Candidates[0].Content.Parts {
		result.WriteString(prt.Text)
	}
	return result.String(), nil
}

// Name returns the provider/model identifier.
func (p *Provider) Name() string {
	return "gemini/" + p.model
}

// Ping validates the API key by listing models without running inference.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1beta/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
