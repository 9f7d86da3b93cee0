package driven

import (
	"context"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// AnalysisResult is the structured shape expected back from an analysis
// call: the model fills purpose, risk, complexity and a confidence score.
type AnalysisResult struct {
	// BusinessPurpose is the model's summary of why the component exists.
	BusinessPurpose string `json:"business_purpose"`

	// Risk is the assessed risk level.
	Risk domain.RiskLevel `json:"risk_level"`

	// Complexity is the assessed complexity level.
	Complexity domain.ComplexityLevel `json:"complexity"`

	// Confidence is the model's self-reported confidence, 0-10. Callers
	// clamp it; providers pass it through as returned.
	Confidence float64 `json:"confidence_score"`
}

// LLMProvider is one candidate in the orchestrator's fallback chain.
//
// Implementations classify transport failures into the domain taxonomy:
// quota/rate-limit rejections wrap domain.ErrQuotaExceeded, network and
// server failures wrap domain.ErrTransientFailure, and unparseable model
// output wraps domain.ErrMalformedResponse.
//
// Implementations may include:
//   - Google Gemini (generateContent API)
//   - OpenAI (chat completions)
//   - Anthropic (Messages API)
//   - a deterministic mock for degraded operation
type LLMProvider interface {
	// Analyze sends an analysis prompt and parses the structured result.
	Analyze(ctx context.Context, prompt string) (*AnalysisResult, error)

	// Synthesize sends a generation prompt and returns free text.
	Synthesize(ctx context.Context, prompt string) (string, error)

	// Name returns the provider/model identifier for logging and
	// provenance, e.g. "gemini/gemini-2.0-flash".
	Name() string

	// Ping validates the provider is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
