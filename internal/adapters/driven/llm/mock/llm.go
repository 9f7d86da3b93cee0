// Package mock provides the deterministic fallback provider used when the
// whole model chain is exhausted. It never fails, so analysis pipelines
// degrade instead of aborting.
package mock

import (
	"context"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.LLMProvider = (*Provider)(nil)

// Placeholder content returned for every call. Confidence is fixed low so
// mock-analysed components are always escalated for review.
const (
	// PlaceholderPurpose is the fixed analysis placeholder.
	PlaceholderPurpose = "Automated placeholder analysis: no language model was reachable. Configure a provider for a real analysis."

	// PlaceholderAnswer is the fixed synthesis placeholder.
	PlaceholderAnswer = "No language model was reachable to synthesise an answer. The retrieved context is recorded in the query log."

	// PlaceholderConfidence keeps mock results below any sane review
	// threshold.
	PlaceholderConfidence = 1.0
)

// Provider is the deterministic mock responder.
type Provider struct{}

// NewProvider creates the mock provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Analyze returns the fixed low-confidence placeholder.
func (p *Provider) Analyze(_ context.Context, _ string) (*driven.AnalysisResult, error) {
	return &driven.AnalysisResult{
		BusinessPurpose: PlaceholderPurpose,
		Risk:            domain.RiskMedium,
		Complexity:      domain.ComplexityModerate,
		Confidence:      PlaceholderConfidence,
	}, nil
}

// Synthesize returns the fixed placeholder answer.
func (p *Provider) Synthesize(_ context.Context, _ string) (string, error) {
	return PlaceholderAnswer, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "mock"
}

// Ping always succeeds.
func (p *Provider) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	return nil
}
