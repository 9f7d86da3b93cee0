package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/logger"
)

// maxDefinitionExcerpt bounds how much raw definition text goes into the
// analysis prompt.
const maxDefinitionExcerpt = 2000

// Analyzer turns one raw component record into a structured semantic record
// using the orchestrator, and decides whether the record needs human review.
type Analyzer struct {
	orchestrator *Orchestrator
	settings     domain.AnalyzerSettings
}

// NewAnalyzer creates an analyzer with the given review threshold settings.
func NewAnalyzer(orchestrator *Orchestrator, settings domain.AnalyzerSettings) *Analyzer {
	if settings.ReviewThreshold <= 0 {
		settings = domain.DefaultAnalyzerSettings()
	}
	return &Analyzer{orchestrator: orchestrator, settings: settings}
}

// AnalyzeComponent produces the semantic record for one raw component.
// The model's confidence is clamped to [0,10]; components with an empty raw
// definition are capped at the empty-definition ceiling regardless of what
// the model claims. Escalation never blocks the result.
func (a *Analyzer) AnalyzeComponent(ctx context.Context, raw domain.RawComponent, corpusSummary string) domain.Component {
	prompt := a.buildPrompt(raw, corpusSummary)
	result, provider := a.orchestrator.Analyze(ctx, prompt)

	confidence := clamp(result.Confidence, 0, 10)
	emptyDefinition := strings.TrimSpace(raw.RawDefinition) == ""
	if emptyDefinition && confidence > domain.EmptyDefinitionConfidenceCap {
		confidence = domain.EmptyDefinitionConfidenceCap
	}

	purpose := strings.TrimSpace(result.BusinessPurpose)
	review := confidence < a.settings.ReviewThreshold || purpose == ""
	if review {
		logger.Debug("Component %s flagged for review (confidence %.1f)", raw.Ref(), confidence)
	}

	return domain.Component{
		Type:            raw.Type,
		Name:            raw.Name,
		RawDefinition:   raw.RawDefinition,
		IsActive:        raw.IsActive,
		BusinessPurpose: purpose,
		Risk:            result.Risk,
		Complexity:      result.Complexity,
		Confidence:      confidence,
		Review:          review,
		Provider:        provider,
		LastAnalyzed:    time.Now().UTC(),
	}
}

// buildPrompt layers structural facts, technical facts and business-context
// hints drawn from naming conventions into one analysis prompt.
func (a *Analyzer) buildPrompt(raw domain.RawComponent, corpusSummary string) string {
	var b strings.Builder

	b.WriteString("You are analysing metadata from a business-automation platform.\n\n")

	// Layer 1: structural facts.
	fmt.Fprintf(&b, "Component type: %s\n", raw.Type)
	fmt.Fprintf(&b, "Qualified name: %s\n", raw.Name)
	fmt.Fprintf(&b, "Active: %t\n", raw.IsActive)

	// Layer 2: technical facts.
	definition := strings.TrimSpace(raw.RawDefinition)
	if definition == "" {
		b.WriteString("Raw definition: unavailable\n")
	} else {
		fmt.Fprintf(&b, "Raw definition length: %d chars\n", len(definition))
		excerpt := definition
		if len(excerpt) > maxDefinitionExcerpt {
			excerpt = excerpt[:maxDefinitionExcerpt]
		}
		fmt.Fprintf(&b, "Raw definition excerpt:\n%s\n", excerpt)
	}

	// Layer 3: business-context hints from naming conventions.
	if tokens := nameTokens(raw.Name); len(tokens) > 0 {
		fmt.Fprintf(&b, "Name tokens (naming-convention hints): %s\n", strings.Join(tokens, ", "))
	}
	if corpusSummary != "" {
		fmt.Fprintf(&b, "Known corpus: %s\n", corpusSummary)
	}

	b.WriteString(`
Analyse the component's business purpose, risk and complexity.
Respond with ONLY a JSON object of this exact shape:
{"business_purpose": "...", "risk_level": "low|medium|high", "complexity": "simple|moderate|complex", "confidence_score": 0.0}
confidence_score is 0-10 and reflects how clear the purpose is from the metadata.
`)
	return b.String()
}

// nameTokens splits a qualified name on underscores and camel-case
// boundaries to surface the business vocabulary embedded in it.
func nameTokens(name string) []string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
