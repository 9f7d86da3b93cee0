package services

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
	"github.com/custodia-labs/metagraph/internal/logger"
)

// defaultCallTimeout bounds every individual provider call. A timed-out
// call is treated as a transient failure and triggers fallback.
const defaultCallTimeout = 60 * time.Second

// Candidate is one entry in the orchestrator's priority list: a provider
// plus an optional rate limiter derived from its requests-per-minute cap.
type Candidate struct {
	// Provider is the model adapter.
	Provider driven.LLMProvider

	// Limiter caps the call rate. Nil means unlimited.
	Limiter *rate.Limiter
}

// NewCandidate wraps a provider with an optional requests-per-minute cap.
func NewCandidate(p driven.LLMProvider, requestsPerMinute int) Candidate {
	c := Candidate{Provider: p}
	if requestsPerMinute > 0 {
		c.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
	return c
}

// Orchestrator issues analysis and synthesis requests against an ordered
// list of providers, highest capability first. On a quota, transient or
// malformed-response failure it advances to the next candidate without
// retrying; when every candidate is exhausted it degrades to the fallback
// provider, so callers never hard-fail on model unavailability.
type Orchestrator struct {
	candidates []Candidate
	fallback   driven.LLMProvider
	timeout    time.Duration
}

// NewOrchestrator creates an orchestrator over the given priority list.
// fallback must be a provider that cannot fail (the deterministic mock);
// it answers when the whole chain is exhausted.
func NewOrchestrator(candidates []Candidate, fallback driven.LLMProvider) *Orchestrator {
	return &Orchestrator{
		candidates: candidates,
		fallback:   fallback,
		timeout:    defaultCallTimeout,
	}
}

// SetTimeout overrides the per-call timeout. Useful for testing.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	o.timeout = d
}

// Analyze runs an analysis prompt through the chain and returns the
// structured result plus the name of the provider that served it.
func (o *Orchestrator) Analyze(ctx context.Context, prompt string) (*driven.AnalysisResult, string) {
	for _, cand := range o.candidates {
		if !o.acquire(ctx, cand) {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		result, err := cand.Provider.Analyze(callCtx, prompt)
		cancel()
		if err != nil {
			logger.Warn("Provider %s failed analysis, advancing: %v", cand.Provider.Name(), err)
			continue
		}
		logger.Debug("Analysis served by %s", cand.Provider.Name())
		return result, cand.Provider.Name()
	}

	// Exhausted chains are logged but never escalated: analysis pipelines
	// must not hard-fail solely because no model is reachable.
	logger.Warn("All %d providers exhausted, using %s", len(o.candidates), o.fallback.Name())
	result, err := o.fallback.Analyze(ctx, prompt)
	if err != nil {
		result = &driven.AnalysisResult{Confidence: 0}
	}
	return result, o.fallback.Name()
}

// Synthesize runs a generation prompt through the chain and returns the
// text plus the name of the provider that served it.
func (o *Orchestrator) Synthesize(ctx context.Context, prompt string) (string, string) {
	for _, cand := range o.candidates {
		if !o.acquire(ctx, cand) {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		text, err := cand.Provider.Synthesize(callCtx, prompt)
		cancel()
		if err != nil {
			logger.Warn("Provider %s failed synthesis, advancing: %v", cand.Provider.Name(), err)
			continue
		}
		logger.Debug("Synthesis served by %s", cand.Provider.Name())
		return text, cand.Provider.Name()
	}

	logger.Warn("All %d providers exhausted, using %s", len(o.candidates), o.fallback.Name())
	text, err := o.fallback.Synthesize(ctx, prompt)
	if err != nil {
		text = ""
	}
	return text, o.fallback.Name()
}

// acquire waits on the candidate's rate limiter. A cancelled wait skips
// the candidate rather than aborting the whole chain.
func (o *Orchestrator) acquire(ctx context.Context, cand Candidate) bool {
	if cand.Limiter == nil {
		return true
	}
	if err := cand.Limiter.Wait(ctx); err != nil {
		logger.Warn("Rate limiter wait for %s interrupted: %v", cand.Provider.Name(), err)
		return false
	}
	return true
}

// Close closes every provider in the chain and the fallback.
func (o *Orchestrator) Close() error {
	for _, cand := range o.candidates {
		_ = cand.Provider.Close()
	}
	return o.fallback.Close()
}
