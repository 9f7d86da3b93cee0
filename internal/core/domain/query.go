package domain

import "time"

// QueryOptions configures a question against the graph.
type QueryOptions struct {
	// TypeFilter restricts retrieval to one component type. Empty means all.
	TypeFilter ComponentType

	// Limit is the maximum number of nodes to retrieve (default 5).
	Limit int
}

// Answer is the synthesised response to a natural-language question.
type Answer struct {
	// Text is the synthesised answer, or a fixed fallback when no context
	// was found or synthesis failed.
	Text string

	// Sources are the components the answer was grounded on, best match
	// first.
	Sources []ComponentRef

	// Confidence is the mean analysis confidence of the sources, scaled to
	// 0-1. Zero when no sources were retrieved.
	Confidence float64

	// Cached is true when the answer was served from the exact-question
	// cache.
	Cached bool
}

// QueryRecord is the append-only audit record for one query invocation.
// Records are written to the query log even on failure paths and never
// mutated afterwards.
type QueryRecord struct {
	// ID is a generated identifier.
	ID string `json:"id"`

	// Question is the raw question text.
	Question string `json:"question"`

	// RetrievedRefs are the component references used as context.
	RetrievedRefs []string `json:"retrieved_refs"`

	// ContextChars is the length of the assembled context block.
	ContextChars int `json:"context_chars"`

	// Answer is the text returned to the caller.
	Answer string `json:"answer"`

	// RetrievalMillis is the time spent in graph retrieval.
	RetrievalMillis int64 `json:"retrieval_ms"`

	// SynthesisMillis is the time spent in model synthesis.
	SynthesisMillis int64 `json:"synthesis_ms"`

	// Success is false when retrieval or synthesis failed.
	Success bool `json:"success"`

	// Cached is true when the answer came from the exact-question cache.
	Cached bool `json:"cached"`

	// ErrorClass names the failure category when Success is false.
	ErrorClass string `json:"error_class,omitempty"`

	// Timestamp is when the query was received.
	Timestamp time.Time `json:"timestamp"`
}

// QueryStats summarises the query log for offline analytics.
type QueryStats struct {
	// Total is the number of recorded queries.
	Total int

	// Succeeded is the number of successful queries.
	Succeeded int

	// CacheHits is the number of queries served from cache.
	CacheHits int

	// MeanRetrievalMillis is the mean retrieval latency.
	MeanRetrievalMillis float64

	// MeanSynthesisMillis is the mean synthesis latency.
	MeanSynthesisMillis float64
}

// SuccessRate returns the fraction of queries that succeeded.
func (s QueryStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}

// CacheHitRate returns the fraction of queries served from cache.
func (s QueryStats) CacheHitRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.Total)
}
