package driven

import (
	"context"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// AnswerCache is an optional exact-question cache for the query engine,
// keyed on normalised question text. Entries have no automatic expiry;
// invalidation happens on corpus re-ingestion via Clear.
type AnswerCache interface {
	// Get returns the cached answer for a normalised question, or false.
	Get(ctx context.Context, key string) (*domain.Answer, bool, error)

	// Put stores an answer under a normalised question.
	Put(ctx context.Context, key string, ans domain.Answer) error

	// Clear drops every entry.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
