package driven

import (
	"context"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// QueryLog is the append-only store of query records, independent of the
// graph. It can be pruned or rotated without affecting answering capability.
type QueryLog interface {
	// Append writes one record. Records are never mutated afterwards.
	Append(ctx context.Context, rec domain.QueryRecord) error

	// List returns all records in append order, for offline analytics.
	List(ctx context.Context) ([]domain.QueryRecord, error)

	// Close releases resources.
	Close() error
}
