package driving

import (
	"context"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// Ingestor accepts raw component records and persists their analysed form.
type Ingestor interface {
	// Ingest analyses and persists a batch of raw components. With force
	// false, components already in the graph are skipped; with force true,
	// their semantic fields and edges are overwritten.
	Ingest(ctx context.Context, raws []domain.RawComponent, force bool) (domain.IngestReport, error)
}

// Answerer resolves natural-language questions against the graph.
type Answerer interface {
	// Answer retrieves matching nodes, assembles a bounded context block
	// and synthesises a grounded answer. Failures surface as a degraded
	// answer, never an error, since this is a user-facing path.
	Answer(ctx context.Context, question string, opts domain.QueryOptions) domain.Answer

	// Dependencies returns the subgraph around a component.
	Dependencies(ctx context.Context, ref domain.ComponentRef, depth int) (*domain.Graph, error)
}
