package driven

import (
	"context"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// GraphStore persists components as nodes and relationships as edges.
//
// All operations are idempotent upserts keyed on stable identities:
// (component_type, qualified_name) for nodes and (source, target, kind)
// for edges. Re-applying the same batch never changes node or edge counts.
//
// Two interchangeable transports exist (bolt binary protocol and the HTTP
// query endpoint) plus an in-memory implementation; callers are unaware of
// which transport serves a call. Persistence failures are always surfaced.
type GraphStore interface {
	// UpsertComponent inserts or overwrites a component node.
	UpsertComponent(ctx context.Context, c domain.Component) error

	// UpsertEdges inserts or overwrites the given edges. Duplicate
	// (source, target, kind) identities overwrite attributes in place.
	UpsertEdges(ctx context.Context, edges []domain.Edge) error

	// ReplaceEdges removes every edge owned by source, then upserts the
	// given set. Used on reanalysis so stale references disappear.
	ReplaceEdges(ctx context.Context, source domain.ComponentRef, edges []domain.Edge) error

	// GetComponent returns a component by identity, or domain.ErrNotFound.
	GetComponent(ctx context.Context, ref domain.ComponentRef) (*domain.Component, error)

	// ListComponents returns every persisted component. Used to rebuild
	// the corpus index between batches.
	ListComponents(ctx context.Context) ([]domain.Component, error)

	// MatchComponents returns components whose name, business purpose or
	// raw definition contains any of the tokens (case-insensitive), up to
	// limit candidates. Ranking is the caller's concern.
	MatchComponents(ctx context.Context, tokens []string, typeFilter domain.ComponentType, limit int) ([]domain.Component, error)

	// Neighborhood returns the subgraph reachable from ref within depth
	// hops, following edges in either direction.
	Neighborhood(ctx context.Context, ref domain.ComponentRef, depth int) (*domain.Graph, error)

	// Ping validates connectivity.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close(ctx context.Context) error
}
