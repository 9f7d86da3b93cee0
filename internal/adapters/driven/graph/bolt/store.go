// Package bolt provides the graph store adapter over the native binary
// protocol, using the official Neo4j driver.
package bolt

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/graph/cypher"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.GraphStore = (*Store)(nil)

// Store is the bolt-backed graph store.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewStore connects a bolt store and verifies connectivity. Managed cloud
// instances behind restrictive routing commonly fail here; the caller is
// expected to fall back to the HTTP transport.
func NewStore(ctx context.Context, settings domain.GraphSettings) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		settings.URI,
		neo4j.BasicAuth(settings.Username, settings.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("create bolt driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify bolt connectivity: %w", err)
	}

	database := settings.Database
	if database == "" {
		database = "neo4j"
	}
	return &Store{driver: driver, database: database}, nil
}

// UpsertComponent inserts or overwrites a component node.
func (s *Store) UpsertComponent(ctx context.Context, c domain.Component) error {
	if _, err := s.write(ctx, cypher.UpsertComponent, cypher.ComponentParams(c)); err != nil {
		return fmt.Errorf("upsert component %s: %w", c.Ref(), err)
	}
	return nil
}

// UpsertEdges inserts or overwrites the given edges.
func (s *Store) UpsertEdges(ctx context.Context, edges []domain.Edge) error {
	for _, edge := range edges {
		if _, err := s.write(ctx, cypher.UpsertEdge(edge.Kind), cypher.EdgeParams(edge)); err != nil {
			return fmt.Errorf("upsert edge %s: %w", edge.Key(), err)
		}
	}
	return nil
}

// ReplaceEdges removes every edge owned by source, then upserts the set.
func (s *Store) ReplaceEdges(ctx context.Context, source domain.ComponentRef, edges []domain.Edge) error {
	if _, err := s.write(ctx, cypher.DeleteEdgesFrom, cypher.RefParams(source)); err != nil {
		return fmt.Errorf("delete edges of %s: %w", source, err)
	}
	return s.UpsertEdges(ctx, edges)
}

// GetComponent returns a component by identity, or domain.ErrNotFound.
func (s *Store) GetComponent(ctx context.Context, ref domain.ComponentRef) (*domain.Component, error) {
	rows, err := s.read(ctx, cypher.GetComponent, cypher.RefParams(ref))
	if err != nil {
		return nil, fmt.Errorf("get component %s: %w", ref, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("component %s: %w", ref, domain.ErrNotFound)
	}
	comp := cypher.ComponentFromRow(rows[0])
	return &comp, nil
}

// ListComponents returns every persisted component.
func (s *Store) ListComponents(ctx context.Context) ([]domain.Component, error) {
	rows, err := s.read(ctx, cypher.ListComponents, nil)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return componentsFromRows(rows), nil
}

// MatchComponents returns keyword-matching candidates up to limit.
func (s *Store) MatchComponents(ctx context.Context, tokens []string, typeFilter domain.ComponentType, limit int) ([]domain.Component, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	statement, params := cypher.MatchComponents(tokens, typeFilter, limit)
	rows, err := s.read(ctx, statement, params)
	if err != nil {
		return nil, fmt.Errorf("match components: %w", err)
	}
	return componentsFromRows(rows), nil
}

// Neighborhood returns the subgraph within depth hops of ref.
func (s *Store) Neighborhood(ctx context.Context, ref domain.ComponentRef, depth int) (*domain.Graph, error) {
	if depth <= 0 {
		depth = 1
	}

	nodeRows, err := s.read(ctx, cypher.NeighborhoodNodes(depth), cypher.RefParams(ref))
	if err != nil {
		return nil, fmt.Errorf("neighborhood nodes of %s: %w", ref, err)
	}
	edgeRows, err := s.read(ctx, cypher.NeighborhoodEdges(depth), cypher.RefParams(ref))
	if err != nil {
		return nil, fmt.Errorf("neighborhood edges of %s: %w", ref, err)
	}

	graph := &domain.Graph{Nodes: componentsFromRows(nodeRows)}
	for _, row := range edgeRows {
		graph.Edges = append(graph.Edges, cypher.EdgeFromRow(row))
	}
	return graph, nil
}

// Ping validates connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close releases the connection.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// write runs a statement in a write session.
func (s *Store) write(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error) {
	return s.run(ctx, statement, params, neo4j.AccessModeWrite)
}

// read runs a statement in a read session.
func (s *Store) read(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error) {
	return s.run(ctx, statement, params, neo4j.AccessModeRead)
}

func (s *Store) run(ctx context.Context, statement string, params map[string]any, mode neo4j.AccessMode) ([]map[string]any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, statement, params)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func componentsFromRows(rows []map[string]any) []domain.Component {
	comps := make([]domain.Component, 0, len(rows))
	for _, row := range rows {
		comps = append(comps, cypher.ComponentFromRow(row))
	}
	return comps
}
