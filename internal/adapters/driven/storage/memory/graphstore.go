// Package memory provides a map-backed graph store. It backs the service
// tests and doubles as a scratch store when no graph database is
// configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure GraphStore implements the interface.
var _ driven.GraphStore = (*GraphStore)(nil)

// GraphStore keeps the whole graph in process memory.
type GraphStore struct {
	mu    sync.RWMutex
	nodes map[string]domain.Component // keyed by ref string
	edges map[string]domain.Edge      // keyed by edge key
}

// NewGraphStore creates an empty in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes: make(map[string]domain.Component),
		edges: make(map[string]domain.Edge),
	}
}

// UpsertComponent inserts or overwrites a component node.
func (g *GraphStore) UpsertComponent(_ context.Context, c domain.Component) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[c.Ref().String()] = c
	return nil
}

// UpsertEdges inserts or overwrites the given edges.
func (g *GraphStore) UpsertEdges(_ context.Context, edges []domain.Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, edge := range edges {
		g.edges[edge.Key()] = edge
	}
	return nil
}

// ReplaceEdges removes every edge owned by source, then upserts the set.
func (g *GraphStore) ReplaceEdges(_ context.Context, source domain.ComponentRef, edges []domain.Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, edge := range g.edges {
		if edge.Source == source {
			delete(g.edges, key)
		}
	}
	for _, edge := range edges {
		g.edges[edge.Key()] = edge
	}
	return nil
}

// GetComponent returns a component by identity, or domain.ErrNotFound.
func (g *GraphStore) GetComponent(_ context.Context, ref domain.ComponentRef) (*domain.Component, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	comp, ok := g.nodes[ref.String()]
	if !ok {
		return nil, fmt.Errorf("component %s: %w", ref, domain.ErrNotFound)
	}
	return &comp, nil
}

// ListComponents returns every persisted component, ordered by reference.
func (g *GraphStore) ListComponents(_ context.Context) ([]domain.Component, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	comps := make([]domain.Component, 0, len(g.nodes))
	for _, comp := range g.nodes {
		comps = append(comps, comp)
	}
	sort.Slice(comps, func(i, j int) bool {
		return comps[i].Ref().String() < comps[j].Ref().String()
	})
	return comps, nil
}

// MatchComponents returns components whose name, purpose or definition
// contains any token, case-insensitively, up to limit.
func (g *GraphStore) MatchComponents(_ context.Context, tokens []string, typeFilter domain.ComponentType, limit int) ([]domain.Component, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var matched []domain.Component
	for _, comp := range g.nodes {
		if typeFilter != "" && comp.Type != typeFilter {
			continue
		}
		haystack := strings.ToLower(comp.Name + " " + comp.BusinessPurpose + " " + comp.RawDefinition)
		for _, tok := range tokens {
			if strings.Contains(haystack, strings.ToLower(tok)) {
				matched = append(matched, comp)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Ref().String() < matched[j].Ref().String()
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Neighborhood returns the subgraph within depth hops of ref, following
// edges in both directions.
func (g *GraphStore) Neighborhood(_ context.Context, ref domain.ComponentRef, depth int) (*domain.Graph, error) {
	if depth <= 0 {
		depth = 1
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[string]bool{ref.String(): true}
	frontier := []domain.ComponentRef{ref}
	edgeKeys := map[string]bool{}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []domain.ComponentRef
		for _, at := range frontier {
			for key, edge := range g.edges {
				var other domain.ComponentRef
				switch {
				case edge.Source == at:
					other = edge.Target
				case edge.Target == at:
					other = edge.Source
				default:
					continue
				}
				edgeKeys[key] = true
				if !visited[other.String()] {
					visited[other.String()] = true
					next = append(next, other)
				}
			}
		}
		frontier = next
	}

	graph := &domain.Graph{}
	refs := make([]string, 0, len(visited))
	for key := range visited {
		refs = append(refs, key)
	}
	sort.Strings(refs)
	for _, key := range refs {
		if comp, ok := g.nodes[key]; ok {
			graph.Nodes = append(graph.Nodes, comp)
		}
	}

	keys := make([]string, 0, len(edgeKeys))
	for key := range edgeKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		graph.Edges = append(graph.Edges, g.edges[key])
	}
	return graph, nil
}

// Ping always succeeds.
func (g *GraphStore) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (g *GraphStore) Close(_ context.Context) error {
	return nil
}
