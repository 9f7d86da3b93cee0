// Package httpapi provides the graph store adapter over the Neo4j Query
// API. It exists for environments where the bolt ports are blocked and
// only HTTPS egress is available.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/graph/cypher"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.GraphStore = (*Store)(nil)

const defaultTimeout = 30 * time.Second

// Store is the Query API backed graph store.
type Store struct {
	endpoint string
	username string
	password string
	client   *http.Client
}

// NewStore builds a Query API store from the same settings the bolt
// transport uses. The bolt URI is rewritten to the HTTPS query endpoint,
// so a single configured URI serves both transports.
func NewStore(settings domain.GraphSettings) (*Store, error) {
	endpoint, err := queryEndpoint(settings.URI, settings.Database)
	if err != nil {
		return nil, err
	}
	return &Store{
		endpoint: endpoint,
		username: settings.Username,
		password: settings.Password,
		client:   &http.Client{Timeout: defaultTimeout},
	}, nil
}

// queryEndpoint derives the Query API v2 URL from a bolt-style URI.
func queryEndpoint(uri, database string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: parse graph URI: %v", domain.ErrInvalidInput, err)
	}
	host := parsed.Host
	if host == "" {
		host = parsed.Path
	}
	if host == "" {
		return "", fmt.Errorf("%w: graph URI has no host", domain.ErrInvalidInput)
	}
	if database == "" {
		database = "neo4j"
	}
	return fmt.Sprintf("https://%s/db/%s/query/v2", host, database), nil
}

type queryRequest struct {
	Statement  string         `json:"statement"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type queryResponse struct {
	Data struct {
		Fields []string `json:"fields"`
		Values [][]any  `json:"values"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// run executes one statement and returns the rows as column maps.
func (s *Store) run(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error) {
	body, err := json.Marshal(queryRequest{Statement: statement, Parameters: params})
	if err != nil {
		return nil, fmt.Errorf("encode query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.username, s.password)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read query response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("%w: query API status %d: %s",
			domain.ErrStoreUnavailable, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded queryResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		first := decoded.Errors[0]
		return nil, fmt.Errorf("query API error %s: %s", first.Code, first.Message)
	}

	rows := make([]map[string]any, 0, len(decoded.Data.Values))
	for _, value := range decoded.Data.Values {
		row := make(map[string]any, len(decoded.Data.Fields))
		for i, field := range decoded.Data.Fields {
			if i < len(value) {
				row[field] = value[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UpsertComponent inserts or overwrites a component node.
func (s *Store) UpsertComponent(ctx context.Context, c domain.Component) error {
	if _, err := s.run(ctx, cypher.UpsertComponent, cypher.ComponentParams(c)); err != nil {
		return fmt.Errorf("upsert component %s: %w", c.Ref(), err)
	}
	return nil
}

// UpsertEdges inserts or overwrites the given edges.
func (s *Store) UpsertEdges(ctx context.Context, edges []domain.Edge) error {
	for _, edge := range edges {
		if _, err := s.run(ctx, cypher.UpsertEdge(edge.Kind), cypher.EdgeParams(edge)); err != nil {
			return fmt.Errorf("upsert edge %s: %w", edge.Key(), err)
		}
	}
	return nil
}

// ReplaceEdges removes every edge owned by source, then upserts the set.
func (s *Store) ReplaceEdges(ctx context.Context, source domain.ComponentRef, edges []domain.Edge) error {
	if _, err := s.run(ctx, cypher.DeleteEdgesFrom, cypher.RefParams(source)); err != nil {
		return fmt.Errorf("delete edges of %s: %w", source, err)
	}
	return s.UpsertEdges(ctx, edges)
}

// GetComponent returns a component by identity, or domain.ErrNotFound.
func (s *Store) GetComponent(ctx context.Context, ref domain.ComponentRef) (*domain.Component, error) {
	rows, err := s.run(ctx, cypher.GetComponent, cypher.RefParams(ref))
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
	rows, err := s.run(ctx, cypher.ListComponents, nil)
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
	rows, err := s.run(ctx, statement, params)
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

	nodeRows, err := s.run(ctx, cypher.NeighborhoodNodes(depth), cypher.RefParams(ref))
	if err != nil {
		return nil, fmt.Errorf("neighborhood nodes of %s: %w", ref, err)
	}
	edgeRows, err := s.run(ctx, cypher.NeighborhoodEdges(depth), cypher.RefParams(ref))
	if err != nil {
		return nil, fmt.Errorf("neighborhood edges of %s: %w", ref, err)
	}

	graph := &domain.Graph{Nodes: componentsFromRows(nodeRows)}
	for _, row := range edgeRows {
		graph.Edges = append(graph.Edges, cypher.EdgeFromRow(row))
	}
	return graph, nil
}

// Ping runs a trivial statement to validate endpoint and credentials.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.run(ctx, "RETURN 1 AS ok", nil)
	return err
}

// Close releases resources.
func (s *Store) Close(_ context.Context) error {
	s.client.CloseIdleConnections()
	return nil
}

func componentsFromRows(rows []map[string]any) []domain.Component {
	comps := make([]domain.Component, 0, len(rows))
	for _, row := range rows {
		comps = append(comps, cypher.ComponentFromRow(row))
	}
	return comps
}
