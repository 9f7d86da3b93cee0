package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := &Store{
		endpoint: server.URL + "/db/neo4j/query/v2",
		username: "neo4j",
		password: "secret",
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	return store, server
}

func TestQueryEndpoint_DerivedFromBoltURI(t *testing.T) {
	endpoint, err := queryEndpoint("neo4j+s://example.databases.neo4j.io", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.databases.neo4j.io/db/neo4j/query/v2", endpoint)

	endpoint, err = queryEndpoint("bolt://db.internal:7687", "metadata")
	require.NoError(t, err)
	assert.Equal(t, "https://db.internal:7687/db/metadata/query/v2", endpoint)

	_, err = queryEndpoint("", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_GetComponent_DecodesRow(t *testing.T) {
	store, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/db/neo4j/query/v2", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "neo4j", user)
		assert.Equal(t, "secret", pass)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Statement, "MATCH (c:Component")
		assert.Equal(t, "flow", req.Parameters["component_type"])

		resp := map[string]any{
			"data": map[string]any{
				"fields": []string{
					"component_type", "qualified_name", "raw_definition", "is_active",
					"business_purpose", "risk_level", "complexity", "confidence",
					"review", "provider", "first_seen", "last_analyzed",
				},
				"values": [][]any{{
					"flow", "Account_Assign_Owner", "<flow/>", true,
					"Assigns owners", "low", "simple", 8.5,
					false, "openai/gpt-4o-mini",
					"2026-03-01T10:00:00Z", "2026-03-02T11:30:00Z",
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	comp, err := store.GetComponent(context.Background(),
		domain.ComponentRef{Type: domain.ComponentTypeFlow, Name: "Account_Assign_Owner"})

	require.NoError(t, err)
	assert.Equal(t, "Assigns owners", comp.BusinessPurpose)
	assert.Equal(t, domain.RiskLow, comp.Risk)
	assert.Equal(t, 8.5, comp.Confidence)
	assert.Equal(t, 2026, comp.FirstSeen.Year())
}

func TestStore_GetComponent_EmptyResultIsNotFound(t *testing.T) {
	store, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"fields": []string{}, "values": [][]any{}},
		})
	})

	_, err := store.GetComponent(context.Background(),
		domain.ComponentRef{Type: domain.ComponentTypeFlow, Name: "missing"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Run_SurfacesServerErrors(t *testing.T) {
	store, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{
				"code":    "Neo.ClientError.Statement.SyntaxError",
				"message": "bad statement",
			}},
		})
	})

	err := store.Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SyntaxError")
}

func TestStore_Run_NonOKStatusIsStoreUnavailable(t *testing.T) {
	store, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	err := store.Ping(context.Background())

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestStore_ReplaceEdges_DeletesThenUpserts(t *testing.T) {
	var statements []string
	store, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		statements = append(statements, req.Statement)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"fields": []string{}, "values": [][]any{}},
		})
	})

	source := domain.ComponentRef{Type: domain.ComponentTypeFlow, Name: "A"}
	edges := []domain.Edge{{
		Source:     source,
		Target:     domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Account"},
		Kind:       domain.EdgeReferences,
		Provenance: domain.ProvenanceExplicitReference,
		Confidence: 0.9,
	}}
	require.NoError(t, store.ReplaceEdges(context.Background(), source, edges))

	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "DELETE r")
	assert.Contains(t, statements[1], "[r:REFERENCES]")
}
