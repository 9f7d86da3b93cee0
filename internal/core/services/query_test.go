package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm/mock"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// mockQueryLog implements driven.QueryLog for testing.
type mockQueryLog struct {
	records   []domain.QueryRecord
	appendErr error
}

func (m *mockQueryLog) Append(_ context.Context, rec domain.QueryRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockQueryLog) List(_ context.Context) ([]domain.QueryRecord, error) {
	return m.records, nil
}

func (m *mockQueryLog) Close() error { return nil }

// failingGraphStore wraps the memory store and fails retrieval.
type failingGraphStore struct {
	driven.GraphStore
}

func (f *failingGraphStore) MatchComponents(_ context.Context, _ []string, _ domain.ComponentType, _ int) ([]domain.Component, error) {
	return nil, errors.New("connection reset")
}

// --- Test helpers ---

func seededGraphStore(t *testing.T) *memory.GraphStore {
	t.Helper()
	store := memory.NewGraphStore()
	ctx := context.Background()
	now := time.Now().UTC()

	comps := []domain.Component{
		{
			Type:            domain.ComponentTypeFlow,
			Name:            "Account_Assign_Owner",
			BusinessPurpose: "Assigns an owner to new accounts based on region.",
			Risk:            domain.RiskLow,
			Complexity:      domain.ComplexitySimple,
			Confidence:      8,
			LastAnalyzed:    now,
		},
		{
			Type:            domain.ComponentTypeApexTrigger,
			Name:            "Contact_Dedupe",
			BusinessPurpose: "Prevents duplicate contacts at insert time.",
			Risk:            domain.RiskMedium,
			Complexity:      domain.ComplexityModerate,
			Confidence:      6,
			LastAnalyzed:    now.Add(-time.Hour),
		},
	}
	for _, comp := range comps {
		require.NoError(t, store.UpsertComponent(ctx, comp))
	}
	require.NoError(t, store.UpsertEdges(ctx, []domain.Edge{{
		Source:     domain.ComponentRef{Type: domain.ComponentTypeFlow, Name: "Account_Assign_Owner"},
		Target:     domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Account"},
		Kind:       domain.EdgeReferences,
		Provenance: domain.ProvenanceExplicitReference,
		Confidence: 0.9,
	}}))
	return store
}

func testQueryService(store driven.GraphStore, log driven.QueryLog, cache driven.AnswerCache, provider *mockProvider) *QueryService {
	orch := NewOrchestrator([]Candidate{NewCandidate(provider, 0)}, mock.NewProvider())
	return NewQueryService(store, orch, log, cache, domain.DefaultQuerySettings())
}

// --- Tests ---

func TestQueryService_AnswersWithSources(t *testing.T) {
	store := seededGraphStore(t)
	log := &mockQueryLog{}
	provider := &mockProvider{name: "model", text: "Owners are assigned by the Account_Assign_Owner flow."}
	service := testQueryService(store, log, nil, provider)

	ans := service.Answer(context.Background(), "Who assigns account owners?", domain.QueryOptions{})

	assert.Equal(t, "Owners are assigned by the Account_Assign_Owner flow.", ans.Text)
	require.NotEmpty(t, ans.Sources)
	assert.Equal(t, "flow:Account_Assign_Owner", ans.Sources[0].String())
	assert.Greater(t, ans.Confidence, 0.0)

	// Exactly one record per invocation.
	require.Len(t, log.records, 1)
	rec := log.records[0]
	assert.True(t, rec.Success)
	assert.False(t, rec.Cached)
	assert.NotEmpty(t, rec.ID)
	assert.Greater(t, rec.ContextChars, 0)
	assert.NotEmpty(t, rec.RetrievedRefs)
}

func TestQueryService_NoMatchShortCircuitsSynthesis(t *testing.T) {
	store := seededGraphStore(t)
	log := &mockQueryLog{}
	provider := &mockProvider{name: "model"}
	service := testQueryService(store, log, nil, provider)

	ans := service.Answer(context.Background(), "zzzqqq nonexistent widget", domain.QueryOptions{})

	assert.Equal(t, NoContextAnswer, ans.Text)
	assert.Empty(t, ans.Sources)
	// No model call is spent on empty context.
	assert.Equal(t, 0, provider.synthCalls)

	require.Len(t, log.records, 1)
	assert.True(t, log.records[0].Success)
}

func TestQueryService_EmptyQuestionShortCircuits(t *testing.T) {
	store := seededGraphStore(t)
	log := &mockQueryLog{}
	provider := &mockProvider{name: "model"}
	service := testQueryService(store, log, nil, provider)

	ans := service.Answer(context.Background(), "the is a of", domain.QueryOptions{})

	assert.Equal(t, NoContextAnswer, ans.Text)
	assert.Equal(t, 0, provider.synthCalls)
	require.Len(t, log.records, 1)
}

func TestQueryService_RetrievalFailureDegrades(t *testing.T) {
	store := &failingGraphStore{GraphStore: seededGraphStore(t)}
	log := &mockQueryLog{}
	provider := &mockProvider{name: "model"}
	service := testQueryService(store, log, nil, provider)

	ans := service.Answer(context.Background(), "account owners", domain.QueryOptions{})

	assert.Equal(t, DegradedAnswer, ans.Text)
	assert.Equal(t, 0, provider.synthCalls)

	require.Len(t, log.records, 1)
	rec := log.records[0]
	assert.False(t, rec.Success)
	assert.Equal(t, "retrieval", rec.ErrorClass)
}

func TestQueryService_CacheHitSkipsRetrievalAndSynthesis(t *testing.T) {
	store := seededGraphStore(t)
	log := &mockQueryLog{}
	cache := newMockAnswerCache()
	provider := &mockProvider{name: "model", text: "first answer"}
	service := testQueryService(store, log, cache, provider)
	ctx := context.Background()

	first := service.Answer(ctx, "Who assigns account owners?", domain.QueryOptions{})
	require.False(t, first.Cached)
	require.Equal(t, 1, provider.synthCalls)

	// Same question, different whitespace and case: same cache key.
	second := service.Answer(ctx, "  who ASSIGNS account owners? ", domain.QueryOptions{})

	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, provider.synthCalls)

	require.Len(t, log.records, 2)
	assert.True(t, log.records[1].Cached)
	assert.True(t, log.records[1].Success)
}

func TestQueryService_TypeFilter(t *testing.T) {
	store := seededGraphStore(t)
	log := &mockQueryLog{}
	provider := &mockProvider{name: "model", text: "answer"}
	service := testQueryService(store, log, nil, provider)

	ans := service.Answer(context.Background(), "duplicate contacts", domain.QueryOptions{
		TypeFilter: domain.ComponentTypeApexTrigger,
	})

	require.Len(t, ans.Sources, 1)
	assert.Equal(t, domain.ComponentTypeApexTrigger, ans.Sources[0].Type)
}

func TestQueryService_LogFailureDoesNotFailAnswer(t *testing.T) {
	store := seededGraphStore(t)
	log := &mockQueryLog{appendErr: errors.New("disk full")}
	provider := &mockProvider{name: "model", text: "answer"}
	service := testQueryService(store, log, nil, provider)

	ans := service.Answer(context.Background(), "account owners", domain.QueryOptions{})

	assert.Equal(t, "answer", ans.Text)
}

func TestQueryService_Dependencies(t *testing.T) {
	store := seededGraphStore(t)
	provider := &mockProvider{name: "model"}
	service := testQueryService(store, &mockQueryLog{}, nil, provider)

	ref := domain.ComponentRef{Type: domain.ComponentTypeFlow, Name: "Account_Assign_Owner"}
	graph, err := service.Dependencies(context.Background(), ref, 0)

	require.NoError(t, err)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "Account", graph.Edges[0].Target.Name)
}

func TestQueryService_Stats(t *testing.T) {
	log := &mockQueryLog{records: []domain.QueryRecord{
		{Success: true, Cached: true, RetrievalMillis: 10, SynthesisMillis: 100},
		{Success: true, RetrievalMillis: 20, SynthesisMillis: 200},
		{Success: false, RetrievalMillis: 30},
	}}
	provider := &mockProvider{name: "model"}
	service := testQueryService(memory.NewGraphStore(), log, nil, provider)

	stats, err := service.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, stats.CacheHits)
	assert.InDelta(t, 20.0, stats.MeanRetrievalMillis, 0.01)
	assert.InDelta(t, 100.0, stats.MeanSynthesisMillis, 0.01)
}

func TestTokenizeQuestion(t *testing.T) {
	tokens := tokenizeQuestion("What updates the Account owner field?")

	assert.Contains(t, tokens, "updates")
	assert.Contains(t, tokens, "account")
	assert.Contains(t, tokens, "owner")
	assert.Contains(t, tokens, "field")
	assert.NotContains(t, tokens, "what")
	assert.NotContains(t, tokens, "the")
}

func TestRankComponents_TokenCountThenRecency(t *testing.T) {
	now := time.Now()
	comps := []domain.Component{
		{Name: "One", BusinessPurpose: "account", LastAnalyzed: now},
		{Name: "Two", BusinessPurpose: "account owner", LastAnalyzed: now.Add(-time.Hour)},
		{Name: "Three", BusinessPurpose: "account", LastAnalyzed: now.Add(-time.Minute)},
		{Name: "Four", BusinessPurpose: "unrelated"},
	}

	ranked := rankComponents(comps, []string{"account", "owner"})

	require.Len(t, ranked, 3)
	assert.Equal(t, "Two", ranked[0].Name)   // two token matches
	assert.Equal(t, "One", ranked[1].Name)   // one match, most recent
	assert.Equal(t, "Three", ranked[2].Name) // one match, older
}
