package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm/mock"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// mockAnswerCache implements driven.AnswerCache for testing.
type mockAnswerCache struct {
	answers    map[string]domain.Answer
	clearCalls int
	getErr     error
	putErr     error
}

func newMockAnswerCache() *mockAnswerCache {
	return &mockAnswerCache{answers: make(map[string]domain.Answer)}
}

func (m *mockAnswerCache) Get(_ context.Context, key string) (*domain.Answer, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	ans, ok := m.answers[key]
	if !ok {
		return nil, false, nil
	}
	return &ans, true, nil
}

func (m *mockAnswerCache) Put(_ context.Context, key string, ans domain.Answer) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.answers[key] = ans
	return nil
}

func (m *mockAnswerCache) Clear(_ context.Context) error {
	m.clearCalls++
	m.answers = make(map[string]domain.Answer)
	return nil
}

func (m *mockAnswerCache) Close() error { return nil }

// --- Test helpers ---

func testIngestService(store driven.GraphStore, cache driven.AnswerCache, result *driven.AnalysisResult) *IngestService {
	provider := &mockProvider{name: "test-model", result: result}
	orch := NewOrchestrator([]Candidate{NewCandidate(provider, 0)}, mock.NewProvider())
	analyzer := NewAnalyzer(orch, domain.DefaultAnalyzerSettings())
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	return NewIngestService(store, analyzer, extractor, cache,
		domain.DefaultIngestSettings(), domain.DefaultExtractorSettings())
}

func testBatch() []domain.RawComponent {
	return []domain.RawComponent{
		{
			Type:          domain.ComponentTypeFlow,
			Name:          "Account_Assign_Owner",
			RawDefinition: `<recordUpdates><object>Account</object></recordUpdates>`,
			IsActive:      true,
		},
		{
			Type:          domain.ComponentTypeApexTrigger,
			Name:          "Contact_Dedupe",
			RawDefinition: "trigger Contact_Dedupe on Contact (before insert) {}",
			IsActive:      true,
		},
	}
}

// --- Tests ---

func TestIngestService_CreatesNewComponents(t *testing.T) {
	store := memory.NewGraphStore()
	service := testIngestService(store, nil, nil)
	ctx := context.Background()

	report, err := service.Ingest(ctx, testBatch(), false)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	comps, err := store.ListComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, comps, 2)
	for _, comp := range comps {
		assert.False(t, comp.FirstSeen.IsZero())
		assert.False(t, comp.LastAnalyzed.IsZero())
		assert.Equal(t, "test purpose", comp.BusinessPurpose)
	}
}

func TestIngestService_SecondRunSkips(t *testing.T) {
	store := memory.NewGraphStore()
	service := testIngestService(store, nil, nil)
	ctx := context.Background()

	_, err := service.Ingest(ctx, testBatch(), false)
	require.NoError(t, err)

	report, err := service.Ingest(ctx, testBatch(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 2, report.Skipped)
}

func TestIngestService_ForcePreservesFirstSeen(t *testing.T) {
	store := memory.NewGraphStore()
	service := testIngestService(store, nil, nil)
	ctx := context.Background()

	_, err := service.Ingest(ctx, testBatch(), false)
	require.NoError(t, err)

	ref := domain.ComponentRef{Type: domain.ComponentTypeFlow, Name: "Account_Assign_Owner"}
	before, err := store.GetComponent(ctx, ref)
	require.NoError(t, err)

	report, err := service.Ingest(ctx, testBatch(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Updated)

	after, err := store.GetComponent(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, before.FirstSeen, after.FirstSeen)
	assert.False(t, after.LastAnalyzed.Before(before.LastAnalyzed))
}

func TestIngestService_ExtractsEdgesAgainstStandardEntities(t *testing.T) {
	store := memory.NewGraphStore()
	service := testIngestService(store, nil, nil)
	ctx := context.Background()

	_, err := service.Ingest(ctx, testBatch(), false)
	require.NoError(t, err)

	ref := domain.ComponentRef{Type: domain.ComponentTypeFlow, Name: "Account_Assign_Owner"}
	graph, err := store.Neighborhood(ctx, ref, 1)
	require.NoError(t, err)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, "Account", graph.Edges[0].Target.Name)
	assert.Equal(t, domain.ProvenanceExplicitReference, graph.Edges[0].Provenance)
}

func TestIngestService_InvalidRecordCountedNotFatal(t *testing.T) {
	store := memory.NewGraphStore()
	service := testIngestService(store, nil, nil)
	ctx := context.Background()

	batch := append(testBatch(), domain.RawComponent{Type: "widget", Name: "Bad"})
	report, err := service.Ingest(ctx, batch, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Failed)
}

func TestIngestService_EscalatedCount(t *testing.T) {
	store := memory.NewGraphStore()
	service := testIngestService(store, nil, &driven.AnalysisResult{
		BusinessPurpose: "low confidence purpose",
		Confidence:      2,
	})
	ctx := context.Background()

	report, err := service.Ingest(ctx, testBatch(), false)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Escalated)
}

func TestIngestService_ClearsAnswerCacheOnChange(t *testing.T) {
	store := memory.NewGraphStore()
	cache := newMockAnswerCache()
	service := testIngestService(store, cache, nil)
	ctx := context.Background()

	_, err := service.Ingest(ctx, testBatch(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.clearCalls)

	// A run that only skips leaves the cache alone.
	_, err = service.Ingest(ctx, testBatch(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.clearCalls)
}
