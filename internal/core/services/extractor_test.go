package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

func testIndex(refs ...domain.ComponentRef) *CorpusIndex {
	comps := make([]domain.Component, 0, len(refs))
	for _, ref := range refs {
		comps = append(comps, domain.Component{Type: ref.Type, Name: ref.Name})
	}
	return NewCorpusIndex(comps, nil, nil)
}

func TestExtractor_ExplicitReferenceInDefinition(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Account"})

	comp := domain.Component{
		Type:          domain.ComponentTypeFlow,
		Name:          "Assign_Owner",
		RawDefinition: `<recordUpdates><object>Account</object></recordUpdates>`,
	}
	edges := extractor.ExtractEdges(comp, idx)

	require.Len(t, edges, 1)
	assert.Equal(t, "Account", edges[0].Target.Name)
	assert.Equal(t, domain.ProvenanceExplicitReference, edges[0].Provenance)
	assert.Equal(t, 0.9, edges[0].Confidence)
	assert.Equal(t, domain.EdgeReferences, edges[0].Kind)
}

func TestExtractor_VerbNearMatchSetsKind(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Invoice"})

	comp := domain.Component{
		Type:          domain.ComponentTypeApexClass,
		Name:          "BillingService",
		RawDefinition: "This class creates Invoice records for each order line.",
	}
	edges := extractor.ExtractEdges(comp, idx)

	require.Len(t, edges, 1)
	assert.Equal(t, domain.EdgeCreates, edges[0].Kind)
}

func TestExtractor_DeleteVerbMapsToUpdates(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Contact"})

	comp := domain.Component{
		Type:          domain.ComponentTypeApexClass,
		Name:          "Cleanup",
		RawDefinition: "Nightly job deletes Contact records older than seven years.",
	}
	edges := extractor.ExtractEdges(comp, idx)

	require.Len(t, edges, 1)
	assert.Equal(t, domain.EdgeUpdates, edges[0].Kind)
}

func TestExtractor_NamingPatternPrefix(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Account"})

	// No mention in the definition, but the name starts with "Account_".
	comp := domain.Component{
		Type:          domain.ComponentTypeFlow,
		Name:          "Account_Assign_Owner",
		RawDefinition: "<flow>assigns an owner</flow>",
	}
	edges := extractor.ExtractEdges(comp, idx)

	require.Len(t, edges, 1)
	assert.Equal(t, domain.EdgeOperatesOn, edges[0].Kind)
	assert.Equal(t, domain.ProvenanceNamingPattern, edges[0].Provenance)
	assert.Equal(t, 0.6, edges[0].Confidence)
}

func TestExtractor_ExplicitReferencePreemptsNamingPattern(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Account"})

	// Both heuristics apply; only the first match per target produces an edge.
	comp := domain.Component{
		Type:          domain.ComponentTypeFlow,
		Name:          "Account_Assign_Owner",
		RawDefinition: `<recordUpdates><object>Account</object></recordUpdates>`,
	}
	edges := extractor.ExtractEdges(comp, idx)

	require.Len(t, edges, 1)
	assert.Equal(t, domain.ProvenanceExplicitReference, edges[0].Provenance)
	assert.Equal(t, 0.9, edges[0].Confidence)
}

func TestExtractor_DescriptionMatch(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Opportunity"})

	comp := domain.Component{
		Type:            domain.ComponentTypeFlow,
		Name:            "Deal_Alert",
		RawDefinition:   "<flow/>",
		BusinessPurpose: "Alerts the sales team when a large Opportunity closes.",
	}
	edges := extractor.ExtractEdges(comp, idx)

	require.Len(t, edges, 1)
	assert.Equal(t, domain.ProvenanceDescriptionMatch, edges[0].Provenance)
	assert.Equal(t, domain.EdgeRelatedTo, edges[0].Kind)
	assert.Equal(t, 0.3, edges[0].Confidence)
}

func TestExtractor_NoSelfEdges(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeApexClass, Name: "BillingService"})

	comp := domain.Component{
		Type:          domain.ComponentTypeApexClass,
		Name:          "BillingService",
		RawDefinition: "public class BillingService { /* BillingService */ }",
	}
	edges := extractor.ExtractEdges(comp, idx)

	assert.Empty(t, edges)
}

func TestExtractor_ShortNamesAndStopWordsSkipped(t *testing.T) {
	settings := domain.DefaultExtractorSettings()
	settings.StopWords = []string{"Test"}
	extractor := NewExtractor(settings)
	idx := testIndex(
		domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Log"},  // below min length
		domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Test"}, // stop word
	)

	comp := domain.Component{
		Type:          domain.ComponentTypeApexClass,
		Name:          "Runner",
		RawDefinition: "Writes a Log entry for every Test run.",
	}
	edges := extractor.ExtractEdges(comp, idx)

	assert.Empty(t, edges)
}

func TestExtractor_WordBoundaryPreventsSubstringMatch(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Case"})

	// "Showcase" contains "case" but not as a whole word.
	comp := domain.Component{
		Type:          domain.ComponentTypeFlow,
		Name:          "Demo_Flow",
		RawDefinition: "Showcase feature for the demo environment.",
	}
	edges := extractor.ExtractEdges(comp, idx)

	assert.Empty(t, edges)
}

func TestExtractor_Deterministic(t *testing.T) {
	extractor := NewExtractor(domain.DefaultExtractorSettings())
	idx := testIndex(
		domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Account"},
		domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Contact"},
		domain.ComponentRef{Type: domain.ComponentTypeObject, Name: "Opportunity"},
	)

	comp := domain.Component{
		Type:          domain.ComponentTypeApexClass,
		Name:          "SyncService",
		RawDefinition: "Updates Account, Contact and Opportunity records from the ERP feed.",
	}

	first := extractor.ExtractEdges(comp, idx)
	second := extractor.ExtractEdges(comp, idx)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
}

func TestCorpusIndex_IngestedNamesWinOverSeeds(t *testing.T) {
	existing := []domain.Component{
		{Type: domain.ComponentTypeApexClass, Name: "Account"},
	}
	idx := NewCorpusIndex(existing, nil, []string{"Account", "Contact"})

	ref, ok := idx.Lookup("account")
	require.True(t, ok)
	assert.Equal(t, domain.ComponentTypeApexClass, ref.Type)

	ref, ok = idx.Lookup("Contact")
	require.True(t, ok)
	assert.Equal(t, domain.ComponentTypeObject, ref.Type)
}

func TestCorpusIndex_Summary(t *testing.T) {
	existing := []domain.Component{
		{Type: domain.ComponentTypeFlow, Name: "A"},
		{Type: domain.ComponentTypeFlow, Name: "B"},
		{Type: domain.ComponentTypeObject, Name: "C"},
	}
	idx := NewCorpusIndex(existing, nil, nil)

	assert.Equal(t, "2 flow, 1 object", idx.Summary())
}
