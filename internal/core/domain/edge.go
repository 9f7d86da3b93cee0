package domain

import "strings"

// EdgeKind is the type of a directed dependency between components.
type EdgeKind string

// Known edge kinds.
const (
	// EdgeReferences is a plain mention of another component or entity.
	EdgeReferences EdgeKind = "references"

	// EdgeCreates indicates the source creates records of the target.
	EdgeCreates EdgeKind = "creates"

	// EdgeUpdates indicates the source writes to the target.
	EdgeUpdates EdgeKind = "updates"

	// EdgeCalls indicates the source invokes the target.
	EdgeCalls EdgeKind = "calls"

	// EdgeRelatedTo is a weak association inferred from description text.
	EdgeRelatedTo EdgeKind = "related_to"

	// EdgeOperatesOn indicates the source's name encodes the entity it
	// works against (naming-convention match).
	EdgeOperatesOn EdgeKind = "operates_on"
)

// IsValid returns true if the edge kind is recognised.
func (k EdgeKind) IsValid() bool {
	switch k {
	case EdgeReferences, EdgeCreates, EdgeUpdates, EdgeCalls, EdgeRelatedTo, EdgeOperatesOn:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k EdgeKind) String() string {
	return string(k)
}

// RelType returns the graph relationship type for this kind (upper snake).
// Only values from the fixed enum are ever interpolated into statements.
func (k EdgeKind) RelType() string {
	return strings.ToUpper(string(k))
}

// Edge provenance values, one per extraction heuristic.
const (
	// ProvenanceExplicitReference marks a literal mention found in the raw
	// definition payload.
	ProvenanceExplicitReference = "explicit-reference"

	// ProvenanceNamingPattern marks a component-name prefix match.
	ProvenanceNamingPattern = "naming-pattern"

	// ProvenanceDescriptionMatch marks a whole-word mention in the business
	// purpose text.
	ProvenanceDescriptionMatch = "description-match"
)

// Edge is a directed dependency from one component to another component or
// named external entity.
type Edge struct {
	// Source is the owning component.
	Source ComponentRef

	// Target is the referenced component or entity.
	Target ComponentRef

	// Kind is the relationship kind.
	Kind EdgeKind

	// Provenance names the heuristic that produced the edge.
	Provenance string

	// Confidence is inherited from the heuristic, not the model.
	Confidence float64
}

// Key returns the deduplication identity (source, target, kind). Two edges
// with the same key are the same relationship regardless of provenance.
func (e Edge) Key() string {
	return e.Source.String() + "->" + e.Target.String() + "#" + string(e.Kind)
}

// Graph is a set of components and the edges between them, as returned by
// dependency traversal.
type Graph struct {
	// Nodes are the components in the neighbourhood.
	Nodes []Component

	// Edges are the relationships between nodes.
	Edges []Edge
}
