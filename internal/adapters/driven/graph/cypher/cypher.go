// Package cypher holds the statements and row mapping shared by the bolt
// and HTTP graph transports. Keeping them in one place is what guarantees
// the two transports have identical upsert semantics.
package cypher

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// UpsertComponent merges a component node on its stable identity and
// overwrites every attribute field. Re-applying the same component is a
// no-op in terms of node count.
const UpsertComponent = `
MERGE (c:Component {component_type: $component_type, qualified_name: $qualified_name})
SET c.raw_definition = $raw_definition,
    c.is_active = $is_active,
    c.business_purpose = $business_purpose,
    c.risk_level = $risk_level,
    c.complexity = $complexity,
    c.confidence = $confidence,
    c.review = $review,
    c.provider = $provider,
    c.first_seen = $first_seen,
    c.last_analyzed = $last_analyzed
RETURN c.qualified_name AS qualified_name`

// GetComponent returns one component by identity.
const GetComponent = componentMatch + componentReturn

// ListComponents returns the whole corpus.
const ListComponents = `MATCH (c:Component)` + componentReturn

// DeleteEdgesFrom removes every outgoing edge of a source component.
const DeleteEdgesFrom = `
MATCH (s:Component {component_type: $component_type, qualified_name: $qualified_name})-[r]->()
DELETE r`

const componentMatch = `
MATCH (c:Component {component_type: $component_type, qualified_name: $qualified_name})`

const componentReturn = `
RETURN c.component_type AS component_type,
       c.qualified_name AS qualified_name,
       c.raw_definition AS raw_definition,
       c.is_active AS is_active,
       c.business_purpose AS business_purpose,
       c.risk_level AS risk_level,
       c.complexity AS complexity,
       c.confidence AS confidence,
       c.review AS review,
       c.provider AS provider,
       c.first_seen AS first_seen,
       c.last_analyzed AS last_analyzed`

// UpsertEdge builds the merge statement for one edge. The relationship type
// comes from the fixed EdgeKind enum, never from user input, so direct
// interpolation is safe.
func UpsertEdge(kind domain.EdgeKind) string {
	return fmt.Sprintf(`
MERGE (s:Component {component_type: $src_type, qualified_name: $src_name})
MERGE (t:Component {component_type: $dst_type, qualified_name: $dst_name})
MERGE (s)-[r:%s]->(t)
SET r.provenance = $provenance, r.confidence = $confidence`, kind.RelType())
}

// EdgeParams builds the parameter map for UpsertEdge.
func EdgeParams(e domain.Edge) map[string]any {
	return map[string]any{
		"src_type":   string(e.Source.Type),
		"src_name":   e.Source.Name,
		"dst_type":   string(e.Target.Type),
		"dst_name":   e.Target.Name,
		"provenance": e.Provenance,
		"confidence": e.Confidence,
	}
}

// RefParams builds the identity parameter map for a component reference.
func RefParams(ref domain.ComponentRef) map[string]any {
	return map[string]any{
		"component_type": string(ref.Type),
		"qualified_name": ref.Name,
	}
}

// ComponentParams builds the parameter map for UpsertComponent. Timestamps
// are stored as RFC 3339 strings so both transports decode identically.
func ComponentParams(c domain.Component) map[string]any {
	return map[string]any{
		"component_type":   string(c.Type),
		"qualified_name":   c.Name,
		"raw_definition":   c.RawDefinition,
		"is_active":        c.IsActive,
		"business_purpose": c.BusinessPurpose,
		"risk_level":       string(c.Risk),
		"complexity":       string(c.Complexity),
		"confidence":       c.Confidence,
		"review":           c.Review,
		"provider":         c.Provider,
		"first_seen":       c.FirstSeen.UTC().Format(time.RFC3339Nano),
		"last_analyzed":    c.LastAnalyzed.UTC().Format(time.RFC3339Nano),
	}
}

// MatchComponents builds the keyword retrieval statement and parameters:
// any-token, case-insensitive containment over name, business purpose and
// raw definition, optionally filtered to one component type.
func MatchComponents(tokens []string, typeFilter domain.ComponentType, limit int) (string, map[string]any) {
	params := map[string]any{"limit": limit}

	conditions := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		key := fmt.Sprintf("tok%d", i)
		params[key] = strings.ToLower(tok)
		conditions = append(conditions, fmt.Sprintf(
			"toLower(c.qualified_name) CONTAINS $%[1]s OR toLower(coalesce(c.business_purpose, '')) CONTAINS $%[1]s OR toLower(coalesce(c.raw_definition, '')) CONTAINS $%[1]s",
			key))
	}

	var b strings.Builder
	b.WriteString("MATCH (c:Component)\nWHERE (")
	b.WriteString(strings.Join(conditions, ") OR ("))
	b.WriteString(")")
	if typeFilter != "" {
		b.WriteString("\nAND c.component_type = $type_filter")
		params["type_filter"] = string(typeFilter)
	}
	b.WriteString(componentReturn)
	b.WriteString("\nLIMIT $limit")
	return b.String(), params
}

// NeighborhoodNodes builds the statement returning the component plus every
// component within depth hops, in either direction. Depth is a validated
// integer interpolated directly because Cypher cannot parameterise
// variable-length bounds.
func NeighborhoodNodes(depth int) string {
	return fmt.Sprintf(`
MATCH (s:Component {component_type: $component_type, qualified_name: $qualified_name})
OPTIONAL MATCH (s)-[*1..%d]-(m:Component)
WITH s, collect(DISTINCT m) AS ms
UNWIND ([s] + ms) AS c
RETURN DISTINCT c.component_type AS component_type,
       c.qualified_name AS qualified_name,
       c.raw_definition AS raw_definition,
       c.is_active AS is_active,
       c.business_purpose AS business_purpose,
       c.risk_level AS risk_level,
       c.complexity AS complexity,
       c.confidence AS confidence,
       c.review AS review,
       c.provider AS provider,
       c.first_seen AS first_seen,
       c.last_analyzed AS last_analyzed`, depth)
}

// NeighborhoodEdges builds the statement returning every relationship on
// paths within depth hops of the component.
func NeighborhoodEdges(depth int) string {
	return fmt.Sprintf(`
MATCH (s:Component {component_type: $component_type, qualified_name: $qualified_name})
OPTIONAL MATCH p = (s)-[*1..%d]-(m:Component)
UNWIND relationships(p) AS r
WITH DISTINCT r
RETURN startNode(r).component_type AS src_type,
       startNode(r).qualified_name AS src_name,
       endNode(r).component_type AS dst_type,
       endNode(r).qualified_name AS dst_name,
       type(r) AS kind,
       r.provenance AS provenance,
       r.confidence AS confidence`, depth)
}

// ComponentFromRow decodes one result row (as a column map) into a
// component. Both transports produce the same column names.
func ComponentFromRow(row map[string]any) domain.Component {
	return domain.Component{
		Type:            domain.ComponentType(asString(row["component_type"])),
		Name:            asString(row["qualified_name"]),
		RawDefinition:   asString(row["raw_definition"]),
		IsActive:        asBool(row["is_active"]),
		BusinessPurpose: asString(row["business_purpose"]),
		Risk:            domain.RiskLevel(asString(row["risk_level"])),
		Complexity:      domain.ComplexityLevel(asString(row["complexity"])),
		Confidence:      asFloat(row["confidence"]),
		Review:          asBool(row["review"]),
		Provider:        asString(row["provider"]),
		FirstSeen:       asTime(row["first_seen"]),
		LastAnalyzed:    asTime(row["last_analyzed"]),
	}
}

// EdgeFromRow decodes one relationship row into an edge.
func EdgeFromRow(row map[string]any) domain.Edge {
	kind := domain.EdgeKind(strings.ToLower(asString(row["kind"])))
	return domain.Edge{
		Source: domain.ComponentRef{
			Type: domain.ComponentType(asString(row["src_type"])),
			Name: asString(row["src_name"]),
		},
		Target: domain.ComponentRef{
			Type: domain.ComponentType(asString(row["dst_type"])),
			Name: asString(row["dst_name"]),
		},
		Kind:       kind,
		Provenance: asString(row["provenance"]),
		Confidence: asFloat(row["confidence"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
