package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// Heuristic confidence values. Edge confidence comes from the heuristic
// that produced the edge, never from the model.
const (
	confidenceExplicitReference = 0.9
	confidenceNamingPattern     = 0.6
	confidenceDescriptionMatch  = 0.3
)

// verbWindow is how far back from a match the extractor looks for an
// action verb when inferring the edge kind.
const verbWindow = 40

// verbKinds maps action verbs found near a match to edge kinds. The
// taxonomy has no delete kind, so deletions count as writes.
var verbKinds = []struct {
	pattern *regexp.Regexp
	kind    domain.EdgeKind
}{
	{regexp.MustCompile(`(?i)\b(creates?|created|creating|inserts?|inserted)\b`), domain.EdgeCreates},
	{regexp.MustCompile(`(?i)\b(updates?|updated|updating|assigns?|assigned|sets?|deletes?|deleted)\b`), domain.EdgeUpdates},
	{regexp.MustCompile(`(?i)\b(calls?|called|calling|invokes?|invoked|launches?)\b`), domain.EdgeCalls},
}

// Extractor infers directed dependency edges for one component against a
// corpus index snapshot. It performs no I/O and holds no mutable state, so
// it is a pure function of its inputs.
type Extractor struct {
	settings domain.ExtractorSettings
	stop     map[string]struct{}
}

// NewExtractor creates an extractor with the given matching settings.
func NewExtractor(settings domain.ExtractorSettings) *Extractor {
	if settings.MinMatchLen <= 0 {
		settings.MinMatchLen = domain.DefaultMinMatchLen
	}
	stop := make(map[string]struct{}, len(settings.StopWords))
	for _, w := range settings.StopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Extractor{settings: settings, stop: stop}
}

// ExtractEdges runs the layered heuristics against every candidate target.
// Per target the first matching heuristic wins; across targets multiple
// heuristics may each contribute. Duplicate (source, target, kind) triples
// keep the higher-confidence provenance.
func (e *Extractor) ExtractEdges(comp domain.Component, idx *CorpusIndex) []domain.Edge {
	source := comp.Ref()
	lowerName := strings.ToLower(comp.Name)

	byKey := make(map[string]domain.Edge)
	keep := func(edge domain.Edge) {
		key := edge.Key()
		if prev, ok := byKey[key]; ok && prev.Confidence >= edge.Confidence {
			return
		}
		byKey[key] = edge
	}

	for _, target := range idx.Targets() {
		if target == source {
			continue
		}
		if len(target.Name) < e.settings.MinMatchLen {
			continue
		}
		lowerTarget := strings.ToLower(target.Name)
		if _, stopped := e.stop[lowerTarget]; stopped {
			continue
		}

		// Heuristic 1: literal mention in the raw definition.
		if kind, ok := matchWholeWord(comp.RawDefinition, target.Name, domain.EdgeReferences); ok {
			keep(domain.Edge{
				Source:     source,
				Target:     target,
				Kind:       kind,
				Provenance: domain.ProvenanceExplicitReference,
				Confidence: confidenceExplicitReference,
			})
			continue
		}

		// Heuristic 2: naming-pattern prefix, e.g. Account_Assign_Owner.
		if strings.HasPrefix(lowerName, lowerTarget+"_") {
			keep(domain.Edge{
				Source:     source,
				Target:     target,
				Kind:       domain.EdgeOperatesOn,
				Provenance: domain.ProvenanceNamingPattern,
				Confidence: confidenceNamingPattern,
			})
			continue
		}

		// Heuristic 3: whole-word mention in the business purpose.
		if kind, ok := matchWholeWord(comp.BusinessPurpose, target.Name, domain.EdgeRelatedTo); ok {
			keep(domain.Edge{
				Source:     source,
				Target:     target,
				Kind:       kind,
				Provenance: domain.ProvenanceDescriptionMatch,
				Confidence: confidenceDescriptionMatch,
			})
		}
	}

	edges := make([]domain.Edge, 0, len(byKey))
	for _, edge := range byKey {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Key() < edges[j].Key()
	})
	return edges
}

// matchWholeWord reports whether name occurs as a whole word in text and
// returns the edge kind inferred from verbs near the first match, or the
// given default when no verb is present.
func matchWholeWord(text, name string, defaultKind domain.EdgeKind) (domain.EdgeKind, bool) {
	if text == "" {
		return "", false
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return "", false
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	start := loc[0] - verbWindow
	if start < 0 {
		start = 0
	}
	window := text[start:loc[0]]
	for _, vk := range verbKinds {
		if vk.pattern.MatchString(window) {
			return vk.kind, true
		}
	}
	return defaultKind, true
}
