package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// CorpusIndex is a read-only snapshot of every component name known at the
// start of a batch, used by the extractor to resolve reference candidates.
// It is rebuilt between batches rather than mutated incrementally, so the
// extractor stays a pure function of its inputs.
type CorpusIndex struct {
	refs    map[string]domain.ComponentRef // keyed on lowercase name
	ordered []string                       // lowercase names, sorted for determinism
	counts  map[domain.ComponentType]int
}

// NewCorpusIndex builds an index from the known corpus, the incoming batch
// and the configured standard-entity seed list.
func NewCorpusIndex(existing []domain.Component, batch []domain.RawComponent, standardEntities []string) *CorpusIndex {
	idx := &CorpusIndex{
		refs:   make(map[string]domain.ComponentRef),
		counts: make(map[domain.ComponentType]int),
	}
	for _, name := range standardEntities {
		idx.add(domain.ComponentRef{Type: domain.ComponentTypeObject, Name: name})
	}
	for _, c := range existing {
		idx.add(c.Ref())
		idx.counts[c.Type]++
	}
	for _, r := range batch {
		idx.add(r.Ref())
	}

	idx.ordered = make([]string, 0, len(idx.refs))
	for lower := range idx.refs {
		idx.ordered = append(idx.ordered, lower)
	}
	sort.Strings(idx.ordered)
	return idx
}

// add registers a reference unless an ingested component already claimed
// the name (ingested components win over standard-entity seeds).
func (x *CorpusIndex) add(ref domain.ComponentRef) {
	lower := strings.ToLower(ref.Name)
	if existing, ok := x.refs[lower]; ok && existing.Type != domain.ComponentTypeObject {
		return
	}
	x.refs[lower] = ref
}

// Lookup resolves a name to its reference, case-insensitively.
func (x *CorpusIndex) Lookup(name string) (domain.ComponentRef, bool) {
	ref, ok := x.refs[strings.ToLower(name)]
	return ref, ok
}

// Targets returns every known reference in deterministic order.
func (x *CorpusIndex) Targets() []domain.ComponentRef {
	out := make([]domain.ComponentRef, 0, len(x.ordered))
	for _, lower := range x.ordered {
		out = append(out, x.refs[lower])
	}
	return out
}

// Len returns the number of indexed names.
func (x *CorpusIndex) Len() int {
	return len(x.refs)
}

// Summary renders per-type corpus counts for use in analysis prompts.
func (x *CorpusIndex) Summary() string {
	if len(x.counts) == 0 {
		return ""
	}
	types := make([]string, 0, len(x.counts))
	for t := range x.counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%d %s", x.counts[domain.ComponentType(t)], t))
	}
	return strings.Join(parts, ", ")
}
