package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
	"github.com/custodia-labs/metagraph/internal/core/ports/driving"
	"github.com/custodia-labs/metagraph/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.Answerer = (*QueryService)(nil)

// Fixed user-facing answers for degraded paths.
const (
	// NoContextAnswer is returned when retrieval finds nothing; no model
	// call is spent on empty context.
	NoContextAnswer = "No relevant context was found in the metadata graph for this question."

	// DegradedAnswer is returned when retrieval itself failed.
	DegradedAnswer = "Unable to answer right now: the metadata graph could not be queried."
)

// questionStopWords are tokens too generic to retrieve on.
var questionStopWords = map[string]struct{}{
	"the": {}, "and": {}, "what": {}, "which": {}, "who": {}, "how": {},
	"does": {}, "where": {}, "when": {}, "why": {}, "are": {}, "is": {},
	"this": {}, "that": {}, "for": {}, "with": {},
}

// QueryService answers natural-language questions by retrieving matching
// graph nodes, assembling a bounded context block and synthesising a
// grounded answer. Every invocation appends exactly one query record.
type QueryService struct {
	graph    driven.GraphStore
	orch     *Orchestrator
	log      driven.QueryLog
	cache    driven.AnswerCache // optional
	settings domain.QuerySettings
}

// NewQueryService creates a query service. The cache parameter is optional
// (can be nil).
func NewQueryService(
	graph driven.GraphStore,
	orch *Orchestrator,
	log driven.QueryLog,
	cache driven.AnswerCache,
	settings domain.QuerySettings,
) *QueryService {
	if settings.Limit <= 0 {
		settings.Limit = domain.DefaultQueryLimit
	}
	if settings.MaxContextChars <= 0 {
		settings.MaxContextChars = domain.DefaultMaxContextChars
	}
	return &QueryService{graph: graph, orch: orch, log: log, cache: cache, settings: settings}
}

// Answer resolves one question. Failures are converted to a safe degraded
// answer rather than an error: this is a user-facing path, and the failure
// is captured in the query record instead.
func (s *QueryService) Answer(ctx context.Context, question string, opts domain.QueryOptions) domain.Answer {
	logger.Section("Query")
	logger.Debug("Question: %q", question)

	rec := domain.QueryRecord{
		ID:        uuid.NewString(),
		Question:  question,
		Timestamp: time.Now().UTC(),
	}
	defer s.append(ctx, &rec)

	limit := opts.Limit
	if limit <= 0 {
		limit = s.settings.Limit
	}

	// Exact-question cache short-circuits retrieval and synthesis.
	key := normalizeQuestion(question)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			logger.Warn("Answer cache lookup failed: %v", err)
		} else if ok {
			logger.Debug("Cache hit")
			cached.Cached = true
			s.fill(&rec, *cached, true)
			return *cached
		}
	}

	tokens := tokenizeQuestion(question)
	logger.Debug("Tokens: %v", tokens)
	if len(tokens) == 0 {
		ans := domain.Answer{Text: NoContextAnswer}
		s.fill(&rec, ans, true)
		return ans
	}

	// Retrieval: over-fetch candidates, then rank locally by distinct
	// token matches with recency as the tie-break.
	retrievalStart := time.Now()
	candidates, err := s.graph.MatchComponents(ctx, tokens, opts.TypeFilter, limit*4)
	rec.RetrievalMillis = time.Since(retrievalStart).Milliseconds()
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		ans := domain.Answer{Text: DegradedAnswer}
		s.fill(&rec, ans, false)
		rec.ErrorClass = "retrieval"
		return ans
	}

	ranked := rankComponents(candidates, tokens)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	logger.Debug("Retrieved %d of %d candidates", len(ranked), len(candidates))

	if len(ranked) == 0 {
		// Zero retrieved nodes: fixed answer, zero synthesis calls.
		ans := domain.Answer{Text: NoContextAnswer}
		s.fill(&rec, ans, true)
		return ans
	}

	contextBlock, refs := s.assembleContext(ctx, ranked)
	rec.ContextChars = len(contextBlock)

	synthesisStart := time.Now()
	text, provider := s.orch.Synthesize(ctx, s.synthesisPrompt(question, contextBlock))
	rec.SynthesisMillis = time.Since(synthesisStart).Milliseconds()
	logger.Debug("Synthesised %d chars via %s", len(text), provider)

	ans := domain.Answer{
		Text:       strings.TrimSpace(text),
		Sources:    refs,
		Confidence: meanConfidence(ranked) / 10,
	}
	s.fill(&rec, ans, true)

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, ans); err != nil {
			logger.Warn("Answer cache store failed: %v", err)
		}
	}
	return ans
}

// Dependencies returns the subgraph around a component, one hop by default.
func (s *QueryService) Dependencies(ctx context.Context, ref domain.ComponentRef, depth int) (*domain.Graph, error) {
	if depth <= 0 {
		depth = 1
	}
	graph, err := s.graph.Neighborhood(ctx, ref, depth)
	if err != nil {
		return nil, fmt.Errorf("neighborhood of %s: %w", ref, err)
	}
	return graph, nil
}

// Stats summarises the query log.
func (s *QueryService) Stats(ctx context.Context) (domain.QueryStats, error) {
	records, err := s.log.List(ctx)
	if err != nil {
		return domain.QueryStats{}, fmt.Errorf("read query log: %w", err)
	}
	return Summarize(records), nil
}

// fill copies the answer into the query record.
func (s *QueryService) fill(rec *domain.QueryRecord, ans domain.Answer, success bool) {
	rec.Answer = ans.Text
	rec.Success = success
	rec.Cached = ans.Cached
	rec.RetrievedRefs = make([]string, 0, len(ans.Sources))
	for _, ref := range ans.Sources {
		rec.RetrievedRefs = append(rec.RetrievedRefs, ref.String())
	}
}

// append writes the query record. Log failures must never fail the answer.
func (s *QueryService) append(ctx context.Context, rec *domain.QueryRecord) {
	if s.log == nil {
		return
	}
	if err := s.log.Append(ctx, *rec); err != nil {
		logger.Warn("Query log append failed: %v", err)
	}
}

// assembleContext concatenates retrieved nodes and their one-hop edges into
// a bounded context block, dropping the lowest-ranked nodes first once the
// size bound is reached.
func (s *QueryService) assembleContext(ctx context.Context, comps []domain.Component) (string, []domain.ComponentRef) {
	var b strings.Builder
	refs := make([]domain.ComponentRef, 0, len(comps))

	for _, comp := range comps {
		block := s.nodeBlock(ctx, comp)
		if b.Len()+len(block) > s.settings.MaxContextChars {
			break
		}
		b.WriteString(block)
		refs = append(refs, comp.Ref())
	}
	return b.String(), refs
}

// nodeBlock renders one component with its directly-connected edges.
func (s *QueryService) nodeBlock(ctx context.Context, comp domain.Component) string {
	var b strings.Builder
	purpose := comp.BusinessPurpose
	if purpose == "" {
		purpose = "(no analysed purpose)"
	}
	fmt.Fprintf(&b, "- [%s] %s: %s (risk %s, complexity %s)\n",
		comp.Type, comp.Name, purpose, comp.Risk, comp.Complexity)

	neighborhood, err := s.graph.Neighborhood(ctx, comp.Ref(), 1)
	if err != nil {
		logger.Warn("Edge lookup for %s failed: %v", comp.Ref(), err)
		return b.String()
	}
	for _, edge := range neighborhood.Edges {
		fmt.Fprintf(&b, "  %s %s %s\n", edge.Source, edge.Kind, edge.Target)
	}
	return b.String()
}

// synthesisPrompt wraps the question and context for the model.
func (s *QueryService) synthesisPrompt(question, contextBlock string) string {
	return fmt.Sprintf(`You answer questions about a business-automation metadata graph.
Ground your answer ONLY in the context below. If the context is insufficient, say so.

Context:
%s
Question: %s

Answer:`, contextBlock, question)
}

// normalizeQuestion produces the cache key: lowercased, whitespace collapsed.
func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// tokenizeQuestion lowercases, splits on non-alphanumerics and drops short
// or generic tokens.
func tokenizeQuestion(q string) []string {
	fields := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !isAlnum(r)
	})
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, generic := questionStopWords[f]; generic {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_'
}

// rankComponents orders candidates by distinct-token match count, breaking
// ties by analysis recency.
func rankComponents(comps []domain.Component, tokens []string) []domain.Component {
	type scored struct {
		comp  domain.Component
		count int
	}
	ranked := make([]scored, 0, len(comps))
	for _, comp := range comps {
		haystack := strings.ToLower(comp.Name + " " + comp.BusinessPurpose + " " + comp.RawDefinition)
		count := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				count++
			}
		}
		if count > 0 {
			ranked = append(ranked, scored{comp: comp, count: count})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].comp.LastAnalyzed.After(ranked[j].comp.LastAnalyzed)
	})

	out := make([]domain.Component, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.comp)
	}
	return out
}

// meanConfidence averages the analysis confidence of the retrieved nodes.
func meanConfidence(comps []domain.Component) float64 {
	if len(comps) == 0 {
		return 0
	}
	var sum float64
	for _, c := range comps {
		sum += c.Confidence
	}
	return sum / float64(len(comps))
}
