package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
	"github.com/custodia-labs/metagraph/internal/core/ports/driving"
	"github.com/custodia-labs/metagraph/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService runs the per-component pipeline: semantic analysis, then
// relationship extraction, then graph upsert. Components are independent
// units of work processed by a bounded worker pool; upsert idempotence
// tolerates any interleaving across components.
type IngestService struct {
	graph     driven.GraphStore
	analyzer  *Analyzer
	extractor *Extractor
	cache     driven.AnswerCache // optional; cleared after corpus changes
	settings  domain.IngestSettings
	extract   domain.ExtractorSettings
}

// NewIngestService creates an ingest service. The cache parameter is
// optional (can be nil).
func NewIngestService(
	graph driven.GraphStore,
	analyzer *Analyzer,
	extractor *Extractor,
	cache driven.AnswerCache,
	settings domain.IngestSettings,
	extract domain.ExtractorSettings,
) *IngestService {
	if settings.Workers <= 0 {
		settings = domain.DefaultIngestSettings()
	}
	return &IngestService{
		graph:     graph,
		analyzer:  analyzer,
		extractor: extractor,
		cache:     cache,
		settings:  settings,
		extract:   extract,
	}
}

// Ingest analyses and persists a batch of raw components.
//
// Without force, components already present in the graph are skipped and
// left unchanged. With force, semantic fields are overwritten and the
// component's edges are replaced. Source-data problems never abort the
// batch; persistence failures are counted and returned joined, since they
// are retryable and must not be silent.
func (s *IngestService) Ingest(ctx context.Context, raws []domain.RawComponent, force bool) (domain.IngestReport, error) {
	logger.Section("Ingestion")
	logger.Info("Batch of %d components (force=%t, workers=%d)", len(raws), force, s.settings.Workers)

	var (
		mu     sync.Mutex
		report domain.IngestReport
		errs   []error
	)
	fail := func(err error) {
		mu.Lock()
		report.Failed++
		errs = append(errs, err)
		mu.Unlock()
	}

	// The corpus index is a read-only snapshot for the whole batch,
	// rebuilt up front so reference matching sees the incoming names too.
	existing, err := s.graph.ListComponents(ctx)
	if err != nil {
		return report, fmt.Errorf("list corpus: %w", err)
	}
	idx := NewCorpusIndex(existing, raws, s.extract.StandardEntities)
	summary := idx.Summary()
	logger.Debug("Corpus index: %d names", idx.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.settings.Workers)

	for _, raw := range raws {
		raw := raw
		g.Go(func() error {
			if err := raw.Validate(); err != nil {
				logger.Warn("Rejecting record %q: %v", raw.Name, err)
				fail(err)
				return nil
			}

			prev, err := s.graph.GetComponent(gctx, raw.Ref())
			switch {
			case err == nil && !force:
				logger.Debug("Skipping %s: already analysed", raw.Ref())
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				return nil
			case err != nil && !errors.Is(err, domain.ErrNotFound):
				fail(fmt.Errorf("lookup %s: %w", raw.Ref(), err))
				return nil
			}

			// Within one component the order is fixed: analysis, then
			// extraction, then persistence of node and edges.
			comp := s.analyzer.AnalyzeComponent(gctx, raw, summary)
			if prev != nil {
				comp.FirstSeen = prev.FirstSeen
			} else {
				comp.FirstSeen = time.Now().UTC()
			}

			edges := s.extractor.ExtractEdges(comp, idx)

			if err := s.graph.UpsertComponent(gctx, comp); err != nil {
				fail(fmt.Errorf("upsert %s: %w", comp.Ref(), err))
				return nil
			}
			if err := s.graph.ReplaceEdges(gctx, comp.Ref(), edges); err != nil {
				fail(fmt.Errorf("replace edges of %s: %w", comp.Ref(), err))
				return nil
			}

			mu.Lock()
			if prev != nil {
				report.Updated++
			} else {
				report.Created++
			}
			if comp.Review {
				report.Escalated++
			}
			mu.Unlock()
			logger.Debug("Persisted %s with %d edges", comp.Ref(), len(edges))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	if report.Processed() > 0 && s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			logger.Warn("Answer cache invalidation failed: %v", err)
		} else {
			logger.Debug("Answer cache cleared after corpus change")
		}
	}

	logger.Info("Ingestion done: created=%d updated=%d skipped=%d escalated=%d failed=%d",
		report.Created, report.Updated, report.Skipped, report.Escalated, report.Failed)
	return report, errors.Join(errs...)
}
