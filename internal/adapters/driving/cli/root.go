// Package cli provides the metagraph command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/metagraph/internal/adapters/driven/config/file"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/graph"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm/mock"
	logfile "github.com/custodia-labs/metagraph/internal/adapters/driven/querylog/file"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
	"github.com/custodia-labs/metagraph/internal/core/services"
	"github.com/custodia-labs/metagraph/internal/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "metagraph",
	Short: "Semantic metadata graph and retrieval pipeline",
	Long: `Metagraph ingests business-automation metadata, analyses each
component with a language model, extracts dependency relationships and
persists everything in a graph database. Natural-language questions are
answered from the graph with grounded, auditable context.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the wired adapters and services for one command invocation.
type app struct {
	settings configfile.Settings
	graph    driven.GraphStore
	orch     *services.Orchestrator
	queryLog driven.QueryLog
	cache    driven.AnswerCache
}

// loadSettings reads the config file and applies defaults.
func loadSettings() (configfile.Settings, error) {
	store, err := configfile.NewConfigStore("")
	if err != nil {
		return configfile.Settings{}, fmt.Errorf("opening config: %w", err)
	}
	return configfile.LoadSettings(store), nil
}

// newApp wires the full pipeline: config, provider chain, graph store,
// query log and answer cache. The caller must Close it.
func newApp(ctx context.Context) (*app, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	store, err := graph.Connect(ctx, settings.Graph)
	if err != nil {
		return nil, fmt.Errorf("connecting graph store: %w", err)
	}

	queryLog, err := logfile.NewLog("")
	if err != nil {
		store.Close(ctx)
		return nil, fmt.Errorf("opening query log: %w", err)
	}

	var cache driven.AnswerCache
	if c, err := sqlite.NewAnswerCache(""); err != nil {
		// The cache is an optimisation; run without it.
		logger.Warn("Answer cache unavailable, continuing without: %v", err)
	} else {
		cache = c
	}

	candidates := ai.BuildChain(settings.Providers)
	if len(candidates) == 0 {
		logger.Warn("No language-model provider configured; analyses will use placeholders")
	}
	orch := services.NewOrchestrator(candidates, mock.NewProvider())

	return &app{
		settings: settings,
		graph:    store,
		orch:     orch,
		queryLog: queryLog,
		cache:    cache,
	}, nil
}

// ingestService builds the ingestion pipeline.
func (a *app) ingestService() *services.IngestService {
	analyzer := services.NewAnalyzer(a.orch, a.settings.Analyzer)
	extractor := services.NewExtractor(a.settings.Extractor)
	return services.NewIngestService(a.graph, analyzer, extractor, a.cache, a.settings.Ingest, a.settings.Extractor)
}

// queryService builds the retrieval and synthesis pipeline.
func (a *app) queryService() *services.QueryService {
	return services.NewQueryService(a.graph, a.orch, a.queryLog, a.cache, a.settings.Query)
}

// Close releases every held resource.
func (a *app) Close(ctx context.Context) {
	_ = a.orch.Close()
	_ = a.queryLog.Close()
	if a.cache != nil {
		_ = a.cache.Close()
	}
	_ = a.graph.Close(ctx)
}
