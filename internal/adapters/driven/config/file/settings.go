package file

import (
	"os"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Settings bundles the typed configuration the pipeline needs.
type Settings struct {
	Graph     domain.GraphSettings
	Analyzer  domain.AnalyzerSettings
	Extractor domain.ExtractorSettings
	Query     domain.QuerySettings
	Ingest    domain.IngestSettings
	Providers []domain.ProviderSettings
}

// Environment variables consulted when the config file omits a credential.
const (
	envGraphURI      = "METAGRAPH_NEO4J_URI"
	envGraphUser     = "METAGRAPH_NEO4J_USERNAME"
	envGraphPassword = "METAGRAPH_NEO4J_PASSWORD"
)

var envAPIKeys = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// LoadSettings builds the typed settings from the config store, applying
// defaults for anything unset and environment variables for credentials
// the file omits.
func LoadSettings(store driven.ConfigStore) Settings {
	s := Settings{
		Analyzer:  domain.DefaultAnalyzerSettings(),
		Extractor: domain.DefaultExtractorSettings(),
		Query:     domain.DefaultQuerySettings(),
		Ingest:    domain.DefaultIngestSettings(),
	}

	s.Graph = domain.GraphSettings{
		URI:      firstNonEmpty(store.GetString("graph.uri"), os.Getenv(envGraphURI)),
		Username: firstNonEmpty(store.GetString("graph.username"), os.Getenv(envGraphUser), "neo4j"),
		Password: firstNonEmpty(store.GetString("graph.password"), os.Getenv(envGraphPassword)),
		Database: store.GetString("graph.database"),
	}

	if v := store.GetFloat("analyzer.review_threshold"); v > 0 {
		s.Analyzer.ReviewThreshold = v
	}
	if v := store.GetInt("extractor.min_match_len"); v > 0 {
		s.Extractor.MinMatchLen = v
	}
	if v := store.GetStringSlice("extractor.stop_words"); v != nil {
		s.Extractor.StopWords = v
	}
	if v := store.GetStringSlice("extractor.standard_entities"); v != nil {
		s.Extractor.StandardEntities = v
	}
	if v := store.GetInt("query.limit"); v > 0 {
		s.Query.Limit = v
	}
	if v := store.GetInt("query.max_context_chars"); v > 0 {
		s.Query.MaxContextChars = v
	}
	if v := store.GetInt("ingest.workers"); v > 0 {
		s.Ingest.Workers = v
	}

	s.Providers = loadProviders(store)
	return s
}

// loadProviders reads the [[providers]] array of tables, falling back to a
// default chain built from whichever vendor API keys are present in the
// environment.
func loadProviders(store driven.ConfigStore) []domain.ProviderSettings {
	raw, ok := store.Get("providers")
	if ok {
		if entries := decodeProviders(raw); len(entries) > 0 {
			return entries
		}
	}

	// Priority order mirrors cost: cheap and fast first.
	var chain []domain.ProviderSettings
	for _, vendor := range []string{"gemini", "openai", "anthropic"} {
		if key := os.Getenv(envAPIKeys[vendor]); key != "" {
			chain = append(chain, domain.ProviderSettings{Provider: vendor, APIKey: key})
		}
	}
	return chain
}

// decodeProviders converts the TOML array-of-tables value into typed
// provider entries. API keys absent from the file fall back to the
// vendor's environment variable.
func decodeProviders(raw any) []domain.ProviderSettings {
	var tables []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		tables = v
	case []any:
		for _, item := range v {
			if table, ok := item.(map[string]any); ok {
				tables = append(tables, table)
			}
		}
	default:
		return nil
	}

	entries := make([]domain.ProviderSettings, 0, len(tables))
	for _, table := range tables {
		entry := domain.ProviderSettings{
			Provider:          stringAt(table, "provider"),
			APIKey:            stringAt(table, "api_key"),
			Model:             stringAt(table, "model"),
			RequestsPerMinute: intAt(table, "requests_per_minute"),
		}
		if entry.APIKey == "" {
			entry.APIKey = os.Getenv(envAPIKeys[entry.Provider])
		}
		entries = append(entries, entry)
	}
	return entries
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intAt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
