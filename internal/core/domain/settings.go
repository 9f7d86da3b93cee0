package domain

// Default tuning values. All of them can be overridden from the config file.
const (
	// DefaultReviewThreshold is the confidence below which a component is
	// flagged for human review.
	DefaultReviewThreshold = 7.0

	// EmptyDefinitionConfidenceCap bounds the confidence of any component
	// whose raw definition is empty: low information means low trust,
	// enforced locally rather than left to the model.
	EmptyDefinitionConfidenceCap = 3.0

	// DefaultMinMatchLen is the shortest entity name the extractor will
	// match. Guards against false positives on short common words.
	DefaultMinMatchLen = 4

	// DefaultQueryLimit is the number of nodes retrieved per question.
	DefaultQueryLimit = 5

	// DefaultMaxContextChars bounds the assembled context block.
	DefaultMaxContextChars = 4000

	// DefaultIngestWorkers is the analysis worker-pool size.
	DefaultIngestWorkers = 4
)

// AnalyzerSettings configures the semantic analyzer.
type AnalyzerSettings struct {
	// ReviewThreshold is the minimum confidence that avoids escalation.
	ReviewThreshold float64 `toml:"review_threshold"`
}

// DefaultAnalyzerSettings returns analyzer settings with defaults applied.
func DefaultAnalyzerSettings() AnalyzerSettings {
	return AnalyzerSettings{ReviewThreshold: DefaultReviewThreshold}
}

// ExtractorSettings configures relationship extraction.
type ExtractorSettings struct {
	// MinMatchLen is the shortest entity name considered for matching.
	MinMatchLen int `toml:"min_match_len"`

	// StopWords are entity names excluded from matching entirely, for
	// objects whose names are common english words.
	StopWords []string `toml:"stop_words"`

	// StandardEntities seeds the corpus index with well-known object names
	// that may not have been ingested yet.
	StandardEntities []string `toml:"standard_entities"`
}

// DefaultExtractorSettings returns extractor settings with defaults applied.
func DefaultExtractorSettings() ExtractorSettings {
	return ExtractorSettings{
		MinMatchLen: DefaultMinMatchLen,
		StopWords:   []string{"name", "type", "date", "data", "test"},
		StandardEntities: []string{
			"Account", "Contact", "Lead", "Opportunity", "Case",
			"Campaign", "User", "Task", "Event", "Product2",
		},
	}
}

// QuerySettings configures the query engine.
type QuerySettings struct {
	// Limit is the default number of nodes retrieved per question.
	Limit int `toml:"limit"`

	// MaxContextChars bounds the assembled context block; lowest-ranked
	// nodes are dropped first.
	MaxContextChars int `toml:"max_context_chars"`
}

// DefaultQuerySettings returns query settings with defaults applied.
func DefaultQuerySettings() QuerySettings {
	return QuerySettings{
		Limit:           DefaultQueryLimit,
		MaxContextChars: DefaultMaxContextChars,
	}
}

// IngestSettings configures the ingestion pipeline.
type IngestSettings struct {
	// Workers is the number of components analysed concurrently.
	Workers int `toml:"workers"`
}

// DefaultIngestSettings returns ingest settings with defaults applied.
func DefaultIngestSettings() IngestSettings {
	return IngestSettings{Workers: DefaultIngestWorkers}
}

// GraphSettings configures the graph store connection.
type GraphSettings struct {
	// URI is the bolt URI, e.g. neo4j+s://host.databases.neo4j.io.
	URI string `toml:"uri"`

	// Username for the database user.
	Username string `toml:"username"`

	// Password for the database user.
	Password string `toml:"password"`

	// Database is the logical database name (default "neo4j").
	Database string `toml:"database"`
}

// IsConfigured returns true when enough is present to attempt a connection.
func (s GraphSettings) IsConfigured() bool {
	return s.URI != "" && s.Password != ""
}

// ProviderSettings configures one language-model provider entry in the
// fallback chain.
type ProviderSettings struct {
	// Provider is the vendor name: "gemini", "openai" or "anthropic".
	Provider string `toml:"provider"`

	// APIKey authenticates against the vendor API.
	APIKey string `toml:"api_key"`

	// Model is the model identifier. Fallback across several models of the
	// same vendor is expressed as multiple chain entries in listed order.
	Model string `toml:"model"`

	// RequestsPerMinute caps the call rate to this provider. Zero means
	// unlimited.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// IsConfigured returns true when the entry has enough to be constructed.
func (s ProviderSettings) IsConfigured() bool {
	return s.Provider != "" && s.APIKey != ""
}
