// Package llm provides shared helpers for the language-model provider
// adapters: classification of vendor failures into the domain taxonomy and
// parsing of structured analysis responses.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// ParseAnalysis extracts the first JSON object from model output and
// decodes it into an analysis result. Models often wrap the object in
// prose or code fences; everything outside the outermost braces is
// ignored. Unparseable output wraps domain.ErrMalformedResponse so the
// orchestrator advances to the next candidate.
func ParseAnalysis(text string) (*driven.AnalysisResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in output", domain.ErrMalformedResponse)
	}

	var result driven.AnalysisResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if strings.TrimSpace(result.BusinessPurpose) == "" {
		return nil, fmt.Errorf("%w: missing business_purpose", domain.ErrMalformedResponse)
	}

	result.Risk = domain.ParseRiskLevel(string(result.Risk))
	result.Complexity = domain.ParseComplexityLevel(string(result.Complexity))
	return &result, nil
}

// ClassifyStatus maps an HTTP status code to the domain error taxonomy.
// 429 is a quota/rate-limit rejection; anything else non-2xx is transient
// from the orchestrator's point of view (it advances either way).
func ClassifyStatus(status int) error {
	if status == 429 {
		return domain.ErrQuotaExceeded
	}
	return domain.ErrTransientFailure
}
