// Package ai provides factory functions for assembling the language-model
// provider chain from configuration.
package ai

import (
	"fmt"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
	"github.com/custodia-labs/metagraph/internal/core/services"
	"github.com/custodia-labs/metagraph/internal/logger"
)

// CreateProvider constructs one provider adapter from its settings.
func CreateProvider(settings domain.ProviderSettings) (driven.LLMProvider, error) {
	switch settings.Provider {
	case "gemini":
		return gemini.NewProvider(gemini.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})
	case "openai":
		return openai.NewProvider(openai.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})
	case "anthropic":
		return anthropic.NewProvider(anthropic.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, settings.Provider)
	}
}

// BuildChain turns the configured provider list into orchestrator
// candidates, preserving priority order. Unconfigured or broken entries are
// skipped with a warning rather than failing startup: the orchestrator
// degrades to the mock responder when the chain comes up empty.
func BuildChain(entries []domain.ProviderSettings) []services.Candidate {
	candidates := make([]services.Candidate, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsConfigured() {
			logger.Debug("Skipping unconfigured provider entry %q", entry.Provider)
			continue
		}
		provider, err := CreateProvider(entry)
		if err != nil {
			logger.Warn("Skipping provider %q: %v", entry.Provider, err)
			continue
		}
		candidates = append(candidates, services.NewCandidate(provider, entry.RequestsPerMinute))
		logger.Debug("Provider %s added to chain (rpm=%d)", provider.Name(), entry.RequestsPerMinute)
	}
	return candidates
}
