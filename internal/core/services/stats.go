package services

import "github.com/custodia-labs/metagraph/internal/core/domain"

// Summarize folds query records into aggregate statistics.
func Summarize(records []domain.QueryRecord) domain.QueryStats {
	stats := domain.QueryStats{Total: len(records)}
	if len(records) == 0 {
		return stats
	}

	var retrievalSum, synthesisSum int64
	for _, rec := range records {
		if rec.Success {
			stats.Succeeded++
		}
		if rec.Cached {
			stats.CacheHits++
		}
		retrievalSum += rec.RetrievalMillis
		synthesisSum += rec.SynthesisMillis
	}
	stats.MeanRetrievalMillis = float64(retrievalSum) / float64(len(records))
	stats.MeanSynthesisMillis = float64(synthesisSum) / float64(len(records))
	return stats
}
