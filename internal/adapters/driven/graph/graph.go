// Package graph selects a working transport to the graph database. It
// tries the bolt protocol first and falls back to the HTTP Query API when
// bolt connectivity cannot be established.
package graph

import (
	"context"
	"fmt"

	"github.com/custodia-labs/metagraph/internal/adapters/driven/graph/bolt"
	"github.com/custodia-labs/metagraph/internal/adapters/driven/graph/httpapi"
	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
	"github.com/custodia-labs/metagraph/internal/logger"
)

// Connect probes the configured graph database and returns the first
// transport that answers. Each transport is probed exactly once.
func Connect(ctx context.Context, settings domain.GraphSettings) (driven.GraphStore, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: graph database is not configured", domain.ErrStoreUnavailable)
	}

	boltStore, boltErr := bolt.NewStore(ctx, settings)
	if boltErr == nil {
		logger.Debug("Graph store connected over bolt (%s)", settings.URI)
		return boltStore, nil
	}
	logger.Warn("Bolt transport unavailable, trying Query API: %v", boltErr)

	httpStore, err := httpapi.NewStore(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := httpStore.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: bolt: %v; http: %v", domain.ErrStoreUnavailable, boltErr, err)
	}
	logger.Debug("Graph store connected over Query API")
	return httpStore, nil
}
