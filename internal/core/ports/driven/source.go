package driven

import (
	"context"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

// MetadataSource delivers raw component records extracted from the source
// system. The core never calls the source system directly; this port is the
// boundary with the external extraction adapter.
type MetadataSource interface {
	// Fetch returns the raw component records for one extraction run.
	Fetch(ctx context.Context) ([]domain.RawComponent, error)
}
