// Package file provides a metadata source that reads raw component
// records from a JSON export file, the interchange format produced by the
// extraction tooling.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.MetadataSource = (*Source)(nil)

// Source reads one JSON array of raw components per Fetch.
type Source struct {
	path string
}

// NewSource creates a file-backed metadata source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Fetch reads and decodes the export file.
func (s *Source) Fetch(_ context.Context) ([]domain.RawComponent, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata export: %w", err)
	}

	var raws []domain.RawComponent
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: parsing metadata export: %v", domain.ErrInvalidInput, err)
	}
	return raws, nil
}
