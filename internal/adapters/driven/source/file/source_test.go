package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

func TestSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	content := `[
		{"component_type": "flow", "qualified_name": "Account_Assign_Owner", "raw_definition": "<flow/>", "is_active": true},
		{"component_type": "object", "qualified_name": "Invoice__c", "raw_definition": "", "is_active": true}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	raws, err := NewSource(path).Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, domain.ComponentTypeFlow, raws[0].Type)
	assert.Equal(t, "Account_Assign_Owner", raws[0].Name)
	assert.True(t, raws[0].IsActive)
	assert.Equal(t, domain.ComponentTypeObject, raws[1].Type)
}

func TestSource_Fetch_MissingFile(t *testing.T) {
	_, err := NewSource(filepath.Join(t.TempDir(), "absent.json")).Fetch(context.Background())

	assert.Error(t, err)
}

func TestSource_Fetch_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewSource(path).Fetch(context.Background())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
