package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

func testAnswer() domain.Answer {
	return domain.Answer{
		Text: "Owners are assigned by the Account_Assign_Owner flow.",
		Sources: []domain.ComponentRef{
			{Type: domain.ComponentTypeFlow, Name: "Account_Assign_Owner"},
		},
		Confidence: 0.8,
	}
}

func TestAnswerCache_PutAndGet(t *testing.T) {
	cache, err := NewAnswerCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "who assigns owners?")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "who assigns owners?", testAnswer()))

	got, ok, err := cache.Get(ctx, "who assigns owners?")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testAnswer().Text, got.Text)
	assert.Equal(t, testAnswer().Sources, got.Sources)
}

func TestAnswerCache_PutOverwrites(t *testing.T) {
	cache, err := NewAnswerCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "q", domain.Answer{Text: "first"}))
	require.NoError(t, cache.Put(ctx, "q", domain.Answer{Text: "second"}))

	got, ok, err := cache.Get(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.Text)
}

func TestAnswerCache_Clear(t *testing.T) {
	cache, err := NewAnswerCache(t.TempDir())
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "q1", domain.Answer{Text: "a1"}))
	require.NoError(t, cache.Put(ctx, "q2", domain.Answer{Text: "a2"}))
	require.NoError(t, cache.Clear(ctx))

	_, ok, err := cache.Get(ctx, "q1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAnswerCache_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cache, err := NewAnswerCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, "q", domain.Answer{Text: "persisted"}))
	require.NoError(t, cache.Close())

	reopened, err := NewAnswerCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", got.Text)
}
