package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure AnswerCache implements the interface.
var _ driven.AnswerCache = (*AnswerCache)(nil)

// AnswerCache is a process-local answer cache for setups that run without
// the persistent sqlite cache.
type AnswerCache struct {
	mu      sync.RWMutex
	answers map[string]domain.Answer
}

// NewAnswerCache creates an empty in-memory answer cache.
func NewAnswerCache() *AnswerCache {
	return &AnswerCache{answers: make(map[string]domain.Answer)}
}

// Get returns the cached answer for a question key, if present.
func (c *AnswerCache) Get(_ context.Context, key string) (*domain.Answer, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ans, ok := c.answers[key]
	if !ok {
		return nil, false, nil
	}
	return &ans, true, nil
}

// Put stores an answer under the question key.
func (c *AnswerCache) Put(_ context.Context, key string, ans domain.Answer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[key] = ans
	return nil
}

// Clear removes every cached answer.
func (c *AnswerCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = make(map[string]domain.Answer)
	return nil
}

// Close releases resources.
func (c *AnswerCache) Close() error {
	return nil
}
