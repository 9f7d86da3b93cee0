// Package sqlite provides a SQLite-backed answer cache. Cached answers
// survive process restarts and are invalidated wholesale whenever the
// graph corpus changes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
)

// Ensure AnswerCache implements the interface.
var _ driven.AnswerCache = (*AnswerCache)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS answers (
	question_key TEXT PRIMARY KEY,
	answer_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL
)`

// AnswerCache stores synthesized answers keyed by normalized question.
type AnswerCache struct {
	db   *sql.DB
	path string
}

// NewAnswerCache creates the cache at the specified data directory.
// If dataDir is empty, defaults to ~/.metagraph/data/answers.db.
func NewAnswerCache(dataDir string) (*AnswerCache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".metagraph", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "answers.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating answers table: %w", err)
	}

	return &AnswerCache{db: db, path: dbPath}, nil
}

// Get returns the cached answer for a question key, if present.
func (c *AnswerCache) Get(ctx context.Context, key string) (*domain.Answer, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		"SELECT answer_json FROM answers WHERE question_key = ?", key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached answer: %w", err)
	}

	var answer domain.Answer
	if err := json.Unmarshal([]byte(payload), &answer); err != nil {
		return nil, false, fmt.Errorf("decoding cached answer: %w", err)
	}
	return &answer, true, nil
}

// Put stores an answer under the question key, overwriting any previous
// entry.
func (c *AnswerCache) Put(ctx context.Context, key string, answer domain.Answer) error {
	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("encoding answer: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO answers (question_key, answer_json, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(question_key) DO UPDATE SET
			answer_json = excluded.answer_json,
			created_at = excluded.created_at`,
		key, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("storing answer: %w", err)
	}
	return nil
}

// Clear removes every cached answer.
func (c *AnswerCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM answers"); err != nil {
		return fmt.Errorf("clearing answer cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *AnswerCache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *AnswerCache) Close() error {
	return c.db.Close()
}
