// Package file provides an append-only query log stored as line-delimited
// JSON. One line per query keeps the file greppable and safe to append
// without rewriting history.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/metagraph/internal/core/domain"
	"github.com/custodia-labs/metagraph/internal/core/ports/driven"
	"github.com/custodia-labs/metagraph/internal/logger"
)

// Ensure Log implements the interface.
var _ driven.QueryLog = (*Log)(nil)

// Log appends query records to a JSONL file.
type Log struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewLog opens (or creates) the query log at the given path.
// If path is empty, defaults to ~/.metagraph/data/queries.jsonl.
func NewLog(path string) (*Log, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".metagraph", "data", "queries.jsonl")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening query log: %w", err)
	}
	return &Log{path: path, file: file}, nil
}

// Append writes one record as a single JSON line.
func (l *Log) Append(_ context.Context, rec domain.QueryRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding query record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending query record: %w", err)
	}
	return nil
}

// List reads every record back, oldest first. Lines that fail to decode
// are skipped with a warning so one corrupt line never hides the rest.
func (l *Log) List(_ context.Context) ([]domain.QueryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening query log: %w", err)
	}
	defer file.Close()

	var records []domain.QueryRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec domain.QueryRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("Skipping malformed query log line: %v", err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading query log: %w", err)
	}
	return records, nil
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
