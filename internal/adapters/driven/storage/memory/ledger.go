package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.BuildLedger = (*Ledger)(nil)

// Ledger is an in-memory implementation of driven.BuildLedger.
type Ledger struct {
	mu     sync.RWMutex
	hashes map[string]string
	runs   map[string]domain.Run
}

// NewLedger creates a new in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		hashes: make(map[string]string),
		runs:   make(map[string]domain.Run),
	}
}

// Hash returns the hash last recorded for path.
func (l *Ledger) Hash(_ context.Context, path string) (string, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum, ok := l.hashes[path]
	return sum, ok, nil
}

// RecordHash stores the hash for path.
func (l *Ledger) RecordHash(_ context.Context, path, sum string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hashes[path] = sum
	return nil
}

// SaveRun stores or updates a run.
func (l *Ledger) SaveRun(_ context.Context, run domain.Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs[run.ID] = run
	return nil
}

// Runs returns up to limit runs, newest first.
func (l *Ledger) Runs(_ context.Context, limit int) ([]domain.Run, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	runs := make([]domain.Run, 0, len(l.runs))
	for _, r := range l.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op.
func (l *Ledger) Close() error {
	return nil
}
