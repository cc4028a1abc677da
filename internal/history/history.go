// Package history keeps the append-only list of completed sessions.
package history

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/verte-zerg/velotype/internal/model"
	"github.com/verte-zerg/velotype/internal/stats"
)

// Backend persists the full history list.
type Backend interface {
	// Load returns the persisted items in insertion order.
	Load(ctx context.Context) ([]model.HistoryItem, error)
	// Save overwrites the persisted list with items.
	Save(ctx context.Context, items []model.HistoryItem) error
}

// KeyAggregator is implemented by backends that can total missed keys over
// the most recent sessions themselves. window <= 0 covers all sessions.
type KeyAggregator interface {
	MissedKeyTotals(ctx context.Context, window int) (map[string]int, error)
}

// Store owns the in-memory history list and its persistence.
type Store struct {
	// saveMu orders saves so a shorter snapshot never overwrites a longer one.
	saveMu  sync.Mutex
	mu      sync.RWMutex
	backend Backend
	logger  *zap.SugaredLogger
	items   []model.HistoryItem
	// unsaved is set while memory holds items the backend is missing.
	unsaved bool
}

// Open loads history from backend. Unreadable or corrupt data is logged and
// treated as an empty history.
func Open(ctx context.Context, backend Backend, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Store{backend: backend, logger: logger}
	items, err := backend.Load(ctx)
	if err != nil {
		logger.Warnw("failed to load history, starting empty", "error", err)
		return s
	}
	s.items = items
	logger.Debugw("history loaded", "items", len(items))
	return s
}

// Append adds item to the end of the list and persists the full list.
// The item stays in memory even when saving fails.
func (s *Store) Append(ctx context.Context, item model.HistoryItem) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.items = append(s.items, item)
	snapshot := make([]model.HistoryItem, len(s.items))
	copy(snapshot, s.items)
	s.mu.Unlock()

	err := s.backend.Save(ctx, snapshot)
	s.mu.Lock()
	s.unsaved = err != nil
	s.mu.Unlock()
	if err != nil {
		s.logger.Errorw("failed to save history", "error", err, "items", len(snapshot))
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Items returns a copy of all items in chronological order.
func (s *Store) Items() []model.HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.HistoryItem, len(s.items))
	copy(out, s.items)
	return out
}

// Recent returns the last n items; n <= 0 uses the default chart window.
func (s *Store) Recent(n int) []model.HistoryItem {
	if n <= 0 {
		n = stats.DefaultRecent
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := max(len(s.items)-n, 0)
	out := make([]model.HistoryItem, len(s.items)-start)
	copy(out, s.items[start:])
	return out
}

// MissedKeyTotals sums missed keys over the whole history.
func (s *Store) MissedKeyTotals() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stats.MissedKeyTotals(s.items)
}

// RecentMissedKeyTotals sums missed keys over the last n sessions; n <= 0
// covers all of them. Backends implementing KeyAggregator answer directly
// unless the last save failed, in which case memory is authoritative.
func (s *Store) RecentMissedKeyTotals(ctx context.Context, n int) map[string]int {
	s.mu.RLock()
	agg, ok := s.backend.(KeyAggregator)
	unsaved := s.unsaved
	s.mu.RUnlock()

	if ok && !unsaved {
		totals, err := agg.MissedKeyTotals(ctx, n)
		if err == nil {
			return totals
		}
		s.logger.Warnw("failed to aggregate missed keys, using memory", "error", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.items
	if n > 0 && len(items) > n {
		items = items[len(items)-n:]
	}
	return stats.MissedKeyTotals(items)
}

// TopMissedKeys returns the n most-missed keys.
func (s *Store) TopMissedKeys(n int) []model.KeyCount {
	return stats.TopKeys(s.MissedKeyTotals(), n)
}
