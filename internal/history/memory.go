package history

import (
	"context"
	"sync"

	"github.com/verte-zerg/velotype/internal/model"
)

// MemoryBackend keeps history in process memory.
type MemoryBackend struct {
	mu      sync.Mutex
	items   []model.HistoryItem
	saves   int
	LoadErr error
	SaveErr error
}

// NewMemoryBackend returns a backend preloaded with items.
func NewMemoryBackend(items ...model.HistoryItem) *MemoryBackend {
	return &MemoryBackend{items: append([]model.HistoryItem(nil), items...)}
}

// Load implements Backend.
func (b *MemoryBackend) Load(_ context.Context) ([]model.HistoryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	return append([]model.HistoryItem(nil), b.items...), nil
}

// Save implements Backend.
func (b *MemoryBackend) Save(_ context.Context, items []model.HistoryItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.items = append([]model.HistoryItem(nil), items...)
	b.saves++
	return nil
}

// Saved returns the last saved list and how many saves happened.
func (b *MemoryBackend) Saved() ([]model.HistoryItem, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.HistoryItem(nil), b.items...), b.saves
}
