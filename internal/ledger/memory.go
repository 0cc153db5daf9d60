package ledger

import (
	"context"
	"sync"

	"github.com/lox/holdemtable/internal/game"
)

// MemoryStore is a ChipStore held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	data    snapshot
	history int
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newSnapshot(), history: DefaultHistory}
}

func (m *MemoryStore) Balance(_ context.Context, userID string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chips, ok := m.data.Balances[userID]
	return chips, ok, nil
}

func (m *MemoryStore) SetBalance(_ context.Context, userID string, chips int) error {
	if chips < 0 {
		return ErrNegativeBalance
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data.Balances[userID] = chips
	return nil
}

func (m *MemoryStore) RecordHand(_ context.Context, result game.HandResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.apply(result, m.history)
}

func (m *MemoryStore) RecentHands(_ context.Context, limit int) ([]game.HandResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.recent(limit), nil
}
