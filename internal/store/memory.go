package store

import (
	"context"
	"sync"
	"time"

	domain "github.com/globalentry/slot-alerter/pkg/types"
)

// MemoryStore implements Store with an in-process map. Seen state lives for
// the process lifetime only; restarts re-alert anything still open.
type MemoryStore struct {
	mu   sync.RWMutex
	seen map[string]time.Time // slot key -> slot start time
}

// NewMemoryStore creates an empty in-memory seen-slot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seen: make(map[string]time.Time),
	}
}

// FilterUnseen returns the slots whose keys have not been marked notified.
func (m *MemoryStore) FilterUnseen(_ context.Context, slots []domain.Slot) ([]domain.Slot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	unseen := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		if _, ok := m.seen[s.Key()]; !ok {
			unseen = append(unseen, s)
		}
	}
	return unseen, nil
}

// MarkNotified records the slots as notified.
func (m *MemoryStore) MarkNotified(_ context.Context, slots []domain.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range slots {
		m.seen[s.Key()] = s.StartTime
	}
	return nil
}

// Prune drops records for slots that started before the cutoff.
func (m *MemoryStore) Prune(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for key, start := range m.seen {
		if start.Before(before) {
			delete(m.seen, key)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close drops all seen state.
func (m *MemoryStore) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = nil
}

// Len returns the number of recorded slots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seen)
}
