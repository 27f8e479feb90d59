package store

import (
	"slices"
	"sync"

	"gitnote/internal/note"
)

// MemoryStore is an in-memory RecordStore for testing.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	records map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (m *MemoryStore) Get(identity string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[identity]
	if !ok {
		return nil, note.ErrNoRecord
	}
	return slices.Clone(data), nil
}

func (m *MemoryStore) Put(identity string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[identity] = slices.Clone(data)
	return nil
}

func (m *MemoryStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Backend = (*MemoryStore)(nil)
