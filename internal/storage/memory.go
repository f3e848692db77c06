package storage

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/vitaldiary/entryvault/internal/errors"
)

// MemoryAdapter is an in-memory Adapter used by tests and ephemeral
// sessions. Safe for concurrent use.
type MemoryAdapter struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryAdapter creates an empty in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		data: make(map[string]map[string][]byte),
	}
}

// Get returns the value stored under (namespace, id).
func (m *MemoryAdapter) Get(ctx context.Context, namespace, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[namespace][id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores value under (namespace, id), replacing any previous value.
func (m *MemoryAdapter) Put(ctx context.Context, namespace, id string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string][]byte)
	}

	held := make([]byte, len(value))
	copy(held, value)
	m.data[namespace][id] = held
	return nil
}

// Delete removes (namespace, id). Deleting an absent id is not an error.
func (m *MemoryAdapter) Delete(ctx context.Context, namespace, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[namespace], id)
	return nil
}

// List returns the ids present in namespace, in lexicographic order.
func (m *MemoryAdapter) List(ctx context.Context, namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.data[namespace]))
	for id := range m.data[namespace] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
