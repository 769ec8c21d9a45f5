package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-process KVStore backed by a map. Values do not
// survive a restart; it backs the short-TTL DMARC/SSL cache.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// GetValue returns the value for key or ErrKeyNotFound.
func (m *MemoryStore) GetValue(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

// SetValue stores value under key.
func (m *MemoryStore) SetValue(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error {
	return nil
}
