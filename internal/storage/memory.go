package storage

import (
	"sync"

	"dump-go/internal/dump"
)

// MemoryStorage keeps the document in memory. Safe for concurrent use.
type MemoryStorage struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewMemoryStorage creates a MemoryStorage holding data, which may be nil.
func NewMemoryStorage(data []byte) *MemoryStorage {
	return &MemoryStorage{data: clone(data)}
}

// Load returns a copy of the stored document.
func (m *MemoryStorage) Load() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.data), nil
}

// Save replaces the stored document.
func (m *MemoryStorage) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = clone(data)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemoryStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

var _ dump.Storage = (*MemoryStorage)(nil)
