package store

import (
	"fmt"
	"sync"
)

// Mem is an in-memory KV for tests and ephemeral runs.
// Safe for concurrent use.
type Mem struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMem creates an empty in-memory KV.
func NewMem() *Mem {
	return &Mem{data: make(map[string]string)}
}

// Get implements KV.
func (m *Mem) Get(key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Mem) Set(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove implements KV.
func (m *Mem) Remove(key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Clear implements KV.
func (m *Mem) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

// Len returns the number of stored keys. Test helper.
func (m *Mem) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Compile-time interface verification.
var _ KV = (*Mem)(nil)
