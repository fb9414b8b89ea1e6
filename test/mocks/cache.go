package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockCache is an in-memory mock implementation of the Cache interface
// Used for testing without requiring a real Redis instance
type MockCache struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

// Get retrieves a value from the mock cache
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, exists := m.data[key]
	if !exists {
		return "", nil // Return empty string for non-existent keys (like Redis)
	}
	return val, nil
}

// Set stores a value in the mock cache. Expirations are ignored; tests that
// need TTL behavior use miniredis instead.
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = fmt.Sprintf("%v", value)
	return nil
}

// Del removes keys from the mock cache
func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Exists counts how many of the given keys exist
func (m *MockCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
	}
	return n, nil
}

// Len reports how many keys are stored, for test assertions
func (m *MockCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
