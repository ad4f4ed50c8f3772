package store

import (
	"context"
	"sync"
)

// KV is the durable key-value contract: scoped, stringly-typed, best-effort.
// There is no transactional guarantee across keys.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Memory is an in-process KV for tests. It counts writes per key so tests
// can assert on persistence traffic.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	sets   map[string]int
}

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]string),
		sets:   make(map[string]int),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.sets[key]++
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Test helpers

// SetCount returns how many Set calls were made for key.
func (m *Memory) SetCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[key]
}

// Put seeds a raw value without counting it as a write.
func (m *Memory) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Verify Memory implements KV at compile time.
var _ KV = (*Memory)(nil)
