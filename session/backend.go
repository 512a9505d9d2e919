package session

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by a Backend when a key has no value.
	ErrNotFound = errors.New("session key not found")
	// ErrBackendUnavailable wraps storage failures other than a missing key.
	ErrBackendUnavailable = errors.New("session backend unavailable")
)

// Backend is durable client storage: string values addressed by key, with reads and
// writes atomic per key. The Store is expected to be its only writer.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// BatchSetter is implemented by backends able to write several keys in one
// transaction. The Store prefers it when available.
type BatchSetter interface {
	SetBatch(ctx context.Context, values map[string]string) error
}

// MemoryBackend keeps values in process memory. It is the backend for tests and for
// clients that must not persist anything across restarts.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryBackend) SetBatch(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
