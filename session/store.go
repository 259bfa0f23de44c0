package session

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by [Store.Get] when no value is stored under the key.
	ErrNotFound = errors.New("session value not found")
	// ErrStoreUnavailable wraps backend failures.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrTokenExpired is returned by [Session.Restore] when the durable token is past exp.
	ErrTokenExpired = errors.New("stored token expired")
)

// Store is durable key-value storage for the bearer token.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is a [Store] that lives for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key or [ErrNotFound].
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// Delete removes key; a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}
