package store

import (
	"context"
	"errors"
	"sync"
)

// Persistence keys consulted by the incorrect-item and progress stores.
const (
	KeyIncorrectItems = "incorrectCards"
	KeyProgress       = "flashcardStats"
)

// ErrClosed is returned by a backend used after Close.
var ErrClosed = errors.New("store is closed")

// KV is a flat string-keyed store with no transactions.
type KV interface {
	// Read returns the value for key and whether it was present.
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Memory is an in-process KV used by tests and ephemeral runs.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	closed bool
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

// Read implements KV.
func (m *Memory) Read(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Write implements KV.
func (m *Memory) Write(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

// Remove implements KV. Removing a missing key is not an error.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.values, key)
	return nil
}

// Close makes every later call fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
