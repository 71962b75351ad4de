// Package store persists search history and the visited-channel set. Stores
// keep their working state in memory and mirror every mutation to a durable
// key-value backend with a full rewrite of the key, the same way the original
// localStorage mirror worked. A reader that finds malformed JSON under a key
// treats it as empty instead of failing the session.
package store

import (
	"context"
	"sync"
)

// Storage keys of the durable mirror.
const (
	KeySearchHistory   = "search_history"
	KeyRelatedHistory  = "related_history"
	KeyVisitedChannels = "visited_channels"
)

// Backend is a durable key-value store. Load returns (nil, nil) for an
// absent key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryBackend is an in-memory Backend for tests.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, ok := b.values[key]
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (b *MemoryBackend) Save(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	b.values[key] = stored

	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.values, key)

	return nil
}
