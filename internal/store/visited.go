package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// VisitedStore tracks channel ids the user has opened, preserving insertion
// order in the mirror so a reload shows the same set.
type VisitedStore struct {
	mu      sync.Mutex
	backend Backend
	key     string
	ids     []string
	index   map[string]struct{}
	logger  *zerolog.Logger
}

// NewVisitedStore creates a store mirrored under key and loads any existing
// ids. Malformed mirror content is discarded.
func NewVisitedStore(ctx context.Context, backend Backend, key string, logger *zerolog.Logger) (*VisitedStore, error) {
	s := &VisitedStore{backend: backend, key: key, index: make(map[string]struct{}), logger: logger}

	raw, err := backend.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load visited mirror: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.ids); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("discarding malformed visited mirror")
			s.ids = nil
		}
	}

	for _, id := range s.ids {
		s.index[id] = struct{}{}
	}

	return s, nil
}

// Mark adds a channel id to the visited set and rewrites the mirror. Marking
// an already visited id is a no-op.
func (s *VisitedStore) Mark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return nil
	}

	ids := append(append([]string(nil), s.ids...), id)

	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode visited mirror: %w", err)
	}

	if err := s.backend.Save(ctx, s.key, raw); err != nil {
		return fmt.Errorf("rewrite visited mirror: %w", err)
	}

	s.ids = ids
	s.index[id] = struct{}{}

	return nil
}

// Contains reports whether a channel id is marked visited.
func (s *VisitedStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.index[id]

	return ok
}

// Set returns the visited ids as a lookup set.
func (s *VisitedStore) Set() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]struct{}, len(s.index))
	for id := range s.index {
		out[id] = struct{}{}
	}

	return out
}

// IDs returns the visited ids in insertion order.
func (s *VisitedStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.ids))
	copy(out, s.ids)

	return out
}

// Clear drops the whole set and removes the mirror key.
func (s *VisitedStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear visited mirror: %w", err)
	}

	s.ids = nil
	s.index = make(map[string]struct{})

	return nil
}
