package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
	"github.com/JoaquinMayer/youtube-channel-search/internal/observability"
	"github.com/JoaquinMayer/youtube-channel-search/internal/search"
	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

const defaultHistoryCap = 20

// HistoryEntry is one saved search result set.
type HistoryEntry struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	Query        search.Query      `json:"query"`
	Channels     []youtube.Channel `json:"channels"`
	TotalResults int               `json:"totalResults"`
}

// HistoryStore keeps the most recent search results, newest first, bounded
// by cap. Saving the same result set twice in a row is a no-op so that a
// re-render never duplicates an entry.
type HistoryStore struct {
	mu      sync.Mutex
	backend Backend
	key     string
	cap     int
	entries []HistoryEntry
	lastFp  string
	logger  *zerolog.Logger
}

// NewHistoryStore creates a store mirrored under key and loads any existing
// entries. Malformed mirror content is discarded.
func NewHistoryStore(ctx context.Context, backend Backend, key string, capacity int, logger *zerolog.Logger) (*HistoryStore, error) {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}

	s := &HistoryStore{backend: backend, key: key, cap: capacity, logger: logger}

	raw, err := backend.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load history mirror: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.entries); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("discarding malformed history mirror")
			s.entries = nil
		}
	}

	observability.HistoryEntries.WithLabelValues(key).Set(float64(len(s.entries)))

	return s, nil
}

// Save prepends a new entry and rewrites the mirror. When query and record
// count match the previous save exactly, the existing entry is returned
// unchanged.
func (s *HistoryStore) Save(ctx context.Context, result *search.Result) (*HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp := fingerprint(result)
	if fp == s.lastFp && len(s.entries) > 0 {
		entry := s.entries[0]

		return &entry, nil
	}

	entry := HistoryEntry{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Query:        result.Query,
		Channels:     result.Channels,
		TotalResults: result.TotalResults,
	}

	entries := append([]HistoryEntry{entry}, s.entries...)
	if len(entries) > s.cap {
		entries = entries[:s.cap]
	}

	if err := s.rewrite(ctx, entries); err != nil {
		return nil, err
	}

	s.entries = entries
	s.lastFp = fp
	observability.HistoryEntries.WithLabelValues(s.key).Set(float64(len(s.entries)))

	return &entry, nil
}

// List returns all entries, newest first.
func (s *HistoryStore) List() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]HistoryEntry, len(s.entries))
	copy(out, s.entries)

	return out
}

// Load returns the entry with the given id.
func (s *HistoryStore) Load(id string) (*HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			found := entry

			return &found, nil
		}
	}

	return nil, fmt.Errorf("history entry %s: %w", id, apperrors.ErrNotFound)
}

// Delete removes the entry with the given id and rewrites the mirror.
func (s *HistoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]HistoryEntry, 0, len(s.entries))
	found := false

	for _, entry := range s.entries {
		if entry.ID == id {
			found = true

			continue
		}

		entries = append(entries, entry)
	}

	if !found {
		return fmt.Errorf("history entry %s: %w", id, apperrors.ErrNotFound)
	}

	if err := s.rewrite(ctx, entries); err != nil {
		return err
	}

	s.entries = entries
	s.lastFp = ""
	observability.HistoryEntries.WithLabelValues(s.key).Set(float64(len(s.entries)))

	return nil
}

// Clear drops every entry and removes the mirror key.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear history mirror: %w", err)
	}

	s.entries = nil
	s.lastFp = ""
	observability.HistoryEntries.WithLabelValues(s.key).Set(0)

	return nil
}

func (s *HistoryStore) rewrite(ctx context.Context, entries []HistoryEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history mirror: %w", err)
	}

	if err := s.backend.Save(ctx, s.key, raw); err != nil {
		return fmt.Errorf("rewrite history mirror: %w", err)
	}

	return nil
}

func fingerprint(result *search.Result) string {
	raw, err := json.Marshal(result.Query)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("%s|%d", raw, len(result.Channels))
}
