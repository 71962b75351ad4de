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

// RelatedEntry is one saved related-channel result set.
type RelatedEntry struct {
	ID              string               `json:"id"`
	CreatedAt       time.Time            `json:"createdAt"`
	ChannelURL      string               `json:"channelUrl"`
	OriginalChannel search.SourceChannel `json:"originalChannel"`
	Channels        []youtube.Channel    `json:"channels"`
}

// RelatedHistoryStore keeps related-channel result sets in a separate bounded
// list with the same mirror discipline as HistoryStore.
type RelatedHistoryStore struct {
	mu      sync.Mutex
	backend Backend
	key     string
	cap     int
	entries []RelatedEntry
	lastFp  string
	logger  *zerolog.Logger
}

// NewRelatedHistoryStore creates a store mirrored under key and loads any
// existing entries. Malformed mirror content is discarded.
func NewRelatedHistoryStore(ctx context.Context, backend Backend, key string, capacity int, logger *zerolog.Logger) (*RelatedHistoryStore, error) {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}

	s := &RelatedHistoryStore{backend: backend, key: key, cap: capacity, logger: logger}

	raw, err := backend.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load related history mirror: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.entries); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("discarding malformed related history mirror")
			s.entries = nil
		}
	}

	observability.HistoryEntries.WithLabelValues(key).Set(float64(len(s.entries)))

	return s, nil
}

// Save prepends a new entry and rewrites the mirror. Saving the same source
// channel with the same record count twice in a row is a no-op.
func (s *RelatedHistoryStore) Save(ctx context.Context, channelURL string, result *search.RelatedResult) (*RelatedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp := fmt.Sprintf("%s|%d", result.OriginalChannel.ID, len(result.Channels))
	if fp == s.lastFp && len(s.entries) > 0 {
		entry := s.entries[0]

		return &entry, nil
	}

	entry := RelatedEntry{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		ChannelURL:      channelURL,
		OriginalChannel: result.OriginalChannel,
		Channels:        result.Channels,
	}

	entries := append([]RelatedEntry{entry}, s.entries...)
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
func (s *RelatedHistoryStore) List() []RelatedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RelatedEntry, len(s.entries))
	copy(out, s.entries)

	return out
}

// Load returns the entry with the given id.
func (s *RelatedHistoryStore) Load(id string) (*RelatedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			found := entry

			return &found, nil
		}
	}

	return nil, fmt.Errorf("related history entry %s: %w", id, apperrors.ErrNotFound)
}

// Delete removes the entry with the given id and rewrites the mirror.
func (s *RelatedHistoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]RelatedEntry, 0, len(s.entries))
	found := false

	for _, entry := range s.entries {
		if entry.ID == id {
			found = true

			continue
		}

		entries = append(entries, entry)
	}

	if !found {
		return fmt.Errorf("related history entry %s: %w", id, apperrors.ErrNotFound)
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
func (s *RelatedHistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear related history mirror: %w", err)
	}

	s.entries = nil
	s.lastFp = ""
	observability.HistoryEntries.WithLabelValues(s.key).Set(0)

	return nil
}

func (s *RelatedHistoryStore) rewrite(ctx context.Context, entries []RelatedEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode related history mirror: %w", err)
	}

	if err := s.backend.Save(ctx, s.key, raw); err != nil {
		return fmt.Errorf("rewrite related history mirror: %w", err)
	}

	return nil
}
