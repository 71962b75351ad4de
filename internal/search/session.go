package search

import "sync"

// Session holds the current aggregate state and a monotonically increasing
// generation counter. Every new search bumps the generation before any
// network call; a result is applied only if its generation is still current,
// so a slow search that was superseded can never overwrite newer state.
type Session struct {
	mu         sync.Mutex
	generation uint64
	result     *Result
	related    *RelatedResult
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Begin starts a new search generation and returns its token.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++

	return s.generation
}

// Apply installs a keyword search result if generation is still current.
// Returns false when the result arrived for a superseded search and was
// discarded.
func (s *Session) Apply(generation uint64, result *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}

	s.result = result
	s.related = nil

	return true
}

// ApplyRelated installs a related-channel search result if generation is
// still current.
func (s *Session) ApplyRelated(generation uint64, result *RelatedResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}

	s.related = result
	s.result = nil

	return true
}

// Replace swaps in a result loaded from history wholesale, superseding any
// in-flight search.
func (s *Session) Replace(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.result = result
	s.related = nil
}

// ReplaceRelated swaps in a related-channel result loaded from history
// wholesale, superseding any in-flight search.
func (s *Session) ReplaceRelated(result *RelatedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.related = result
	s.result = nil
}

// Current returns the current keyword search result, or nil.
func (s *Session) Current() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.result
}

// CurrentRelated returns the current related-channel result, or nil.
func (s *Session) CurrentRelated() *RelatedResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.related
}
