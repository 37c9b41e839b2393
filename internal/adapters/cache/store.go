// Package cache implements the in-memory response cache.
package cache

import (
	"slices"
	"sync"

	"go.trai.ch/gqlstore/internal/core/ports"
)

var _ ports.ResponseCache = (*Store)(nil)

// Store implements ports.ResponseCache with a map guarded by a RWMutex.
// Entries hold resolved responses, so they share entity pointers with the entity store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any
	order   []string
}

// NewStore creates an empty response cache.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]any),
	}
}

// Get retrieves the response cached under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	return v, ok
}

// Put upserts the response cached under key.
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		s.order = append(s.order, key)
	}
	s.entries[key] = value
}

// Range calls fn for every entry in insertion order and stores what fn returns.
// Entries for which fn reports false are deleted. fn must not call back into the cache.
func (s *Store) Range(fn func(key string, value any) (any, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	for _, key := range s.order {
		value, keep := fn(key, s.entries[key])
		if !keep {
			delete(s.entries, key)
			continue
		}
		s.entries[key] = value
		kept = append(kept, key)
	}
	clear(s.order[len(kept):])
	s.order = kept
}

// Len returns the number of cached responses.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns the cache keys in insertion order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}
