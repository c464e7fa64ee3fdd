package store

import (
	"encoding/json"
	"maps"
	"sort"
	"sync"
)

// Store is a concurrency-safe key/value state container.
type Store struct {
	mu    sync.RWMutex
	state map[string]any
}

// New creates a store seeded with a copy of initial.
func New(initial map[string]any) *Store {
	state := make(map[string]any, len(initial))
	maps.Copy(state, initial)
	return &Store{state: state}
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = value
}

// Update atomically replaces the value under key with fn(current).
// current is nil when the key is unset.
func (s *Store) Update(key string, fn func(current any) any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = fn(s.state[key])
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, key)
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.state))
	for k := range s.state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the current state.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.state)
}

// MarshalJSON encodes the current state as a JSON object.
func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}
