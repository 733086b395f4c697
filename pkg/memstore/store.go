/*
 * MIT License
 * Copyright (c) 2026 Crrow
 */

package memstore

import (
	"sort"
	"sync"
	"time"
)

type item struct {
	value    string
	expireAt time.Time // zero means no expiry
}

func (it item) expired(now time.Time) bool {
	return !it.expireAt.IsZero() && !now.Before(it.expireAt)
}

// Store provides thread-safe in-memory key/value storage with expiry.
// Expired keys are removed lazily when touched.
type Store struct {
	mu  sync.Mutex
	kv  map[string]item
	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{kv: make(map[string]item), now: time.Now}
}

// lookup returns the live item for key. Callers hold s.mu.
func (s *Store) lookup(key string) (item, bool) {
	it, ok := s.kv[key]
	if !ok {
		return item{}, false
	}
	if it.expired(s.now()) {
		delete(s.kv, key)
		return item{}, false
	}
	return it, true
}

// Get returns value for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.lookup(key)
	return it.value, ok
}

// Set stores value for key. A positive ttl sets an expiry, otherwise any
// previous expiry is cleared.
func (s *Store) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := item{value: value}
	if ttl > 0 {
		it.expireAt = s.now().Add(ttl)
	}
	s.kv[key] = it
}

// Del deletes keys and returns number of removed keys.
func (s *Store) Del(keys ...string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := int64(0)
	for _, key := range keys {
		if _, ok := s.lookup(key); ok {
			delete(s.kv, key)
			deleted++
		}
	}
	return deleted
}

// Exists returns how many of keys are present.
func (s *Store) Exists(keys ...string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(0)
	for _, key := range keys {
		if _, ok := s.lookup(key); ok {
			n++
		}
	}
	return n
}

// TTL returns the remaining lifetime of key in whole seconds, rounded to the
// nearest second. It returns -2 for a missing key and -1 for a key without
// expiry.
func (s *Store) TTL(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.lookup(key)
	switch {
	case !ok:
		return -2
	case it.expireAt.IsZero():
		return -1
	}
	ms := it.expireAt.Sub(s.now()).Milliseconds()
	return (ms + 500) / 1000
}

// Keys returns the sorted live keys matching a glob pattern.
func (s *Store) Keys(pattern string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0)
	for key := range s.kv {
		if _, ok := s.lookup(key); !ok {
			continue
		}
		if globMatch(pattern, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Flush removes every key.
func (s *Store) Flush() {
	s.mu.Lock()
	s.kv = make(map[string]item)
	s.mu.Unlock()
}

// Len returns the number of live keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key := range s.kv {
		if _, ok := s.lookup(key); ok {
			n++
		}
	}
	return n
}
