// Package cache provides the in-process response cache used by the
// HTTP middleware.  The store is an explicitly constructed instance
// handed to the middleware and to the admin settings handler; there
// is no package-level state.  Invalidation is deliberately coarse:
// any mutating request flushes every entry, trading hit rate for a
// guarantee that stale cross-entity aggregates are never served.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Entry is a memoized HTTP response body.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

type record struct {
	entry     Entry
	expiresAt time.Time
}

// Store is a mutex-guarded key -> (entry, expiry) map with lazy
// eviction: entries past their expiry are treated as absent and
// removed on the next read, there is no background sweep.
type Store struct {
	mu      sync.Mutex
	entries map[string]record
	enabled atomic.Bool

	now func() time.Time // injectable clock for tests
}

// New constructs a Store.  enabled mirrors the cacheService toggle at
// startup; the admin settings handler flips it at runtime via
// SetEnabled.
func New(enabled bool) *Store {
	s := &Store{
		entries: make(map[string]record),
		now:     time.Now,
	}
	s.enabled.Store(enabled)
	return s
}

// Enabled reports whether the cache is live.
func (s *Store) Enabled() bool {
	return s.enabled.Load()
}

// SetEnabled flips the live gate.  Turning the cache off flushes all
// entries so that re-enabling later never serves pre-toggle data.
func (s *Store) SetEnabled(on bool) {
	s.enabled.Store(on)
	if !on {
		s.InvalidateAll()
	}
}

// Get returns the entry under key if it has not expired.  Expired
// entries are removed and reported as absent.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	if !s.now().Before(rec.expiresAt) {
		delete(s.entries, key)
		return Entry{}, false
	}
	return rec.entry, true
}

// Set stores entry under key with the given TTL, overwriting any
// existing entry for that key.  Non-positive TTLs are ignored.
func (s *Store) Set(key string, e Entry, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = record{entry: e, expiresAt: s.now().Add(ttl)}
}

// InvalidateAll clears every entry unconditionally.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]record)
}

// Len reports the number of stored entries, expired or not.  Used by
// tests and observability endpoints.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
