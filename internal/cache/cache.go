// Package cache provides an in-memory snapshot store for computed
// dashboard data. Pipeline runs are expensive (two feed reads plus the
// full transform), so concurrent requests for the same key share one
// computation and subsequent requests within the TTL get the stored
// snapshot.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// FillFunc computes a fresh value when the store has no live entry.
type FillFunc[T any] func(ctx context.Context) (T, error)

// Snapshot wraps a cached value with its provenance.
type Snapshot[T any] struct {
	ID         string    `json:"snapshot_id"`
	ComputedAt time.Time `json:"computed_at"`
	Value      T         `json:"value"`
}

type entry[T any] struct {
	snapshot Snapshot[T]
	expires  time.Time
}

// Store is a TTL cache keyed by string. Expired entries are replaced on
// the next Get; there is no background sweeper because the key space is
// tiny (one entry per dashboard view).
type Store[T any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry[T]
}

// NewStore creates a store with the given entry lifetime. A zero or
// negative TTL disables reuse: every Get recomputes.
func NewStore[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the live snapshot for key, computing one with fill if the
// entry is missing or expired. Concurrent callers with the same key
// share a single fill; an error from fill is returned to all of them and
// nothing is stored.
func (s *Store[T]) Get(ctx context.Context, key string, fill FillFunc[T]) (Snapshot[T], error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok && s.now().Before(e.expires) {
		return e.snapshot, nil
	}

	return s.compute(ctx, key, fill)
}

// Refresh recomputes the entry unconditionally, replacing whatever is
// stored. Used by the manual refresh endpoint and the scheduler.
func (s *Store[T]) Refresh(ctx context.Context, key string, fill FillFunc[T]) (Snapshot[T], error) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	return s.compute(ctx, key, fill)
}

// Peek returns the stored snapshot without filling, along with whether a
// live entry exists.
func (s *Store[T]) Peek(key string) (Snapshot[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expires) {
		return Snapshot[T]{}, false
	}
	return e.snapshot, true
}

func (s *Store[T]) compute(ctx context.Context, key string, fill FillFunc[T]) (Snapshot[T], error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// stored a fresh entry while this one waited.
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		if ok && s.now().Before(e.expires) {
			return e.snapshot, nil
		}

		value, err := fill(ctx)
		if err != nil {
			return nil, err
		}

		snapshot := Snapshot[T]{
			ID:         uuid.New().String(),
			ComputedAt: s.now(),
			Value:      value,
		}
		if s.ttl > 0 {
			s.mu.Lock()
			s.entries[key] = entry[T]{snapshot: snapshot, expires: s.now().Add(s.ttl)}
			s.mu.Unlock()
		}
		return snapshot, nil
	})
	if err != nil {
		return Snapshot[T]{}, err
	}
	return v.(Snapshot[T]), nil
}

// ContentKey derives a cache key from the inputs that define a snapshot,
// so a changed feed path or semester never serves a stale entry.
func ContentKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
