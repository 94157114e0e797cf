// Package idempotency keeps short-lived results keyed by a correlation key so
// that retried or concurrent requests reuse the first outcome instead of
// repeating its side effect.
package idempotency

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTTL is how long a record stays live.
const DefaultTTL = 300 * time.Second

// ErrReleased is returned by Entry.Wait when the holder gave the key up
// without producing a result.
var ErrReleased = errors.New("idempotency key released without result")

type state int

const (
	statePending state = iota
	stateDone
	stateReleased
)

// Entry is one record. Fields are guarded by the store mutex until done is
// closed; after that they are immutable.
type Entry struct {
	Key       string
	CreatedAt time.Time

	result string
	state  state
	done   chan struct{}
}

// Wait blocks until the entry is completed or released, or ctx ends.
func (e *Entry) Wait(ctx context.Context) (string, error) {
	select {
	case <-e.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if e.state != stateDone {
		return "", ErrReleased
	}
	return e.result, nil
}

// Done reports whether a result is available without blocking.
func (e *Entry) Done() (string, bool) {
	select {
	case <-e.done:
		return e.result, e.state == stateDone
	default:
		return "", false
	}
}

// Store is an in-memory, TTL bounded record map. All methods are safe for
// concurrent use; one mutex covers every read and write.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the stored result for key if it is live and complete.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(s.now())
	e, ok := s.entries[key]
	if !ok || e.state != stateDone {
		return "", false
	}
	return e.result, true
}

// Put stores result unless a live entry already owns key. It returns the
// live result and whether this call wrote it. An in-flight claim counts as
// live; in that case the returned result is empty.
func (s *Store) Put(key, result string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	if e, ok := s.entries[key]; ok {
		return e.result, false
	}

	e := &Entry{Key: key, CreatedAt: now, result: result, state: stateDone, done: make(chan struct{})}
	close(e.done)
	s.entries[key] = e
	return result, true
}

// Claim reserves key for the caller. When claimed is false the returned
// entry belongs to someone else; it is either complete or can be waited on.
func (s *Store) Claim(key string) (entry *Entry, claimed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	if e, ok := s.entries[key]; ok {
		return e, false
	}

	e := &Entry{Key: key, CreatedAt: now, state: statePending, done: make(chan struct{})}
	s.entries[key] = e
	return e, true
}

// Complete records the result of a claim held through e and wakes waiters.
// It is a no-op once e no longer owns its key, for example after the claim
// outlived the TTL and someone else claimed the key.
func (s *Store) Complete(e *Entry, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownsLocked(e) {
		return
	}
	e.result = result
	e.state = stateDone
	close(e.done)
}

// Release drops the pending claim held through e so a later request may
// retry the effect. A stale e never touches a newer claim on the same key.
func (s *Store) Release(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownsLocked(e) {
		return
	}
	e.state = stateReleased
	close(e.done)
	delete(s.entries, e.Key)
}

func (s *Store) ownsLocked(e *Entry) bool {
	return e != nil && e.state == statePending && s.entries[e.Key] == e
}

// Sweep removes every entry older than the TTL.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for key, e := range s.entries {
		if now.Sub(e.CreatedAt) < s.ttl {
			continue
		}
		if e.state == statePending {
			e.state = stateReleased
			close(e.done)
		}
		delete(s.entries, key)
		removed++
	}
	return removed
}
