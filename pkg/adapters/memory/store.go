// Package memory keeps sessions in process memory. It suits a single server
// and tests; sessions are lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

type entry struct {
	session *domain.Session
	expires time.Time // zero: never
}

// Store implements ports.SessionStore in memory.
// Safe for concurrent use. Sessions are copied on the way in and out.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Store)

// WithTTL expires sessions ttl after their last save. Zero keeps them.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock sets the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) expired(e entry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

// Save stores a copy of the session and refreshes its expiry.
func (s *Store) Save(_ context.Context, session *domain.Session) error {
	e := entry{session: session.Clone()}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[session.ID] = e
	s.mu.Unlock()
	return nil
}

// Load returns a copy of a live session.
func (s *Store) Load(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return nil, domain.ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

// List drops expired sessions and returns the rest in ID order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.entries))
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
