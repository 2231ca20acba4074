// Package session implements session memory: a process-wide mapping from
// session id to domain.Session with lazy creation, bounded history, and
// opportunistic idle-timeout eviction.
//
// Concurrency discipline: operations on a single session are serialised
// via a per-session lock; operations across sessions proceed in parallel.
// WithSession is the only mutation entry point.
package session

import (
	"context"
	"sync"
	"time"

	"zuscore/internal/domain"
	"zuscore/platform/logger"
)

// Store is the Session Memory contract. Implementations MUST guarantee that
// concurrent calls to WithSession for the same id observe either the pre- or
// post-state of any other in-flight call for that id, never a partial write.
type Store interface {
	// WithSession looks up or lazily creates the session for id, runs fn
	// while holding that session's exclusive lock, stamps UpdatedAt, sweeps
	// idle sessions opportunistically, and returns a point-in-time copy of
	// the session after fn ran.
	WithSession(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error)
	// Len reports the number of live sessions, for administrative/debug use.
	Len() int
}

type entry struct {
	mu      sync.Mutex
	session *domain.Session
}

// InMemoryStore is the default Store backend: a single map with one lock per
// session entry, kept entirely in process memory.
type InMemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	idleTimeout time.Duration
	now         func() time.Time
	log         *logger.Logger
}

// NewInMemoryStore creates an in-process Store. idleTimeout is the
// eviction window measured against a session's last update; the history
// and entity bounds live with the engine, which applies them per write.
func NewInMemoryStore(idleTimeout time.Duration, log *logger.Logger) *InMemoryStore {
	return &InMemoryStore{
		sessions:    make(map[string]*entry),
		idleTimeout: idleTimeout,
		now:         time.Now,
		log:         log,
	}
}

// WithClock overrides the store's time source, for deterministic tests.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

func (s *InMemoryStore) getOrCreate(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		e = &entry{session: domain.NewSession(id, s.now())}
		s.sessions[id] = e
	}
	return e
}

// WithSession implements Store.
func (s *InMemoryStore) WithSession(_ context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	e := s.getOrCreate(id)

	e.mu.Lock()
	err := fn(e.session)
	e.session.UpdatedAt = s.now()
	snapshot := *e.session
	e.mu.Unlock()

	s.evict()

	return snapshot, err
}

// Len implements Store.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evict sweeps sessions whose UpdatedAt is older than idleTimeout. A session
// whose entry lock cannot be acquired immediately is being mutated by an
// in-flight turn and is skipped for this sweep.
func (s *InMemoryStore) evict() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		idle := now.Sub(e.session.UpdatedAt)
		expired := s.idleTimeout > 0 && idle > s.idleTimeout
		e.mu.Unlock()

		if expired {
			delete(s.sessions, id)
			if s.log != nil {
				s.log.SessionEvicted(id, idle.Seconds())
			}
		}
	}
}
