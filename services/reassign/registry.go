package reassign

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"counsellor-console/errors"
	"counsellor-console/logger"
	"counsellor-console/models"
)

// Registry keeps the open sessions and evicts the idle ones.
type Registry struct {
	fetcher    *Fetcher
	dispatcher *Dispatcher
	ttl        time.Duration
	now        func() time.Time
	newID      func() string

	mu       sync.Mutex
	sessions map[string]*Session
}

type RegistryOption func(*Registry)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithIDs replaces the session id generator.
func WithIDs(newID func() string) RegistryOption {
	return func(r *Registry) { r.newID = newID }
}

func NewRegistry(f *Fetcher, d *Dispatcher, ttl time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		fetcher:    f,
		dispatcher: d,
		ttl:        ttl,
		now:        time.Now,
		newID:      uuid.NewString,
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open creates a session and loads it. A fetch failure does not fail Open:
// the session is kept in fetch_failed so the caller can refresh it.
func (r *Registry) Open(ctx context.Context, studentIDs []models.ID) (*Session, error) {
	ids := dedupeIDs(studentIDs)
	if len(ids) == 0 {
		return nil, errors.E(errors.ValidationFailed, "select at least one student")
	}

	s := newSession(r.newID(), ids, r.fetcher, r.dispatcher, r.now)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		logger.Warn("session %s opened without journeys: %v", s.ID, err)
	} else {
		logger.Info("session %s opened for %d students", s.ID, len(ids))
	}
	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, errors.NewNotFoundError("session " + id + " not found")
	}
	return s, nil
}

// Close discards a session and cancels its in-flight calls.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError("session " + id + " not found")
	}
	s.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many went.
// Sessions with a dispatch in flight are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	var stale []*Session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleBefore(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		logger.Info("evicted %d idle reassignment sessions", len(stale))
	}
	return len(stale)
}

// Run sweeps periodically until ctx ends, then closes every session.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
