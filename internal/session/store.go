package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytsafecheck/backend/internal/logger"
	"github.com/ytsafecheck/backend/internal/safety"
)

const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	janitorInterval = time.Minute
)

// Metrics records session activity. *metrics.Metrics implements it.
type Metrics interface {
	SetActiveSessions(n int)
	RecordSubmission(outcome string)
}

// StoreConfig configures a Store.
type StoreConfig struct {
	TTL      time.Duration
	Notifier Notifier
	Metrics  Metrics
}

// Store keeps sessions in memory and evicts idle ones.
type Store struct {
	checker  safety.Checker
	notifier Notifier
	metrics  Metrics
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a session store whose sessions check with checker.
func NewStore(checker safety.Checker, cfg StoreConfig) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		checker:  checker,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		ttl:      ttl,
		now:      time.Now,
		log:      logger.Default().WithComponent("session"),
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session.
func (st *Store) Create() *Session {
	s := newSession(uuid.NewString(), st.checker, st.notifier, st.now)

	st.mu.Lock()
	st.sessions[s.id] = s
	n := len(st.sessions)
	st.mu.Unlock()

	st.reportActive(n)
	return s
}

// Get returns the session with the given ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if ok {
		st.reportActive(n)
	}
	return ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Submit runs a submission on the session and records its outcome.
func (st *Store) Submit(ctx context.Context, s *Session, rawURL string) *Outcome {
	out := s.Submit(ctx, rawURL)
	if st.metrics != nil {
		st.metrics.RecordSubmission(string(out.Kind))
	}
	return out
}

// Run evicts idle sessions until ctx is done.
func (st *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.EvictIdle(); n > 0 {
				st.log.Debug(ctx, "evicted idle sessions", map[string]any{"count": n})
			}
		}
	}
}

// EvictIdle removes sessions untouched for longer than the TTL. Sessions
// with a check in flight are kept.
func (st *Store) EvictIdle() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	evicted := 0
	for id, s := range st.sessions {
		updated, busy := s.lastActive()
		if !busy && updated.Before(cutoff) {
			delete(st.sessions, id)
			evicted++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	if evicted > 0 {
		st.reportActive(n)
	}
	return evicted
}

func (st *Store) reportActive(n int) {
	if st.metrics != nil {
		st.metrics.SetActiveSessions(n)
	}
}
