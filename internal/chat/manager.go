// Session manager.
//
// Sessions are ephemeral and keyed by an opaque ID handed to the client when
// it opens the chat. Idle sessions are evicted opportunistically during
// lookups so memory stays bounded without a background goroutine.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager tracks live sessions by ID. Safe for concurrent use.
type Manager struct {
	load Loader
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session

	ttl      time.Duration
	lookupsN uint64
}

// NewManager constructs a Manager that creates sessions with the given
// loader and options. Idle sessions are evicted after ttl (values <= 0
// default to 30 minutes).
func NewManager(load Loader, opts Options, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		load:     load,
		opts:     opts,
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Open creates and opens a new session and returns its ID.
func (m *Manager) Open(ctx context.Context) (string, *Session) {
	s := NewSession(m.load, m.opts)
	s.Open(ctx)

	id := uuid.NewString()
	m.mu.Lock()
	m.evictIdleLocked(time.Now())
	m.sessions[id] = s
	m.mu.Unlock()
	return id, s
}

// Get returns the session for id, or nil when unknown or already evicted.
func (m *Manager) Get(id string) *Session {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	// Opportunistic cleanup after a threshold of lookups, before touching
	// the requested entry, so an idle session can be evicted even when it is
	// the one being fetched.
	m.lookupsN++
	if m.lookupsN >= 1000 {
		m.evictIdleLocked(now)
		m.lookupsN = 0
	}

	s := m.sessions[id]
	if s == nil {
		return nil
	}
	s.mu.Lock()
	idle := now.Sub(s.lastSeen)
	s.mu.Unlock()
	if idle >= m.ttl {
		s.Close()
		delete(m.sessions, id)
		return nil
	}
	return s
}

// Close shuts and forgets the session for id. Unknown IDs are a no-op, so
// the operation is idempotent.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

// Len reports the number of live sessions (for metrics and tests).
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) evictIdleLocked(now time.Time) {
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen)
		s.mu.Unlock()
		if idle >= m.ttl {
			s.Close()
			delete(m.sessions, id)
		}
	}
}
