// internal/session/memory.go
//
// In-memory implementation of the session.Store interface.
// Used when server-side sessions are preferred over signed cookies.
//
// Characteristics:
//   - Rounds keyed by an opaque visitor ID carried in a cookie.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Entries idle longer than the TTL are dropped by Prune/Run.

package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guess/internal/game"
)

// memoryEntry is one visitor's stored round.
type memoryEntry struct {
	round   game.Round
	touched time.Time
}

// MemoryStore is a map-based Store implementation.
type MemoryStore struct {
	opts Options
	now  func() time.Time

	mu      sync.RWMutex            // guards entries
	entries map[string]*memoryEntry // keyed by visitor ID
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:    opts,
		now:     time.Now,
		entries: make(map[string]*memoryEntry),
	}
}

// Load returns a copy of the visitor's round, if any and not expired.
func (m *MemoryStore) Load(r *http.Request) (game.Session, error) {
	id := visitorID(r, m.opts.CookieName)
	if id == "" {
		return game.Session{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok || m.expired(e) {
		return game.Session{}, nil
	}
	round := e.round
	return game.Session{Round: &round}, nil
}

// Save stores a copy of the round, or drops the entry when the round ended.
// Visitors without a known ID get a fresh one; client-chosen IDs are never adopted.
func (m *MemoryStore) Save(w http.ResponseWriter, r *http.Request, s game.Session) error {
	id := visitorID(r, m.opts.CookieName)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, known := m.entries[id]
	if !s.InProgress() {
		if known {
			delete(m.entries, id)
		}
		return nil
	}
	if !known {
		id = genID()
		m.opts.setCookie(w, id, 0)
	}
	m.entries[id] = &memoryEntry{round: *s.Round, touched: m.now()}
	return nil
}

// Prune removes entries idle longer than the TTL and returns how many were dropped.
func (m *MemoryStore) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// Len reports the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Run calls Prune every interval until ctx is cancelled.
func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Prune(); n > 0 {
				log.Debug().Int("pruned", n).Msg("expired sessions removed")
			}
		}
	}
}

// expired must be called with mu held.
func (m *MemoryStore) expired(e *memoryEntry) bool {
	return m.opts.TTL > 0 && m.now().Sub(e.touched) > m.opts.TTL
}

func visitorID(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}
