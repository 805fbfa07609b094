package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/reportmerge/internal/inventory"
)

// session is one client's working state: its fragment inventory and the
// time it was last touched.
type session struct {
	ID        string
	Inventory *inventory.Inventory
	UpdatedAt time.Time
}

// SessionStore is a thread-safe in-memory session registry with TTL
// eviction.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	max      int
}

func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		max:      max,
	}
}

// Create registers a new empty session.
func (s *SessionStore) Create() (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.max {
		return nil, fmt.Errorf("session limit reached (%d)", s.max)
	}
	var b [12]byte
	rand.Read(b[:])
	sess := &session{
		ID:        hex.EncodeToString(b[:]),
		Inventory: inventory.New(),
		UpdatedAt: time.Now(),
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns a session by ID and refreshes its TTL, or nil.
func (s *SessionStore) Get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[id]
	if sess != nil {
		sess.UpdatedAt = time.Now()
	}
	return sess
}

// Cleanup removes expired sessions.
func (s *SessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// StartJanitor evicts expired sessions until ctx is done.
func (s *SessionStore) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}
