// Package inmemory is the default session store: a mutex-guarded map with
// an optional LRU cap on the number of live sessions.
package inmemory

import (
	"context"
	"sync"
	"time"

	"iitubot/session"
)

// Store keeps sessions in process memory. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]session.Session
	maxSessions int
}

// New returns an empty store. maxSessions caps the number of live
// sessions, evicting the least recently active; 0 means unbounded.
func New(maxSessions int) *Store {
	return &Store{
		sessions:    make(map[string]session.Session),
		maxSessions: maxSessions,
	}
}

// Ensure returns the session for userID, creating an empty one if absent.
func (s *Store) Ensure(_ context.Context, userID string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}

	sess := session.Session{UserID: userID, LastActivity: time.Now()}
	s.sessions[userID] = sess
	s.evictLocked()
	return sess, nil
}

// Get returns the session for userID without creating one.
func (s *Store) Get(_ context.Context, userID string) (session.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok, nil
}

// Save writes the session back, stamping LastActivity.
func (s *Store) Save(_ context.Context, sess session.Session) error {
	sess.LastActivity = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
	s.evictLocked()
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// evictLocked drops the least recently active sessions until the cap is
// respected. Caller holds the write lock.
func (s *Store) evictLocked() {
	if s.maxSessions <= 0 {
		return
	}
	for len(s.sessions) > s.maxSessions {
		var oldestID string
		var oldestAt time.Time
		first := true
		for id, sess := range s.sessions {
			if first || sess.LastActivity.Before(oldestAt) {
				oldestID = id
				oldestAt = sess.LastActivity
				first = false
			}
		}
		delete(s.sessions, oldestID)
	}
}
