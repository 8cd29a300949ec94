// Package session tracks per-user conversation state: the bounded context
// window, the last answered query and the refinement budget spent on it.
package session

import (
	"context"
	"time"

	"iitubot/models"
)

// Session is the conversation state for one user. Stores pass sessions by
// value; mutate a copy and Save it back.
type Session struct {
	UserID       string        `json:"user_id"`
	RetryCount   int           `json:"retry_count"`
	LastQuery    string        `json:"last_query"`
	Context      []models.Turn `json:"context"`
	LastActivity time.Time     `json:"last_activity"`
}

// PushTurn appends a completed exchange, evicting the oldest turns so at
// most window remain. A window of zero or less keeps nothing.
func (s *Session) PushTurn(turn models.Turn, window int) {
	if window <= 0 {
		s.Context = nil
		return
	}
	s.Context = append(s.Context, turn)
	if excess := len(s.Context) - window; excess > 0 {
		s.Context = append([]models.Turn(nil), s.Context[excess:]...)
	}
}

// RecentTurns returns up to n of the most recent turns, oldest first.
func (s *Session) RecentTurns(n int) []models.Turn {
	if n <= 0 || len(s.Context) == 0 {
		return nil
	}
	if n > len(s.Context) {
		n = len(s.Context)
	}
	return s.Context[len(s.Context)-n:]
}

// Store persists sessions keyed by user ID.
type Store interface {
	// Ensure returns the session for userID, creating an empty one if
	// absent.
	Ensure(ctx context.Context, userID string) (Session, error)
	// Get returns the session for userID without creating one. The
	// second result reports whether it exists.
	Get(ctx context.Context, userID string) (Session, bool, error)
	// Save writes the session back, stamping LastActivity.
	Save(ctx context.Context, sess Session) error
	// Len reports the number of live sessions.
	Len(ctx context.Context) (int, error)
}
