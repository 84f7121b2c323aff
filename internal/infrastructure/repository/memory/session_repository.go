package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/Devansh171021/swpl/internal/domain/auction"
)

// SessionRepository keeps the live auction session. net/http serves
// requests concurrently, so the session is never handed out directly:
// callers mutate and read it through Update while the repository lock is
// held.
type SessionRepository struct {
	mu      sync.Mutex
	current *auction.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// Save replaces the current session. Starting a new auction discards the
// previous one.
func (r *SessionRepository) Save(_ context.Context, session *auction.Session) error {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = session

	return nil
}

// Update runs fn with the current session under the repository lock.
func (r *SessionRepository) Update(_ context.Context, fn func(*auction.Session) error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return false, nil
	}

	return true, fn(r.current)
}
