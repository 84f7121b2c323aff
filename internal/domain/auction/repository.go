package auction

import "context"

// Repository stores the live session. Dispose and Navigate mutate the
// session in place, so every read or transition of live state runs inside
// Update, which holds the session exclusively for the callback.
type Repository interface {
	// Save registers the session as the current one.
	Save(ctx context.Context, session *Session) error
	// Update runs fn with exclusive access to the current session and
	// reports false when no auction has been started.
	Update(ctx context.Context, fn func(*Session) error) (bool, error)
}
