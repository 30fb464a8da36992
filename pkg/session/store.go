package session

import "context"

// Store is a single client-side storage backend holding at most one current
// session. Implementations map onto browser storage scopes: a short-lived
// tab-scoped store and a persistent store.
type Store interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string

	// Get returns the currently stored session. Returns ErrSessionNotFound
	// when the backend holds no session and ErrSessionExpired when the
	// stored session's token is no longer valid.
	Get(ctx context.Context) (*Session, error)

	// Set replaces the stored session.
	Set(ctx context.Context, s *Session) error

	// Clear removes the stored session. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
