package session

import (
	"context"
	"errors"
	"log/slog"
)

// Identity is the result of a successful resolution pass: the winning
// session plus a handle to the backend it came from. Follow-up reads and
// the eventual sign-out should go through the originating store.
type Identity struct {
	Session *Session
	// Origin is the backend that produced the session. It acts as the
	// authenticated data-access handle for subsequent operations.
	Origin Store
}

// Resolver probes storage backends sequentially in the order they were
// registered. The first backend yielding a live session wins; sessions are
// never merged or de-duplicated across backends.
type Resolver struct {
	stores []Store
	log    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger attaches a logger for probe diagnostics.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// NewResolver creates a resolver over the given stores. Order matters:
// earlier stores take priority. Panics when no store is provided to fail
// fast during initialization.
func NewResolver(stores []Store, opts ...ResolverOption) *Resolver {
	if len(stores) == 0 {
		panic(ErrNoStores)
	}
	r := &Resolver{
		stores: stores,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve probes each backend in order and returns the first live session.
// An inaccessible backend is skipped, not fatal. When every probe comes up
// empty the result is (nil, nil): callers must treat that as
// "unauthenticated", not as an error. The probe is read-only.
func (r *Resolver) Resolve(ctx context.Context) (*Identity, error) {
	for _, store := range r.stores {
		s, err := store.Get(ctx)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				r.log.WarnContext(ctx, "session store probe failed",
					slog.String("store", store.Name()),
					slog.Any("error", err))
			}
			continue
		}
		if s.IsValid() {
			return &Identity{Session: s, Origin: store}, nil
		}
	}
	return nil, nil
}

// SignOutAll clears the session from every backend. Individual failures do
// not stop the pass; they are joined and returned at the end so the caller
// still knows cleanup was incomplete.
func (r *Resolver) SignOutAll(ctx context.Context) error {
	var errs []error
	for _, store := range r.stores {
		if err := store.Clear(ctx); err != nil {
			r.log.WarnContext(ctx, "session store clear failed",
				slog.String("store", store.Name()),
				slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
