// Package session discovers the authenticated identity of the current user
// by probing client-side storage backends in a fixed priority order.
//
// A Resolver is configured with an ordered list of Store implementations.
// The first store that yields a live session wins; later stores are never
// consulted. Probing is strictly sequential so the priority order stays
// deterministic.
//
// # Usage
//
//	resolver := session.NewResolver(tabStore, persistentStore)
//	identity, err := resolver.Resolve(ctx)
//	if err != nil {
//	    // storage infrastructure failure
//	}
//	if identity == nil {
//	    // unauthenticated, not an error
//	}
//
// Sign-out clears every backend, not just the winning one:
//
//	_ = resolver.SignOutAll(ctx)
package session
