package redis

import "errors"

var (
	// ErrInvalidConnectionURL means the connection URL could not be parsed.
	ErrInvalidConnectionURL = errors.New("redis: invalid connection url")
	// ErrNotReady means the server did not answer a ping within the
	// configured attempts.
	ErrNotReady = errors.New("redis: server not ready")
)
