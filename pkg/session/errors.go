package session

import "errors"

var (
	ErrInvalidSession  = errors.New("invalid session")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrNoStores        = errors.New("at least one session store is required")
)
