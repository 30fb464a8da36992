package config

import "errors"

var (
	// ErrNilPointer is returned when Load receives a nil target.
	ErrNilPointer = errors.New("config: nil pointer")

	// ErrParsingConfig wraps environment parsing failures.
	ErrParsingConfig = errors.New("config: failed to parse environment")

	// ErrConfigNotLoaded means a previous Load for the same type failed and
	// nothing is cached.
	ErrConfigNotLoaded = errors.New("config: not loaded")
)
