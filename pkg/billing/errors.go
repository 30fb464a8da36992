package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStoredCard signals the charge endpoint found no card on file for
	// the user. This is the recoverable not-found condition: callers fall
	// back to the card-registration flow instead of surfacing an error.
	ErrNoStoredCard = errors.New("no stored payment method")

	ErrMissingSubscriptionID = errors.New("provider subscription id is required")
	ErrMissingUserID         = errors.New("user id is required")
	ErrNoApprovalURL         = errors.New("no approval URL returned from gateway")
	ErrUnknownProvider       = errors.New("billing provider could not be determined")
)

// ProviderError is a non-2xx response from a billing endpoint, carrying the
// HTTP status and the human-readable message extracted from the body.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billing endpoint returned status %d", e.Status)
	}
	return e.Message
}

// UserCancellationError marks an operation the user deliberately abandoned
// in the payment SDK. The flag is set at the call site that talks to the
// SDK, never inferred downstream from message text.
type UserCancellationError struct {
	Err error
}

func (e *UserCancellationError) Error() string {
	if e.Err == nil {
		return "cancelled by user"
	}
	return e.Err.Error()
}

func (e *UserCancellationError) Unwrap() error { return e.Err }

// IsUserCancellation reports whether err carries the user-cancellation kind.
func IsUserCancellation(err error) bool {
	var cancelled *UserCancellationError
	return errors.As(err, &cancelled)
}
