package lifecycle

import "errors"

var (
	// ErrNotFound is returned by Source implementations when no row exists
	// for the user. The loader treats it as "free plan", not as a failure.
	ErrNotFound = errors.New("lifecycle: not found")

	// ErrNoSubscription means the action needs an active paid subscription
	// and the user has none.
	ErrNoSubscription = errors.New("lifecycle: no active subscription")

	// ErrNotDowngradable means the requested downgrade pair is not served
	// by the scheduled-downgrade path.
	ErrNotDowngradable = errors.New("lifecycle: plan change is not a scheduled downgrade")

	// ErrNoPendingDowngrade means there is nothing scheduled to cancel.
	ErrNoPendingDowngrade = errors.New("lifecycle: no pending downgrade")

	// ErrDowngradePending blocks actions that conflict with a scheduled
	// downgrade, such as refund requests.
	ErrDowngradePending = errors.New("lifecycle: a downgrade is already scheduled")

	// ErrConfirmationRequired means the caller must pass explicit user
	// confirmation before the subscription can be cancelled.
	ErrConfirmationRequired = errors.New("lifecycle: explicit confirmation required")

	// ErrAlreadyCancelled means the subscription is already on a
	// cancellation path and the action is unavailable.
	ErrAlreadyCancelled = errors.New("lifecycle: subscription already cancelled")

	// ErrReasonTooShort rejects refund requests whose reason does not meet
	// the minimum length.
	ErrReasonTooShort = errors.New("lifecycle: refund reason too short")

	// ErrUnroutableProvider means no gateway could be resolved for the
	// subscription, so gateway-specific actions cannot be dispatched.
	ErrUnroutableProvider = errors.New("lifecycle: subscription provider could not be resolved")
)
