package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Status is the subscription row status as stored by the backend.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrialing  Status = "trialing"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Terminal reports whether the subscription is on a cancellation path and
// cancellation-style actions are no longer available.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// Billed reports whether the status represents a subscription the user is
// currently entitled to.
func (s Status) Billed() bool {
	return s == StatusActive || s == StatusTrialing || s == StatusPastDue
}

// SubscriptionRecord is one subscription row. Provider and
// ProviderSubscriptionID are the raw stored fields; the resolved gateway
// reference lives on the Summary, built exactly once by the loader.
type SubscriptionRecord struct {
	ID                     uuid.UUID
	UserID                 uuid.UUID
	PlanSlug               string
	Status                 Status
	Provider               string
	ProviderSubscriptionID string
	CreditsTotal           int64
	CreditsUsed            int64
	CurrentPeriodEnd       time.Time
	CancelAtPeriodEnd      bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CreditsRemaining never reports negative credit: an over-consumed row
// clamps to zero instead of leaking a negative balance into the UI.
func (r *SubscriptionRecord) CreditsRemaining() int64 {
	remaining := r.CreditsTotal - r.CreditsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PendingPlanAssignment is a plan change already purchased but not yet
// reflected in the subscription row, e.g. while a payment webhook is still
// in flight or a downgrade waits for the period boundary.
type PendingPlanAssignment struct {
	UserID      uuid.UUID
	PlanSlug    string
	EffectiveAt time.Time
	CreatedAt   time.Time
}
