package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSubscriptionNotFound means the backend has no subscription row for
// the user. Callers treat it as "free plan", not as a failure.
var ErrSubscriptionNotFound = errors.New("billing: subscription not found")

// SubscriptionRow is the raw subscription record as served by the backend.
type SubscriptionRow struct {
	ID                     string `json:"id"`
	UserID                 string `json:"user_id"`
	PlanSlug               string `json:"plan_slug"`
	Status                 string `json:"status"`
	Provider               string `json:"provider"`
	ProviderSubscriptionID string `json:"provider_subscription_id"`
	CreditsTotal           int64  `json:"credits_total"`
	CreditsUsed            int64  `json:"credits_used"`
	CurrentPeriodEnd       string `json:"current_period_end"`
	CancelAtPeriodEnd      bool   `json:"cancel_at_period_end"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}

// PendingPlanRow is a purchased-but-not-applied plan change row.
type PendingPlanRow struct {
	UserID      string `json:"user_id"`
	PlanSlug    string `json:"plan_slug"`
	Status      string `json:"status"`
	EffectiveAt string `json:"effective_at"`
	CreatedAt   string `json:"created_at"`
}

// Subscription fetches the user's subscription row. A 404 maps to
// ErrSubscriptionNotFound.
func (c *Client) Subscription(ctx context.Context, userID string) (*SubscriptionRow, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	result, err := c.get(ctx, "/api/subscriptions/me", userID)
	if err != nil {
		return nil, err
	}
	if result.Status == http.StatusNotFound {
		return nil, ErrSubscriptionNotFound
	}
	if err := result.asError(); err != nil {
		return nil, err
	}

	row := &SubscriptionRow{}
	if err := result.decodeField("subscription", row); err != nil {
		return nil, err
	}
	return row, nil
}

// PendingPlan fetches the latest pending plan assignment. A 404, or a 2xx
// with no row in the body, maps to ErrSubscriptionNotFound.
func (c *Client) PendingPlan(ctx context.Context, userID string) (*PendingPlanRow, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	result, err := c.get(ctx, "/api/subscriptions/pending", userID)
	if err != nil {
		return nil, err
	}
	if result.Status == http.StatusNotFound {
		return nil, ErrSubscriptionNotFound
	}
	if err := result.asError(); err != nil {
		return nil, err
	}
	if _, ok := result.Data["pending"]; !ok {
		return nil, ErrSubscriptionNotFound
	}

	row := &PendingPlanRow{}
	if err := result.decodeField("pending", row); err != nil {
		return nil, err
	}
	return row, nil
}

// decodeField re-marshals one field of the result data into a typed value.
func (r *Result) decodeField(key string, out any) error {
	value, ok := r.Data[key]
	if !ok || value == nil {
		return fmt.Errorf("billing: response field %q missing", key)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("billing: encode field %q: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("billing: decode field %q: %w", key, err)
	}
	return nil
}
