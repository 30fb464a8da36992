package billing

import (
	"context"
)

// PayPalGateway exposes the subscription-style billing operations. All
// existing-subscription calls require the provider subscription id; the
// creation step additionally needs a return/cancel URL pair for the hosted
// approval flow.
type PayPalGateway struct {
	client *Client
}

// NewPayPalGateway creates the PayPal operation set over the shared client.
func NewPayPalGateway(client *Client) *PayPalGateway {
	if client == nil {
		panic("billing: client is required")
	}
	return &PayPalGateway{client: client}
}

// GatewayPlan is a plan definition as published by the gateway.
type GatewayPlan struct {
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
}

// ListPlans returns the plan definitions configured at the gateway.
func (g *PayPalGateway) ListPlans(ctx context.Context) ([]GatewayPlan, error) {
	result, err := g.client.get(ctx, "/api/payments/paypal/plans", "")
	if err != nil {
		return nil, err
	}
	if err := result.asError(); err != nil {
		return nil, err
	}

	raw, _ := result.Data["plans"].([]any)
	plans := make([]GatewayPlan, 0, len(raw))
	for _, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		plan := GatewayPlan{}
		plan.Slug, _ = fields["slug"].(string)
		plan.Name, _ = fields["name"].(string)
		plan.Price, _ = fields["price"].(float64)
		plan.Currency, _ = fields["currency"].(string)
		plan.Interval, _ = fields["interval"].(string)
		if plan.Slug != "" {
			plans = append(plans, plan)
		}
	}
	return plans, nil
}

// CreateSubscription starts the hosted approval flow and returns the
// approval URL the user must be redirected to.
func (g *PayPalGateway) CreateSubscription(ctx context.Context, userID, planSlug, returnURL, cancelURL string) (string, error) {
	if userID == "" {
		return "", ErrMissingUserID
	}
	result, err := g.client.post(ctx, "/api/payments/paypal/create-subscription", userID, map[string]string{
		"plan_slug":  planSlug,
		"return_url": returnURL,
		"cancel_url": cancelURL,
	})
	if err != nil {
		return "", err
	}
	if err := result.asError(); err != nil {
		return "", err
	}

	approvalURL := result.stringField("approval_url")
	if approvalURL == "" {
		return "", ErrNoApprovalURL
	}
	return approvalURL, nil
}

// ConfirmSubscription finalizes an approved subscription after the user
// returns from the hosted flow.
func (g *PayPalGateway) ConfirmSubscription(ctx context.Context, userID, subscriptionID string) (*Result, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if subscriptionID == "" {
		return nil, ErrMissingSubscriptionID
	}
	result, err := g.client.post(ctx, "/api/payments/paypal/confirm", userID, map[string]string{
		"subscription_id": subscriptionID,
	})
	if err != nil {
		return nil, err
	}
	if err := result.asError(); err != nil {
		return result, err
	}
	return result, nil
}

// UpgradeSubscription moves the subscription to a higher tier; the gateway
// prorates the difference.
func (g *PayPalGateway) UpgradeSubscription(ctx context.Context, userID, subscriptionID, planSlug string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if subscriptionID == "" {
		return ErrMissingSubscriptionID
	}
	result, err := g.client.post(ctx, "/api/payments/paypal/upgrade", userID, map[string]string{
		"subscription_id": subscriptionID,
		"plan_slug":       planSlug,
	})
	if err != nil {
		return err
	}
	return result.asError()
}

// ScheduleDowngrade defers a plan change to the next billing cycle.
func (g *PayPalGateway) ScheduleDowngrade(ctx context.Context, userID, subscriptionID, targetPlanSlug string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if subscriptionID == "" {
		return ErrMissingSubscriptionID
	}
	result, err := g.client.post(ctx, "/api/payments/paypal/downgrade", userID, map[string]string{
		"subscription_id":  subscriptionID,
		"target_plan_slug": targetPlanSlug,
	})
	if err != nil {
		return err
	}
	return result.asError()
}

// CancelDowngrade removes a previously scheduled downgrade.
func (g *PayPalGateway) CancelDowngrade(ctx context.Context, userID, subscriptionID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if subscriptionID == "" {
		return ErrMissingSubscriptionID
	}
	result, err := g.client.post(ctx, "/api/payments/paypal/cancel-downgrade", userID, map[string]string{
		"subscription_id": subscriptionID,
	})
	if err != nil {
		return err
	}
	return result.asError()
}

// CancelSubscription stops the recurring billing for the account.
func (g *PayPalGateway) CancelSubscription(ctx context.Context, userID, subscriptionID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if subscriptionID == "" {
		return ErrMissingSubscriptionID
	}
	result, err := g.client.post(ctx, "/api/payments/paypal/cancel-subscription", userID, map[string]string{
		"subscription_id": subscriptionID,
	})
	if err != nil {
		return err
	}
	return result.asError()
}
