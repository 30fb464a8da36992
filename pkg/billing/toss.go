package billing

import (
	"context"
	"errors"
	"net/http"
)

// TossGateway exposes the card-on-file billing operations. A billing key
// issued once enables subsequent fixed-amount charges without re-entering
// card data.
type TossGateway struct {
	client *Client
}

// NewTossGateway creates the Toss operation set over the shared client.
func NewTossGateway(client *Client) *TossGateway {
	if client == nil {
		panic("billing: client is required")
	}
	return &TossGateway{client: client}
}

// IssueRequest registers a card and performs the first charge. AuthKey and
// CustomerKey come from the card-registration callback query parameters.
type IssueRequest struct {
	AuthKey       string `json:"auth_key"`
	CustomerKey   string `json:"customer_key"`
	PlanSlug      string `json:"plan_slug"`
	Amount        int64  `json:"amount,omitempty"`
	OrderName     string `json:"order_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
}

// AuthSetupRequest registers the intent to open the hosted card
// registration flow so the backend can validate the callback later.
type AuthSetupRequest struct {
	PlanSlug      string `json:"plan_slug"`
	Amount        int64  `json:"amount"`
	OrderName     string `json:"order_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	SuccessURL    string `json:"success_url"`
	FailURL       string `json:"fail_url"`
}

// PrepareBillingAuth announces an upcoming card registration to the
// backend before the hosted window opens.
func (g *TossGateway) PrepareBillingAuth(ctx context.Context, userID string, req AuthSetupRequest) error {
	if userID == "" {
		return ErrMissingUserID
	}
	result, err := g.client.post(ctx, "/api/payments/toss/billing/auth", userID, req)
	if err != nil {
		return err
	}
	return result.asError()
}

// IssueBillingKey registers the card-on-file and performs the first charge.
func (g *TossGateway) IssueBillingKey(ctx context.Context, userID string, req IssueRequest) (*Result, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	result, err := g.client.post(ctx, "/api/payments/toss/billing/issue", userID, req)
	if err != nil {
		return nil, err
	}
	if err := result.asError(); err != nil {
		return result, err
	}
	return result, nil
}

// ChargeStoredCard performs a fixed-amount charge using the stored billing
// key. A 404 means the backend has no card on file; that condition is
// surfaced as ErrNoStoredCard so callers can reopen the card-registration
// flow instead of failing.
func (g *TossGateway) ChargeStoredCard(ctx context.Context, userID, planSlug string) (*Result, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	result, err := g.client.post(ctx, "/api/payments/toss/billing/charge", userID, map[string]string{
		"plan_slug": planSlug,
	})
	if err != nil {
		return nil, err
	}
	if result.Status == http.StatusNotFound {
		return result, errors.Join(ErrNoStoredCard, result.asError())
	}
	if err := result.asError(); err != nil {
		return result, err
	}
	return result, nil
}

// ScheduleDowngrade defers a plan change to the next billing cycle.
func (g *TossGateway) ScheduleDowngrade(ctx context.Context, userID, targetPlanSlug string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	result, err := g.client.post(ctx, "/api/payments/toss/downgrade", userID, map[string]string{
		"target_plan_slug": targetPlanSlug,
	})
	if err != nil {
		return err
	}
	return result.asError()
}

// CancelDowngrade removes a previously scheduled downgrade.
func (g *TossGateway) CancelDowngrade(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	result, err := g.client.post(ctx, "/api/payments/toss/cancel-downgrade", userID, nil)
	if err != nil {
		return err
	}
	return result.asError()
}

// CancelSubscription stops the recurring billing for the account.
func (g *TossGateway) CancelSubscription(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	result, err := g.client.post(ctx, "/api/payments/toss/cancel-subscription", userID, nil)
	if err != nil {
		return err
	}
	return result.asError()
}
