package billing

import (
	"context"
)

// RefundRequest queues a refund for manual backend review. Submitting a
// refund request never cancels the subscription itself; the two actions
// are deliberately decoupled.
type RefundRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Reason         string `json:"reason"`
	Currency       string `json:"currency"`
}

// RequestRefund submits a refund request for the given subscription.
func (c *Client) RequestRefund(ctx context.Context, userID string, req RefundRequest) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if req.SubscriptionID == "" {
		return ErrMissingSubscriptionID
	}
	result, err := c.post(ctx, "/api/refunds/request", userID, req)
	if err != nil {
		return err
	}
	return result.asError()
}
