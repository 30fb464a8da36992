package checkout

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/goatlabs/storefront/pkg/billing"
)

// Callback carries the parameters the payment provider appends to the
// success URL after card registration.
type Callback struct {
	AuthKey     string
	CustomerKey string
	PlanSlug    string
	Amount      int64
}

// ParseCallback extracts the provider callback parameters from the success
// page URL query. A malformed amount is treated as absent.
func ParseCallback(rawURL string) Callback {
	cb := Callback{}
	u, err := url.Parse(rawURL)
	if err != nil {
		return cb
	}
	query := u.Query()
	cb.AuthKey = query.Get("authKey")
	cb.CustomerKey = query.Get("customerKey")
	cb.PlanSlug = query.Get(paramPlan)
	if raw := query.Get("amount"); raw != "" {
		if amount, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cb.Amount = amount
		}
	}
	return cb
}

// Settle finishes a card-registration round trip on the success callback
// page: it recovers the target plan, exchanges the provider auth key for a
// stored billing key, and hands back the post-success redirect. The
// scratch slot is consumed even when the callback already names the plan,
// so a stale value cannot leak into a later checkout.
func (o *Orchestrator) Settle(ctx context.Context, cb Callback) Outcome {
	identity, err := o.deps.Resolver.Resolve(ctx)
	if err != nil || identity == nil {
		return Outcome{Kind: OutcomeFailed, Message: "Your sign-in could not be verified. Please sign in and try again."}
	}

	pending, err := o.deps.Scratch.TakePlan(ctx)
	if err != nil {
		o.log.WarnContext(ctx, "failed to read pending target plan", slog.Any("error", err))
	}
	slug := cb.PlanSlug
	if slug == "" {
		slug = pending
	}
	slug = normalizePlan(slug)
	if slug == PlanNone || slug == PlanFree {
		return Outcome{Kind: OutcomeFailed, Message: "The target plan could not be determined. Please restart checkout."}
	}

	if cb.AuthKey == "" || cb.CustomerKey == "" {
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: "The payment callback is missing its credentials. Please restart checkout."}
	}

	entry, err := o.deps.Catalog.Resolve(ctx, slug)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: "The plan amount could not be determined. Checkout cannot continue."}
	}
	amount := entry.Amount
	if cb.Amount > 0 {
		amount = cb.Amount
	}

	s := identity.Session
	issue := billing.IssueRequest{
		AuthKey:       cb.AuthKey,
		CustomerKey:   cb.CustomerKey,
		PlanSlug:      slug,
		Amount:        amount,
		OrderName:     entry.OrderName,
		CustomerEmail: s.Email,
		CustomerName:  customerName(s),
	}
	if _, err := o.deps.Cards.IssueBillingKey(ctx, s.UserID.String(), issue); err != nil {
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: err.Error()}
	}

	redirect := appendQuery(o.cfg.AfterSuccessURL, map[string]string{"payment_status": "success"})
	return Outcome{
		Kind:        OutcomeCharged,
		PlanSlug:    slug,
		RedirectURL: redirect,
		StatusLines: []string{"Finalizing your subscription...", "Payment complete."},
	}
}
