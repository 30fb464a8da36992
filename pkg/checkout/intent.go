package checkout

import (
	"net/url"
	"strings"
)

// Intent is the explicit command value produced by the UI layer. The
// orchestrator never inspects UI events; it only consumes intents.
type Intent struct {
	// PlanSlug is the plan the user asked for.
	PlanSlug string
	// Confirmed records that the user already answered the upgrade
	// confirmation prompt. A confirm-requiring transition without this
	// flag settles into OutcomeConfirmRequired.
	Confirmed bool
	// TriggerID scopes the single-flight guard. Two intents with the same
	// trigger cannot be in flight at once; an empty id falls back to the
	// plan slug.
	TriggerID string
	// ReturnTo is the page the user should come back to after a login
	// redirect. Usually the current page URL.
	ReturnTo string
}

// OutcomeKind classifies how a checkout pass settled.
type OutcomeKind string

const (
	// OutcomeRedirect asks the UI to navigate to RedirectURL.
	OutcomeRedirect OutcomeKind = "redirect"
	// OutcomeAuthStarted means the hosted card-registration flow was
	// opened; settlement continues on the callback page.
	OutcomeAuthStarted OutcomeKind = "auth_started"
	// OutcomeCharged means the stored card was charged successfully.
	OutcomeCharged OutcomeKind = "charged"
	// OutcomeBlocked is a guard rejection. Not a failure.
	OutcomeBlocked OutcomeKind = "blocked"
	// OutcomeConfirmRequired asks the UI to show the confirmation prompt
	// and re-submit the intent with Confirmed set.
	OutcomeConfirmRequired OutcomeKind = "confirm_required"
	// OutcomeCancelled means the user abandoned the payment SDK flow.
	OutcomeCancelled OutcomeKind = "cancelled"
	// OutcomeBusy means another checkout from the same trigger is still in
	// flight and this one was dropped.
	OutcomeBusy OutcomeKind = "busy"
	// OutcomeFailed carries a single-line status message for the user.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is what a checkout pass settles into. StatusLines carries the
// UX pacing messages emitted along the way; they are informational only.
type Outcome struct {
	Kind        OutcomeKind
	PlanSlug    string
	RedirectURL string
	Message     string
	StatusLines []string
}

// Query parameter contract for resuming checkout after a login redirect.
const (
	paramAutoCheckout = "auto_checkout"
	paramPlan         = "plan"
	paramReturnTo     = "return_to"
	paramAutoCoupon   = "auto_coupon"
	paramCoupon       = "coupon"
)

// ParseAutoCheckout recovers a checkout intent from a return URL carrying
// the auto-checkout parameters, so login redirects transparently resume
// the original plan-change request. The second return value reports
// whether the URL carried a resumable intent.
func ParseAutoCheckout(rawURL string) (Intent, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Intent{}, false
	}
	query := u.Query()
	if query.Get(paramAutoCheckout) != "1" {
		return Intent{}, false
	}
	slug := strings.TrimSpace(query.Get(paramPlan))
	if slug == "" {
		return Intent{}, false
	}
	return Intent{PlanSlug: slug, ReturnTo: rawURL}, true
}
