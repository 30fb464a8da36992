package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goatlabs/storefront/pkg/billing"
	"github.com/goatlabs/storefront/pkg/handoff"
	"github.com/goatlabs/storefront/pkg/plancatalog"
	"github.com/goatlabs/storefront/pkg/session"
)

// AuthRequest opens the hosted card-registration flow: register a card and
// authorize recurring billing, landing on SuccessURL or FailURL.
type AuthRequest struct {
	PlanSlug      string
	Amount        int64
	OrderName     string
	CustomerKey   string
	CustomerEmail string
	CustomerName  string
	SuccessURL    string
	FailURL       string
}

// AuthFlow is the payment-SDK integration opening the hosted
// authorization window. Implementations must wrap a deliberate user abort
// in billing.UserCancellationError at the call site.
type AuthFlow interface {
	RequestBillingAuth(ctx context.Context, req AuthRequest) error
}

// PlanSource reports the user's current plan slug, e.g. backed by the
// subscription summary loader.
type PlanSource interface {
	CurrentPlan(ctx context.Context, userID uuid.UUID) (string, error)
}

// Deps wires the orchestrator's collaborators. All fields are required
// except Handoff, which is only consulted for free-plan redirects.
type Deps struct {
	Resolver *session.Resolver
	Catalog  *plancatalog.Gate
	Cards    *billing.TossGateway
	Auth     AuthFlow
	Plans    PlanSource
	Scratch  Scratch
	Handoff  *handoff.Builder
}

// Orchestrator validates, guards, and dispatches plan-change intents.
type Orchestrator struct {
	cfg  Config
	deps Deps
	log  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates an Orchestrator. Panics on missing required collaborators to
// fail fast during initialization.
func New(cfg Config, deps Deps, opts ...Option) *Orchestrator {
	if deps.Resolver == nil {
		panic("checkout: session resolver is required")
	}
	if deps.Catalog == nil {
		panic("checkout: plan catalog is required")
	}
	if deps.Cards == nil {
		panic("checkout: card gateway is required")
	}
	if deps.Auth == nil {
		panic("checkout: auth flow is required")
	}
	if deps.Plans == nil {
		panic("checkout: plan source is required")
	}
	if deps.Scratch == nil {
		panic("checkout: scratch store is required")
	}

	o := &Orchestrator{
		cfg:  cfg,
		deps: deps,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle runs one checkout pass for the intent. It never returns an
// error: every failure settles into an Outcome with a status message.
func (o *Orchestrator) Handle(ctx context.Context, flow *Flow, intent Intent) Outcome {
	slug := normalizePlan(intent.PlanSlug)
	if slug == PlanNone {
		return Outcome{Kind: OutcomeFailed, Message: "No plan selected. Check the plan attribute on the trigger."}
	}

	// validating: no network call happens past a bad configuration.
	if err := o.cfg.Validate(slug); err != nil {
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: err.Error()}
	}

	trigger := intent.TriggerID
	if trigger == "" {
		trigger = slug
	}
	if !flow.acquire(trigger) {
		return Outcome{Kind: OutcomeBusy, PlanSlug: slug}
	}
	defer flow.release(trigger)

	if slug == PlanFree {
		return o.handleFree(ctx, intent, slug)
	}
	return o.handlePaid(ctx, flow, intent, slug)
}

// handleFree settles the free plan into a redirect. Session resolution is
// not gating here: an unauthenticated user goes to sign-up with the
// dashboard preserved as the return target and the coupon pre-attached.
func (o *Orchestrator) handleFree(ctx context.Context, intent Intent, slug string) Outcome {
	status := []string{"Checking sign-in status..."}

	identity, err := o.deps.Resolver.Resolve(ctx)
	if err != nil {
		o.log.WarnContext(ctx, "session resolution failed on free plan", slog.Any("error", err))
	}

	if identity == nil {
		returnTo := appendQuery(o.cfg.DashboardURL, map[string]string{
			paramAutoCoupon: "1",
			paramCoupon:     o.cfg.CouponCode,
		})
		signup := appendQuery(o.cfg.SignupURL, map[string]string{paramReturnTo: returnTo})
		return Outcome{
			Kind:        OutcomeRedirect,
			PlanSlug:    slug,
			RedirectURL: signup,
			StatusLines: append(status, "Taking you to sign-up..."),
		}
	}

	destination := o.cfg.DashboardURL
	if o.deps.Handoff != nil {
		destination = o.deps.Handoff.Build(destination, identity.Session)
	}
	return Outcome{
		Kind:        OutcomeRedirect,
		PlanSlug:    slug,
		RedirectURL: destination,
		StatusLines: append(status, "Preparing your workspace..."),
	}
}

func (o *Orchestrator) handlePaid(ctx context.Context, flow *Flow, intent Intent, slug string) Outcome {
	status := []string{"Checking sign-in status..."}

	identity, err := o.deps.Resolver.Resolve(ctx)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: "Could not verify your sign-in. Please try again shortly."}
	}
	if identity == nil {
		returnTo := appendQuery(intent.ReturnTo, map[string]string{
			paramAutoCheckout: "1",
			paramPlan:         slug,
		})
		// The resumable URL is also kept in scratch so checkout can recover
		// when the identity provider drops the return_to parameters.
		if err := o.deps.Scratch.PutReturnTo(ctx, returnTo); err != nil {
			o.log.WarnContext(ctx, "failed to persist return url", slog.Any("error", err))
		}
		login := appendQuery(o.cfg.LoginURL, map[string]string{
			paramReturnTo: returnTo,
			paramPlan:     slug,
		})
		return Outcome{
			Kind:        OutcomeRedirect,
			PlanSlug:    slug,
			RedirectURL: login,
			StatusLines: append(status, "Sign-in required. Redirecting..."),
		}
	}

	current, err := o.currentPlan(ctx, flow, identity.Session.UserID)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: "Could not load your current plan. Please try again shortly."}
	}

	decision := CheckTransition(current, slug)
	switch decision.Outcome {
	case GuardBlock:
		return Outcome{Kind: OutcomeBlocked, PlanSlug: slug, Message: decision.Message}
	case GuardConfirm:
		if !intent.Confirmed {
			return Outcome{Kind: OutcomeConfirmRequired, PlanSlug: slug, Message: decision.Message}
		}
	}

	entry, err := o.deps.Catalog.Resolve(ctx, slug)
	if err != nil {
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: "The plan amount could not be determined. Checkout cannot continue."}
	}

	if normalizePlan(current) == PlanBasic && slug == PlanPro {
		return o.dispatchUpgradeCharge(ctx, identity, slug, entry, status)
	}
	return o.dispatchAuth(ctx, identity, slug, entry, append(status, "Opening the payment window..."))
}

// dispatchUpgradeCharge charges the stored card for the fixed upgrade
// amount. The documented recovery path for a missing card on file is to
// fall back to the card-registration flow, never to fail.
func (o *Orchestrator) dispatchUpgradeCharge(ctx context.Context, identity *session.Identity, slug string, entry plancatalog.Entry, status []string) Outcome {
	status = append(status, "Charging your stored card...")

	userID := identity.Session.UserID.String()
	_, err := o.deps.Cards.ChargeStoredCard(ctx, userID, slug)
	if err == nil {
		redirect := appendQuery(o.cfg.AfterSuccessURL, map[string]string{"payment_status": "success"})
		return Outcome{
			Kind:        OutcomeCharged,
			PlanSlug:    slug,
			RedirectURL: redirect,
			StatusLines: append(status, "Upgrade complete."),
		}
	}
	if errors.Is(err, billing.ErrNoStoredCard) {
		return o.dispatchAuth(ctx, identity, slug, entry, append(status, "No stored card found. Opening the payment window..."))
	}
	return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: err.Error()}
}

// dispatchAuth opens the hosted card-registration flow. The target plan is
// persisted in scratch storage so the callback page can recover intent
// without re-deriving it from the server.
func (o *Orchestrator) dispatchAuth(ctx context.Context, identity *session.Identity, slug string, entry plancatalog.Entry, status []string) Outcome {
	if err := o.deps.Scratch.PutPlan(ctx, slug); err != nil {
		o.log.WarnContext(ctx, "failed to persist target plan", slog.Any("error", err))
	}

	s := identity.Session
	req := AuthRequest{
		PlanSlug:      slug,
		Amount:        entry.Amount,
		OrderName:     entry.OrderName,
		CustomerKey:   s.UserID.String(),
		CustomerEmail: s.Email,
		CustomerName:  customerName(s),
		SuccessURL: appendQuery(o.cfg.BillingSuccessURL, map[string]string{
			paramPlan: slug,
			"amount":  strconv.FormatInt(entry.Amount, 10),
		}),
		FailURL: appendQuery(o.cfg.BillingFailURL, map[string]string{paramPlan: slug}),
	}

	if err := o.deps.Auth.RequestBillingAuth(ctx, req); err != nil {
		if billing.IsUserCancellation(err) {
			return Outcome{Kind: OutcomeCancelled, PlanSlug: slug, Message: "Payment cancelled."}
		}
		return Outcome{Kind: OutcomeFailed, PlanSlug: slug, Message: "Could not open the payment window. Please try again shortly."}
	}
	return Outcome{Kind: OutcomeAuthStarted, PlanSlug: slug, StatusLines: status}
}

func (o *Orchestrator) currentPlan(ctx context.Context, flow *Flow, userID uuid.UUID) (string, error) {
	if slug, ok := flow.cachedPlan(userID); ok {
		return slug, nil
	}
	slug, err := o.deps.Plans.CurrentPlan(ctx, userID)
	if err != nil {
		return "", err
	}
	flow.storePlan(userID, slug)
	return slug, nil
}

// customerName mirrors the storefront fallback: profile name, else the
// local part of the email address.
func customerName(s *session.Session) string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	if at := strings.IndexByte(s.Email, '@'); at > 0 {
		return s.Email[:at]
	}
	return ""
}

// appendQuery adds parameters to rawURL, skipping empty values. An
// unparseable URL is returned as-is.
func appendQuery(rawURL string, params map[string]string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := u.Query()
	for key, value := range params {
		if value == "" {
			continue
		}
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()
	return u.String()
}
