package storefront

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/goatlabs/storefront/pkg/billing"
	"github.com/goatlabs/storefront/pkg/checkout"
	"github.com/goatlabs/storefront/pkg/lifecycle"
	"github.com/goatlabs/storefront/pkg/session"
)

// CheckoutService runs checkout passes; satisfied by checkout.Orchestrator.
type CheckoutService interface {
	Handle(ctx context.Context, flow *checkout.Flow, intent checkout.Intent) checkout.Outcome
	Settle(ctx context.Context, cb checkout.Callback) checkout.Outcome
}

// LifecycleService manages an existing subscription; satisfied by
// lifecycle.Manager.
type LifecycleService interface {
	ScheduleDowngrade(ctx context.Context, userID uuid.UUID, targetPlanSlug string) error
	CancelScheduledDowngrade(ctx context.Context, userID uuid.UUID) error
	CancelSubscription(ctx context.Context, userID uuid.UUID, confirmed bool) error
	RequestRefund(ctx context.Context, userID uuid.UUID, reason string) error
}

// SummaryLoader loads the merged subscription view; satisfied by
// lifecycle.Loader.
type SummaryLoader interface {
	Load(ctx context.Context, userID uuid.UUID) (*lifecycle.Summary, error)
}

// PlanLister lists the gateway plan definitions; satisfied by
// billing.PayPalGateway.
type PlanLister interface {
	ListPlans(ctx context.Context) ([]billing.GatewayPlan, error)
}

// Service is the HTTP surface of the storefront: it translates requests
// into checkout intents and lifecycle actions.
type Service struct {
	checkout  CheckoutService
	lifecycle LifecycleService
	summaries SummaryLoader
	plans     PlanLister
	resolver  *session.Resolver
	scratch   checkout.Scratch
	flow      *checkout.Flow
	log       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger attaches a logger.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires the storefront HTTP surface. All collaborators are
// required except the plan lister, whose endpoint responds 404 when absent.
func NewService(
	co CheckoutService,
	lc LifecycleService,
	summaries SummaryLoader,
	plans PlanLister,
	resolver *session.Resolver,
	scratch checkout.Scratch,
	opts ...ServiceOption,
) *Service {
	if co == nil {
		panic("storefront: checkout service is required")
	}
	if lc == nil {
		panic("storefront: lifecycle service is required")
	}
	if summaries == nil {
		panic("storefront: summary loader is required")
	}
	if resolver == nil {
		panic("storefront: session resolver is required")
	}
	if scratch == nil {
		panic("storefront: scratch store is required")
	}
	s := &Service{
		checkout:  co,
		lifecycle: lc,
		summaries: summaries,
		plans:     plans,
		resolver:  resolver,
		scratch:   scratch,
		flow:      checkout.NewFlow(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle mounts the storefront routes.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/checkout", s.startCheckout)
	r.Get("/checkout/resume", s.resumeCheckout)
	r.Get("/billing/success", s.settleCheckout)

	r.Get("/subscription", s.subscriptionSummary)
	r.Post("/subscription/downgrade", s.scheduleDowngrade)
	r.Delete("/subscription/downgrade", s.cancelDowngrade)
	r.Post("/subscription/cancel", s.cancelSubscription)
	r.Post("/refunds", s.requestRefund)

	if s.plans != nil {
		r.Get("/plans", s.listPlans)
	}
	r.Post("/signout", s.signOut)

	return r
}
