package lifecycle

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/goatlabs/storefront/pkg/billing"
)

// minRefundReasonLen is the shortest accepted refund reason.
const minRefundReasonLen = 10

// Refunder submits refund requests; satisfied by billing.Client.
type Refunder interface {
	RequestRefund(ctx context.Context, userID string, req billing.RefundRequest) error
}

// Manager dispatches subscription lifecycle actions to the gateway that
// owns the subscription.
type Manager struct {
	loader  *Loader
	toss    *billing.TossGateway
	paypal  *billing.PayPalGateway
	refunds Refunder
	log     *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger attaches a logger.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager wires the lifecycle action set. All collaborators are
// required.
func NewManager(loader *Loader, toss *billing.TossGateway, paypal *billing.PayPalGateway, refunds Refunder, opts ...ManagerOption) *Manager {
	if loader == nil {
		panic("lifecycle: loader is required")
	}
	if toss == nil {
		panic("lifecycle: toss gateway is required")
	}
	if paypal == nil {
		panic("lifecycle: paypal gateway is required")
	}
	if refunds == nil {
		panic("lifecycle: refund client is required")
	}
	m := &Manager{
		loader:  loader,
		toss:    toss,
		paypal:  paypal,
		refunds: refunds,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ScheduleDowngrade defers a move to a lower tier until the next billing
// cycle. Only a billed subscription on a higher tier can schedule one; the
// guard rejects everything else before any network call.
func (m *Manager) ScheduleDowngrade(ctx context.Context, userID uuid.UUID, targetPlanSlug string) error {
	summary, err := m.loader.Load(ctx, userID)
	if err != nil {
		return err
	}
	if summary.Record == nil || !summary.Record.Status.Billed() {
		return ErrNoSubscription
	}
	if summary.DowngradePending() {
		return ErrDowngradePending
	}

	target := strings.ToLower(strings.TrimSpace(targetPlanSlug))
	if planRank(target) == 0 || planRank(target) >= planRank(summary.EffectivePlan) {
		return ErrNotDowngradable
	}

	switch summary.Ref.Kind {
	case billing.ProviderToss:
		return m.toss.ScheduleDowngrade(ctx, userID.String(), target)
	case billing.ProviderPayPal:
		// The gateway rejects a missing subscription id before dialing.
		return m.paypal.ScheduleDowngrade(ctx, userID.String(), summary.Ref.SubscriptionID, target)
	default:
		return ErrUnroutableProvider
	}
}

// CancelScheduledDowngrade removes a pending downgrade so the current plan
// continues past the period boundary.
func (m *Manager) CancelScheduledDowngrade(ctx context.Context, userID uuid.UUID) error {
	summary, err := m.loader.Load(ctx, userID)
	if err != nil {
		return err
	}
	if !summary.DowngradePending() {
		return ErrNoPendingDowngrade
	}

	switch summary.Ref.Kind {
	case billing.ProviderToss:
		return m.toss.CancelDowngrade(ctx, userID.String())
	case billing.ProviderPayPal:
		return m.paypal.CancelDowngrade(ctx, userID.String(), summary.Ref.SubscriptionID)
	default:
		return ErrUnroutableProvider
	}
}

// CancelSubscription stops recurring billing. It demands explicit
// confirmation from the caller and is unavailable once the subscription is
// already on a cancellation path.
func (m *Manager) CancelSubscription(ctx context.Context, userID uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	summary, err := m.loader.Load(ctx, userID)
	if err != nil {
		return err
	}
	if summary.Record == nil {
		return ErrNoSubscription
	}
	if summary.Record.Status.Terminal() || summary.Record.CancelAtPeriodEnd {
		return ErrAlreadyCancelled
	}

	switch summary.Ref.Kind {
	case billing.ProviderToss:
		return m.toss.CancelSubscription(ctx, userID.String())
	case billing.ProviderPayPal:
		return m.paypal.CancelSubscription(ctx, userID.String(), summary.Ref.SubscriptionID)
	default:
		return ErrUnroutableProvider
	}
}

// RequestRefund submits a refund request for review. It requires a paid
// subscription with no downgrade scheduled and a reason of at least ten
// characters. The request is tagged with the gateway's settlement currency
// and never cancels the subscription itself.
func (m *Manager) RequestRefund(ctx context.Context, userID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < minRefundReasonLen {
		return ErrReasonTooShort
	}

	summary, err := m.loader.Load(ctx, userID)
	if err != nil {
		return err
	}
	if summary.Record == nil || !summary.Paid() {
		return ErrNoSubscription
	}
	if summary.DowngradePending() {
		return ErrDowngradePending
	}
	if !summary.Ref.Known() {
		return ErrUnroutableProvider
	}

	req := billing.RefundRequest{
		SubscriptionID: summary.Ref.SubscriptionID,
		Reason:         reason,
	}
	if unit, ok := summary.Ref.Currency(); ok {
		req.Currency = unit.String()
	}
	return m.refunds.RequestRefund(ctx, userID.String(), req)
}
