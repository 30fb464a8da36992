package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/goatlabs/storefront/pkg/billing"
)

// PlanFree is the slug of the unpaid tier.
const PlanFree = "free"

// Source provides the raw subscription rows. Implementations return
// ErrNotFound when the user has no row of that kind.
type Source interface {
	Subscription(ctx context.Context, userID uuid.UUID) (*SubscriptionRecord, error)
	PendingPlan(ctx context.Context, userID uuid.UUID) (*PendingPlanAssignment, error)
}

// Summary is the merged subscription view the UI and the action guards
// consume. Ref is resolved once here; everything downstream switches on
// Ref.Kind.
type Summary struct {
	Record        *SubscriptionRecord
	Pending       *PendingPlanAssignment
	Ref           billing.ProviderRef
	EffectivePlan string
}

// DowngradePending reports whether a scheduled downgrade is waiting for
// the period boundary: a pending plan ranked below the billed plan.
func (s *Summary) DowngradePending() bool {
	if s.Pending == nil || s.Record == nil || !s.Record.Status.Billed() {
		return false
	}
	return planRank(s.Pending.PlanSlug) < planRank(s.Record.PlanSlug)
}

// Paid reports whether the effective plan is a paid tier.
func (s *Summary) Paid() bool {
	plan := strings.ToLower(s.EffectivePlan)
	return plan != "" && plan != PlanFree
}

// Loader merges the subscription row and the pending assignment into a
// Summary.
type Loader struct {
	source Source
	log    *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger attaches a logger.
func WithLoaderLogger(log *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoader creates a Loader over the given source.
func NewLoader(source Source, opts ...LoaderOption) *Loader {
	if source == nil {
		panic("lifecycle: source is required")
	}
	l := &Loader{source: source, log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and merges the subscription state for the user. A missing
// subscription row is not an error: the user is simply on the free plan.
// A failing pending lookup degrades to "no pending change" with a log
// line, so a flaky secondary table cannot take the whole summary down.
func (l *Loader) Load(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	record, err := l.source.Subscription(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lifecycle: load subscription: %w", err)
	}

	pending, err := l.source.PendingPlan(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		l.log.WarnContext(ctx, "pending plan lookup failed",
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
		pending = nil
	}

	summary := &Summary{Record: record, Pending: pending}
	if record != nil {
		summary.Ref = billing.ResolveProvider(record.Provider, record.ProviderSubscriptionID)
	}
	summary.EffectivePlan = effectivePlan(record, pending)
	return summary, nil
}

// CurrentPlan adapts the loader to the checkout plan source contract.
func (l *Loader) CurrentPlan(ctx context.Context, userID uuid.UUID) (string, error) {
	summary, err := l.Load(ctx, userID)
	if err != nil {
		return "", err
	}
	return summary.EffectivePlan, nil
}

// effectivePlan decides what plan the user is on right now. The billed
// row wins when present. A pending paid assignment outranks a free or
// missing row: the purchase already happened even if the webhook that
// updates the row has not landed yet. A pending downgrade does not lower
// the effective plan before its boundary.
func effectivePlan(record *SubscriptionRecord, pending *PendingPlanAssignment) string {
	base := PlanFree
	if record != nil && record.Status.Billed() {
		base = strings.ToLower(record.PlanSlug)
	}

	if pending != nil {
		pendingPlan := strings.ToLower(pending.PlanSlug)
		if planRank(pendingPlan) > planRank(base) {
			return pendingPlan
		}
	}
	if base == "" {
		return PlanFree
	}
	return base
}

// planRank orders the known tiers. Unknown paid slugs rank between basic
// and pro so they still outrank free.
func planRank(slug string) int {
	switch strings.ToLower(strings.TrimSpace(slug)) {
	case "", PlanFree, "none":
		return 0
	case "basic":
		return 1
	case "pro":
		return 3
	default:
		return 2
	}
}
