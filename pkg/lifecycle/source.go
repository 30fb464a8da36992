package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/goatlabs/storefront/pkg/billing"
)

// SubscriptionAPI is the slice of the billing client the source needs.
type SubscriptionAPI interface {
	Subscription(ctx context.Context, userID string) (*billing.SubscriptionRow, error)
	PendingPlan(ctx context.Context, userID string) (*billing.PendingPlanRow, error)
}

// APISource reads subscription rows from the backend billing API.
type APISource struct {
	api SubscriptionAPI
	log *slog.Logger
}

// APISourceOption configures an APISource.
type APISourceOption func(*APISource)

// WithAPISourceLogger attaches a logger for row-mapping diagnostics.
func WithAPISourceLogger(log *slog.Logger) APISourceOption {
	return func(s *APISource) {
		if log != nil {
			s.log = log
		}
	}
}

// NewAPISource creates a Source over the backend billing API.
func NewAPISource(api SubscriptionAPI, opts ...APISourceOption) *APISource {
	if api == nil {
		panic("lifecycle: subscription api is required")
	}
	s := &APISource{api: api, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *APISource) Subscription(ctx context.Context, userID uuid.UUID) (*SubscriptionRecord, error) {
	row, err := s.api.Subscription(ctx, userID.String())
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lifecycle: fetch subscription: %w", err)
	}

	record := &SubscriptionRecord{
		PlanSlug:               row.PlanSlug,
		Status:                 Status(row.Status),
		Provider:               row.Provider,
		ProviderSubscriptionID: row.ProviderSubscriptionID,
		CreditsTotal:           row.CreditsTotal,
		CreditsUsed:            row.CreditsUsed,
		CancelAtPeriodEnd:      row.CancelAtPeriodEnd,
	}
	record.ID = s.parseID(ctx, "id", row.ID)
	record.UserID = s.parseID(ctx, "user_id", row.UserID)
	record.CurrentPeriodEnd = parseTime(row.CurrentPeriodEnd)
	record.CreatedAt = parseTime(row.CreatedAt)
	record.UpdatedAt = parseTime(row.UpdatedAt)
	return record, nil
}

func (s *APISource) PendingPlan(ctx context.Context, userID uuid.UUID) (*PendingPlanAssignment, error) {
	row, err := s.api.PendingPlan(ctx, userID.String())
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lifecycle: fetch pending plan: %w", err)
	}
	// Only rows still waiting to apply count as pending.
	switch row.Status {
	case "", "active", "approval_pending":
	default:
		return nil, ErrNotFound
	}

	pending := &PendingPlanAssignment{
		PlanSlug:    row.PlanSlug,
		EffectiveAt: parseTime(row.EffectiveAt),
		CreatedAt:   parseTime(row.CreatedAt),
	}
	pending.UserID = s.parseID(ctx, "user_id", row.UserID)
	return pending, nil
}

// parseID tolerates malformed backend identifiers the same way parseTime
// tolerates timestamps, but leaves a trace: a uuid.Nil on the record is
// otherwise indistinguishable from a missing field.
func (s *APISource) parseID(ctx context.Context, field, value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		s.log.WarnContext(ctx, "malformed id in subscription row",
			slog.String("field", field),
			slog.Any("error", err))
		return uuid.Nil
	}
	return id
}

// parseTime tolerates missing or malformed timestamps; the zero time is
// used rather than failing a whole summary load over one bad field.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
