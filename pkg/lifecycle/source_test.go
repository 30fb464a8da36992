package lifecycle_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatlabs/storefront/pkg/billing"
	"github.com/goatlabs/storefront/pkg/lifecycle"
)

func TestAPISource(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	subID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/subscriptions/me":
			_, _ = w.Write([]byte(`{"subscription":{
				"id":"` + subID.String() + `",
				"user_id":"` + userID.String() + `",
				"plan_slug":"pro",
				"status":"active",
				"provider_subscription_id":"I-44YNL0DBY9BW",
				"credits_total":500,
				"credits_used":120,
				"current_period_end":"2026-09-28T00:00:00Z",
				"cancel_at_period_end":false
			}}`))
		case "/api/subscriptions/pending":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	source := lifecycle.NewAPISource(billing.NewClient(srv.URL))
	ctx := context.Background()

	record, err := source.Subscription(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, subID, record.ID)
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, "pro", record.PlanSlug)
	assert.Equal(t, lifecycle.StatusActive, record.Status)
	assert.Equal(t, int64(380), record.CreditsRemaining())
	assert.False(t, record.CurrentPeriodEnd.IsZero())

	_, err = source.PendingPlan(ctx, userID)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)

	// The loader built over this source resolves the provider once.
	summary, err := lifecycle.NewLoader(source).Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, billing.ProviderPayPal, summary.Ref.Kind)
	assert.Equal(t, "pro", summary.EffectivePlan)
}

func TestAPISourceMalformedIDIsLoggedNotFatal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"subscription":{
			"id":"not-a-uuid",
			"user_id":"also-not-a-uuid",
			"plan_slug":"basic",
			"status":"active"
		}}`))
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	source := lifecycle.NewAPISource(billing.NewClient(srv.URL), lifecycle.WithAPISourceLogger(log))

	record, err := source.Subscription(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, record.ID)
	assert.Equal(t, uuid.Nil, record.UserID)
	assert.Equal(t, "basic", record.PlanSlug)
	assert.Contains(t, buf.String(), "malformed id in subscription row")
}

func TestAPISourceSettledPendingRowIsNotPending(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pending":{
			"user_id":"` + userID.String() + `",
			"plan_slug":"basic",
			"status":"applied"
		}}`))
	}))
	t.Cleanup(srv.Close)

	source := lifecycle.NewAPISource(billing.NewClient(srv.URL))
	_, err := source.PendingPlan(context.Background(), userID)
	assert.ErrorIs(t, err, lifecycle.ErrNotFound)
}
