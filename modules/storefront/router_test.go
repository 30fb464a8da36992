package storefront_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatlabs/storefront/modules/storefront"
	"github.com/goatlabs/storefront/pkg/billing"
	"github.com/goatlabs/storefront/pkg/checkout"
	"github.com/goatlabs/storefront/pkg/lifecycle"
	"github.com/goatlabs/storefront/pkg/session"
)

type stubCheckout struct {
	handled []checkout.Intent
	outcome checkout.Outcome
	settled []checkout.Callback
}

func (s *stubCheckout) Handle(ctx context.Context, flow *checkout.Flow, intent checkout.Intent) checkout.Outcome {
	s.handled = append(s.handled, intent)
	return s.outcome
}

func (s *stubCheckout) Settle(ctx context.Context, cb checkout.Callback) checkout.Outcome {
	s.settled = append(s.settled, cb)
	return s.outcome
}

type stubLifecycle struct {
	downgradeErr error
	cancelErr    error
	refundErr    error
	refundReason string
}

func (s *stubLifecycle) ScheduleDowngrade(ctx context.Context, userID uuid.UUID, target string) error {
	return s.downgradeErr
}

func (s *stubLifecycle) CancelScheduledDowngrade(ctx context.Context, userID uuid.UUID) error {
	return s.downgradeErr
}

func (s *stubLifecycle) CancelSubscription(ctx context.Context, userID uuid.UUID, confirmed bool) error {
	if !confirmed {
		return lifecycle.ErrConfirmationRequired
	}
	return s.cancelErr
}

func (s *stubLifecycle) RequestRefund(ctx context.Context, userID uuid.UUID, reason string) error {
	s.refundReason = reason
	return s.refundErr
}

type stubSummaries struct {
	summary *lifecycle.Summary
	err     error
}

func (s *stubSummaries) Load(ctx context.Context, userID uuid.UUID) (*lifecycle.Summary, error) {
	return s.summary, s.err
}

type stubPlans struct {
	plans []billing.GatewayPlan
}

func (s *stubPlans) ListPlans(ctx context.Context) ([]billing.GatewayPlan, error) {
	return s.plans, nil
}

type harness struct {
	srv       *httptest.Server
	checkout  *stubCheckout
	lifecycle *stubLifecycle
	summaries *stubSummaries
	store     *session.MemoryStore
	scratch   *checkout.MemoryScratch
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	co := &stubCheckout{outcome: checkout.Outcome{Kind: checkout.OutcomeAuthStarted, PlanSlug: "basic"}}
	lc := &stubLifecycle{}
	summaries := &stubSummaries{summary: &lifecycle.Summary{EffectivePlan: "free"}}
	store := session.NewMemoryStore("test")
	scratch := checkout.NewMemoryScratch(0)

	svc := storefront.NewService(
		co,
		lc,
		summaries,
		&stubPlans{plans: []billing.GatewayPlan{{Slug: "pro", Price: 19.99, Currency: "USD"}}},
		session.NewResolver([]session.Store{store}),
		scratch,
	)

	srv := httptest.NewServer(svc.Handle())
	t.Cleanup(srv.Close)

	return &harness{
		srv:       srv,
		checkout:  co,
		lifecycle: lc,
		summaries: summaries,
		store:     store,
		scratch:   scratch,
	}
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	s := session.NewSession(uuid.New(), "casey@example.com", "at", "rt", time.Hour)
	require.NoError(t, h.store.Set(context.Background(), s))
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestStartCheckout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp := postJSON(t, h.srv.URL+"/checkout", `{"plan":"basic","trigger_id":"pricing-basic","return_to":"https://www.example.com/pricing"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "auth_started", body["outcome"])

	require.Len(t, h.checkout.handled, 1)
	intent := h.checkout.handled[0]
	assert.Equal(t, "basic", intent.PlanSlug)
	assert.Equal(t, "pricing-basic", intent.TriggerID)
	assert.False(t, intent.Confirmed)
}

func TestStartCheckoutBadBody(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp := postJSON(t, h.srv.URL+"/checkout", `{plan}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, h.checkout.handled)
}

func TestResumeCheckout(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp, err := http.Get(h.srv.URL + "/checkout/resume?auto_checkout=1&plan=pro")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, h.checkout.handled, 1)
	assert.Equal(t, "pro", h.checkout.handled[0].PlanSlug)

	resp, err = http.Get(h.srv.URL + "/checkout/resume?plan=pro")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResumeCheckoutFallsBackToScratch(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.scratch.PutReturnTo(ctx, "https://www.example.com/pricing?auto_checkout=1&plan=pro"))

	resp, err := http.Get(h.srv.URL + "/checkout/resume")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, h.checkout.handled, 1)
	assert.Equal(t, "pro", h.checkout.handled[0].PlanSlug)

	// The stored URL is consumed on use.
	stored, err := h.scratch.TakeReturnTo(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSettleRedirectsOnSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.checkout.outcome = checkout.Outcome{
		Kind:        checkout.OutcomeCharged,
		PlanSlug:    "basic",
		RedirectURL: "https://www.example.com/pay/complete?payment_status=success",
	}

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(h.srv.URL + "/billing/success?authKey=ak&customerKey=ck&plan=basic&amount=9900")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://www.example.com/pay/complete?payment_status=success", resp.Header.Get("Location"))

	require.Len(t, h.checkout.settled, 1)
	cb := h.checkout.settled[0]
	assert.Equal(t, "ak", cb.AuthKey)
	assert.Equal(t, int64(9900), cb.Amount)
}

func TestSubscriptionSummaryRequiresIdentity(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp, err := http.Get(h.srv.URL + "/subscription")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubscriptionSummary(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.signIn(t)
	h.summaries.summary = &lifecycle.Summary{
		Record: &lifecycle.SubscriptionRecord{
			PlanSlug:     "pro",
			Status:       lifecycle.StatusActive,
			CreditsTotal: 500,
			CreditsUsed:  80,
		},
		Pending:       &lifecycle.PendingPlanAssignment{PlanSlug: "basic"},
		Ref:           billing.ProviderRef{Kind: billing.ProviderPayPal, SubscriptionID: "I-123"},
		EffectivePlan: "pro",
	}

	resp, err := http.Get(h.srv.URL + "/subscription")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "pro", body["plan"])
	assert.Equal(t, true, body["paid"])
	assert.Equal(t, "paypal", body["provider"])
	assert.Equal(t, float64(420), body["credits_remaining"])
	assert.Equal(t, "basic", body["pending_plan"])
	assert.Equal(t, true, body["downgrade_pending"])
}

func TestLifecycleErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "reason too short", err: lifecycle.ErrReasonTooShort, wantStatus: http.StatusBadRequest},
		{name: "no subscription", err: lifecycle.ErrNoSubscription, wantStatus: http.StatusNotFound},
		{name: "downgrade pending", err: lifecycle.ErrDowngradePending, wantStatus: http.StatusConflict},
		{name: "unroutable provider", err: lifecycle.ErrUnroutableProvider, wantStatus: http.StatusUnprocessableEntity},
		{name: "gateway rejection", err: &billing.ProviderError{Status: http.StatusPaymentRequired, Message: "declined"}, wantStatus: http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			h.signIn(t)
			h.lifecycle.refundErr = tt.err

			resp := postJSON(t, h.srv.URL+"/refunds", `{"reason":"charged twice this month"}`)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCancelSubscriptionRequiresConfirmation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.signIn(t)

	resp := postJSON(t, h.srv.URL+"/subscription/cancel", `{"confirmed":false}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, h.srv.URL+"/subscription/cancel", `{"confirmed":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPlans(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	resp, err := http.Get(h.srv.URL + "/plans")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	plans, ok := body["plans"].([]any)
	require.True(t, ok)
	require.Len(t, plans, 1)
}

func TestSignOutClearsSessionAndScratch(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()
	require.NoError(t, h.scratch.PutPlan(ctx, "pro"))

	resp := postJSON(t, h.srv.URL+"/signout", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := h.store.Get(ctx)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	plan, err := h.scratch.TakePlan(ctx)
	require.NoError(t, err)
	assert.Empty(t, plan)
}
