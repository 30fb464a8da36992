package storefront

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goatlabs/storefront/pkg/billing"
	"github.com/goatlabs/storefront/pkg/checkout"
	"github.com/goatlabs/storefront/pkg/lifecycle"
	"github.com/goatlabs/storefront/pkg/logger"
	"github.com/goatlabs/storefront/pkg/session"
)

type checkoutRequest struct {
	Plan      string `json:"plan"`
	Confirmed bool   `json:"confirmed"`
	TriggerID string `json:"trigger_id"`
	ReturnTo  string `json:"return_to"`
}

type outcomeResponse struct {
	Outcome     checkout.OutcomeKind `json:"outcome"`
	Plan        string               `json:"plan,omitempty"`
	RedirectURL string               `json:"redirect_url,omitempty"`
	Message     string               `json:"message,omitempty"`
	Status      []string             `json:"status,omitempty"`
}

func (s *Service) startCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome := s.checkout.Handle(r.Context(), s.flow, checkout.Intent{
		PlanSlug:  req.Plan,
		Confirmed: req.Confirmed,
		TriggerID: req.TriggerID,
		ReturnTo:  req.ReturnTo,
	})
	s.respondOutcome(w, r, outcome)
}

// resumeCheckout re-enters checkout from a post-login return URL carrying
// the auto-checkout parameters. When the identity provider drops them, the
// copy persisted in scratch before the login redirect is used instead.
func (s *Service) resumeCheckout(w http.ResponseWriter, r *http.Request) {
	intent, ok := checkout.ParseAutoCheckout(r.URL.String())
	if !ok {
		stored, err := s.scratch.TakeReturnTo(r.Context())
		if err != nil {
			s.log.WarnContext(r.Context(), "scratch return url read failed", logger.Error(err))
		}
		intent, ok = checkout.ParseAutoCheckout(stored)
	}
	if !ok {
		respondError(w, http.StatusBadRequest, "url does not carry a resumable checkout")
		return
	}
	outcome := s.checkout.Handle(r.Context(), s.flow, intent)
	s.respondOutcome(w, r, outcome)
}

// settleCheckout is the card-registration success callback target.
func (s *Service) settleCheckout(w http.ResponseWriter, r *http.Request) {
	outcome := s.checkout.Settle(r.Context(), checkout.ParseCallback(r.URL.String()))
	if outcome.Kind == checkout.OutcomeCharged && outcome.RedirectURL != "" {
		http.Redirect(w, r, outcome.RedirectURL, http.StatusSeeOther)
		return
	}
	s.respondOutcome(w, r, outcome)
}

func (s *Service) respondOutcome(w http.ResponseWriter, r *http.Request, outcome checkout.Outcome) {
	s.log.InfoContext(r.Context(), "checkout settled",
		logger.Outcome(string(outcome.Kind)),
		logger.Plan(outcome.PlanSlug),
	)
	status := http.StatusOK
	if outcome.Kind == checkout.OutcomeFailed {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, outcomeResponse{
		Outcome:     outcome.Kind,
		Plan:        outcome.PlanSlug,
		RedirectURL: outcome.RedirectURL,
		Message:     outcome.Message,
		Status:      outcome.StatusLines,
	})
}

type summaryResponse struct {
	Plan             string `json:"plan"`
	Paid             bool   `json:"paid"`
	Status           string `json:"status,omitempty"`
	Provider         string `json:"provider,omitempty"`
	CreditsRemaining int64  `json:"credits_remaining"`
	CurrentPeriodEnd string `json:"current_period_end,omitempty"`
	PendingPlan      string `json:"pending_plan,omitempty"`
	DowngradePending bool   `json:"downgrade_pending"`
}

func (s *Service) subscriptionSummary(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}

	summary, err := s.summaries.Load(r.Context(), identity.Session.UserID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "summary load failed", logger.Error(err))
		respondError(w, http.StatusBadGateway, "could not load subscription")
		return
	}

	resp := summaryResponse{
		Plan:             summary.EffectivePlan,
		Paid:             summary.Paid(),
		Provider:         string(summary.Ref.Kind),
		DowngradePending: summary.DowngradePending(),
	}
	if summary.Record != nil {
		resp.Status = string(summary.Record.Status)
		resp.CreditsRemaining = summary.Record.CreditsRemaining()
		if !summary.Record.CurrentPeriodEnd.IsZero() {
			resp.CurrentPeriodEnd = summary.Record.CurrentPeriodEnd.Format(time.RFC3339)
		}
	}
	if summary.Pending != nil {
		resp.PendingPlan = summary.Pending.PlanSlug
	}
	respondJSON(w, http.StatusOK, resp)
}

type downgradeRequest struct {
	TargetPlan string `json:"target_plan"`
}

func (s *Service) scheduleDowngrade(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req downgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondAction(w, r, s.lifecycle.ScheduleDowngrade(r.Context(), identity.Session.UserID, req.TargetPlan))
}

func (s *Service) cancelDowngrade(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	s.respondAction(w, r, s.lifecycle.CancelScheduledDowngrade(r.Context(), identity.Session.UserID))
}

type cancelRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (s *Service) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondAction(w, r, s.lifecycle.CancelSubscription(r.Context(), identity.Session.UserID, req.Confirmed))
}

type refundRequest struct {
	Reason string `json:"reason"`
}

func (s *Service) requestRefund(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.requireIdentity(w, r)
	if !ok {
		return
	}
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondAction(w, r, s.lifecycle.RequestRefund(r.Context(), identity.Session.UserID, req.Reason))
}

func (s *Service) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListPlans(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "plan listing failed", logger.Error(err))
		respondError(w, http.StatusBadGateway, "could not load plans")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// signOut clears every session backend and the checkout scratch state.
func (s *Service) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.resolver.SignOutAll(r.Context()); err != nil {
		s.log.WarnContext(r.Context(), "sign-out incomplete", logger.Error(err))
	}
	if err := s.scratch.Clear(r.Context()); err != nil {
		s.log.WarnContext(r.Context(), "scratch clear failed", logger.Error(err))
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (s *Service) requireIdentity(w http.ResponseWriter, r *http.Request) (*session.Identity, bool) {
	identity, err := s.resolver.Resolve(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "session resolution failed", logger.Error(err))
		respondError(w, http.StatusBadGateway, "could not verify sign-in")
		return nil, false
	}
	if identity == nil {
		respondError(w, http.StatusUnauthorized, "sign-in required")
		return nil, false
	}
	return identity, true
}

// respondAction maps a lifecycle action result onto HTTP. Precondition
// failures are client errors; gateway rejections pass their status through.
func (s *Service) respondAction(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	s.log.WarnContext(r.Context(), "lifecycle action rejected", logger.Error(err))

	var provider *billing.ProviderError
	switch {
	case errors.Is(err, lifecycle.ErrConfirmationRequired),
		errors.Is(err, lifecycle.ErrReasonTooShort),
		errors.Is(err, lifecycle.ErrNotDowngradable):
		respondError(w, http.StatusBadRequest, userMessage(err))
	case errors.Is(err, lifecycle.ErrNoSubscription),
		errors.Is(err, lifecycle.ErrNoPendingDowngrade):
		respondError(w, http.StatusNotFound, userMessage(err))
	case errors.Is(err, lifecycle.ErrDowngradePending),
		errors.Is(err, lifecycle.ErrAlreadyCancelled):
		respondError(w, http.StatusConflict, userMessage(err))
	case errors.Is(err, lifecycle.ErrUnroutableProvider),
		errors.Is(err, billing.ErrMissingSubscriptionID):
		respondError(w, http.StatusUnprocessableEntity, userMessage(err))
	case errors.As(err, &provider):
		respondError(w, provider.Status, provider.Message)
	default:
		respondError(w, http.StatusBadGateway, "the billing service is unavailable")
	}
}

// userMessage strips the package prefix from sentinel errors before they
// reach the client.
func userMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "lifecycle: "); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(msg, "billing: "); ok {
		return rest
	}
	return msg
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
