package checkout

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPlanCacheTTL bounds how long a fetched current-plan value is
// reused before the backend is asked again.
const DefaultPlanCacheTTL = 30 * time.Second

type planCacheEntry struct {
	slug      string
	expiresAt time.Time
}

// Flow is the explicit per-surface context object passed into each
// orchestrator call. It owns the only shared mutable checkout state: the
// per-user current-plan cache and the per-trigger busy markers. Cache
// entries are invalidated implicitly by expiry, never explicitly.
type Flow struct {
	mu      sync.Mutex
	planTTL time.Duration
	plans   map[uuid.UUID]planCacheEntry
	busy    map[string]struct{}
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithPlanCacheTTL overrides the current-plan cache lifetime.
func WithPlanCacheTTL(ttl time.Duration) FlowOption {
	return func(f *Flow) {
		if ttl > 0 {
			f.planTTL = ttl
		}
	}
}

// NewFlow creates an empty flow context.
func NewFlow(opts ...FlowOption) *Flow {
	f := &Flow{
		planTTL: DefaultPlanCacheTTL,
		plans:   make(map[uuid.UUID]planCacheEntry),
		busy:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) cachedPlan(userID uuid.UUID) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.plans[userID]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.slug, true
}

func (f *Flow) storePlan(userID uuid.UUID, slug string) {
	f.mu.Lock()
	f.plans[userID] = planCacheEntry{slug: slug, expiresAt: time.Now().Add(f.planTTL)}
	f.mu.Unlock()
}

// acquire marks the trigger busy. Returns false when a checkout from the
// same trigger is already in flight.
func (f *Flow) acquire(triggerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, inFlight := f.busy[triggerID]; inFlight {
		return false
	}
	f.busy[triggerID] = struct{}{}
	return true
}

// release frees the trigger. Safe to call for a trigger that was never
// acquired.
func (f *Flow) release(triggerID string) {
	f.mu.Lock()
	delete(f.busy, triggerID)
	f.mu.Unlock()
}
