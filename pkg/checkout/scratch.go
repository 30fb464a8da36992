package checkout

import (
	"context"
	"sync"
	"time"
)

// Scratch is the short-lived client-side state shared between the checkout
// page and the payment callback page: the pending target plan slug and the
// pending post-login return URL. Values are consumed once or cleared by
// sign-out.
type Scratch interface {
	PutPlan(ctx context.Context, slug string) error
	// TakePlan returns the pending plan slug and removes it. An empty
	// string means nothing was pending.
	TakePlan(ctx context.Context) (string, error)

	PutReturnTo(ctx context.Context, rawURL string) error
	TakeReturnTo(ctx context.Context) (string, error)

	// Clear drops everything; called on sign-out.
	Clear(ctx context.Context) error
}

type scratchEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryScratch implements Scratch with expiring in-memory slots.
type MemoryScratch struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]scratchEntry
}

// NewMemoryScratch creates a scratch store whose values expire after ttl.
// A zero ttl keeps values until consumed.
func NewMemoryScratch(ttl time.Duration) *MemoryScratch {
	return &MemoryScratch{
		ttl:     ttl,
		entries: make(map[string]scratchEntry),
	}
}

const (
	scratchKeyPlan     = "target_plan"
	scratchKeyReturnTo = "return_to"
)

func (m *MemoryScratch) put(key, value string) {
	entry := scratchEntry{value: value}
	if m.ttl > 0 {
		entry.expiresAt = time.Now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

func (m *MemoryScratch) take(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return ""
	}
	delete(m.entries, key)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return ""
	}
	return entry.value
}

func (m *MemoryScratch) PutPlan(ctx context.Context, slug string) error {
	m.put(scratchKeyPlan, slug)
	return nil
}

func (m *MemoryScratch) TakePlan(ctx context.Context) (string, error) {
	return m.take(scratchKeyPlan), nil
}

func (m *MemoryScratch) PutReturnTo(ctx context.Context, rawURL string) error {
	m.put(scratchKeyReturnTo, rawURL)
	return nil
}

func (m *MemoryScratch) TakeReturnTo(ctx context.Context) (string, error) {
	return m.take(scratchKeyReturnTo), nil
}

func (m *MemoryScratch) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]scratchEntry)
	m.mu.Unlock()
	return nil
}
