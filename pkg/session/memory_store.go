package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store with a single in-memory slot. It is the
// analogue of tab-scoped storage: cheap, short-lived, and the highest
// priority probe target.
type MemoryStore struct {
	mu      sync.RWMutex
	name    string
	current *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(name string) *MemoryStore {
	if name == "" {
		name = "memory"
	}
	return &MemoryStore{name: name}
}

func (m *MemoryStore) Name() string { return m.name }

// Get returns a copy of the stored session so callers cannot mutate the
// store's state through the returned pointer.
func (m *MemoryStore) Get(ctx context.Context) (*Session, error) {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if current == nil {
		return nil, ErrSessionNotFound
	}
	if !current.IsValid() {
		m.mu.Lock()
		m.current = nil
		m.mu.Unlock()
		return nil, ErrSessionExpired
	}

	sessionCopy := *current
	if current.Token != nil {
		tokenCopy := *current.Token
		sessionCopy.Token = &tokenCopy
	}
	return &sessionCopy, nil
}

func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	if s == nil || s.Token == nil {
		return ErrInvalidSession
	}

	sessionCopy := *s
	tokenCopy := *s.Token
	sessionCopy.Token = &tokenCopy

	m.mu.Lock()
	m.current = &sessionCopy
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return nil
}
