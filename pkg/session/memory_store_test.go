package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatlabs/storefront/pkg/session"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := session.NewMemoryStore("tab")
		s := session.NewSession(uuid.New(), "user@example.com", "acc", "ref", time.Hour)
		require.NoError(t, store.Set(ctx, s))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, s.UserID, got.UserID)
		assert.Equal(t, "user@example.com", got.Email)
		assert.Equal(t, "acc", got.Token.AccessToken)
	})

	t.Run("returned session is a copy", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := session.NewMemoryStore("tab")
		require.NoError(t, store.Set(ctx, session.NewSession(uuid.New(), "user@example.com", "acc", "ref", time.Hour)))

		first, err := store.Get(ctx)
		require.NoError(t, err)
		first.Email = "mutated@example.com"
		first.Token.AccessToken = "mutated"

		second, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", second.Email)
		assert.Equal(t, "acc", second.Token.AccessToken)
	})

	t.Run("rejects nil and tokenless sessions", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := session.NewMemoryStore("tab")
		assert.ErrorIs(t, store.Set(ctx, nil), session.ErrInvalidSession)
		assert.ErrorIs(t, store.Set(ctx, &session.Session{UserID: uuid.New()}), session.ErrInvalidSession)
	})

	t.Run("expired session is evicted on read", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := session.NewMemoryStore("tab")
		require.NoError(t, store.Set(ctx, session.NewSession(uuid.New(), "old@example.com", "a", "r", -time.Second)))

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrSessionExpired)

		_, err = store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := session.NewMemoryStore("tab")
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Set(ctx, session.NewSession(uuid.New(), "u@example.com", "a", "r", time.Hour)))
		require.NoError(t, store.Clear(ctx))
		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}
