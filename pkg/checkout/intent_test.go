package checkout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatlabs/storefront/pkg/checkout"
)

func TestParseAutoCheckout(t *testing.T) {
	t.Parallel()

	t.Run("resumable url yields intent", func(t *testing.T) {
		t.Parallel()
		raw := "https://www.example.com/pricing?auto_checkout=1&plan=pro"
		intent, ok := checkout.ParseAutoCheckout(raw)
		require.True(t, ok)
		assert.Equal(t, "pro", intent.PlanSlug)
		assert.Equal(t, raw, intent.ReturnTo)
	})

	t.Run("requires the auto_checkout flag", func(t *testing.T) {
		t.Parallel()
		_, ok := checkout.ParseAutoCheckout("https://www.example.com/pricing?plan=pro")
		assert.False(t, ok)
	})

	t.Run("requires a plan", func(t *testing.T) {
		t.Parallel()
		_, ok := checkout.ParseAutoCheckout("https://www.example.com/pricing?auto_checkout=1")
		assert.False(t, ok)

		_, ok = checkout.ParseAutoCheckout("https://www.example.com/pricing?auto_checkout=1&plan=++")
		assert.False(t, ok)
	})

	t.Run("flag must be exactly 1", func(t *testing.T) {
		t.Parallel()
		_, ok := checkout.ParseAutoCheckout("https://www.example.com/pricing?auto_checkout=true&plan=pro")
		assert.False(t, ok)
	})
}
