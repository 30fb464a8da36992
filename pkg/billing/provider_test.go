package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goatlabs/storefront/pkg/billing"
)

func TestResolveProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		subID    string
		want     billing.ProviderKind
	}{
		{"explicit toss field wins", "toss", "I-LOOKS-LIKE-PAYPAL", billing.ProviderToss},
		{"explicit paypal field wins", "paypal", "billing_key_123", billing.ProviderPayPal},
		{"explicit field is case-insensitive", "PayPal", "", billing.ProviderPayPal},
		{"paypal prefix inferred", "", "I-ABC123", billing.ProviderPayPal},
		{"non-prefixed id means card gateway", "", "bk_99887766", billing.ProviderToss},
		{"nothing known", "", "", billing.ProviderUnknown},
		{"unrecognized field falls through to prefix", "stripe", "I-ABC123", billing.ProviderPayPal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ref := billing.ResolveProvider(tt.provider, tt.subID)
			assert.Equal(t, tt.want, ref.Kind)
			assert.Equal(t, tt.subID, ref.SubscriptionID)
		})
	}
}

func TestProviderRef_Currency(t *testing.T) {
	t.Parallel()

	toss := billing.ResolveProvider("toss", "")
	unit, ok := toss.Currency()
	assert.True(t, ok)
	assert.Equal(t, "KRW", unit.String())

	paypal := billing.ResolveProvider("paypal", "")
	unit, ok = paypal.Currency()
	assert.True(t, ok)
	assert.Equal(t, "USD", unit.String())

	unknown := billing.ResolveProvider("", "")
	_, ok = unknown.Currency()
	assert.False(t, ok)
	assert.False(t, unknown.Known())
}
