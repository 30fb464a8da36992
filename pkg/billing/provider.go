package billing

import (
	"strings"

	"golang.org/x/text/currency"
)

// ProviderKind identifies the payment gateway managing a subscription.
type ProviderKind string

const (
	ProviderToss    ProviderKind = "toss"
	ProviderPayPal  ProviderKind = "paypal"
	ProviderUnknown ProviderKind = ""
)

// PayPal subscription identifiers carry a fixed literal prefix.
const paypalSubscriptionPrefix = "I-"

// ProviderRef is the tagged union identifying the authoritative gateway
// for a subscription. It is constructed once when subscription data is
// loaded; downstream code switches on Kind instead of sniffing identifier
// strings.
type ProviderRef struct {
	Kind           ProviderKind
	SubscriptionID string
}

// Known reports whether a gateway was resolved.
func (r ProviderRef) Known() bool { return r.Kind != ProviderUnknown }

// Currency returns the settlement currency of the gateway. One currency
// per provider: Toss settles in KRW, PayPal in USD.
func (r ProviderRef) Currency() (currency.Unit, bool) {
	switch r.Kind {
	case ProviderToss:
		return currency.KRW, true
	case ProviderPayPal:
		return currency.USD, true
	default:
		return currency.Unit{}, false
	}
}

// ResolveProvider determines the gateway for a subscription row. Order:
// the explicit provider field wins when present; otherwise the provider
// subscription id prefix convention decides; with neither, the reference
// is Unknown and gateway-specific actions are unavailable.
func ResolveProvider(provider, providerSubscriptionID string) ProviderRef {
	ref := ProviderRef{SubscriptionID: providerSubscriptionID}

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case string(ProviderToss):
		ref.Kind = ProviderToss
		return ref
	case string(ProviderPayPal):
		ref.Kind = ProviderPayPal
		return ref
	}

	if providerSubscriptionID == "" {
		return ref
	}
	if strings.HasPrefix(providerSubscriptionID, paypalSubscriptionPrefix) {
		ref.Kind = ProviderPayPal
	} else {
		ref.Kind = ProviderToss
	}
	return ref
}
