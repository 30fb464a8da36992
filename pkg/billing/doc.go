// Package billing talks to the backend billing endpoints and decides which
// of the two payment gateways is authoritative for an account.
//
// Two gateway integrations exist: Toss, a card-on-file billing gateway
// charging in KRW, and PayPal, a subscription-style gateway charging in
// USD. Both expose their operations through the backend API and return a
// normalized result envelope regardless of gateway.
//
// The authoritative gateway for an account is resolved once at data-load
// time into a ProviderRef tagged union; it is never re-inferred ad hoc
// from identifier strings downstream.
package billing
