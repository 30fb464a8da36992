// Package handoff embeds and strips short-lived credential tokens on
// cross-domain redirect URLs so an authenticated identity survives a domain
// hop without a second login.
//
// Tokens are carried in the URL fragment, never the query string, so they
// do not leak through referrer headers or analytics. Same-origin
// destinations are left untouched: they already receive the identity
// through shared storage.
//
// Build and Strip are inverses over the embedded token set, and repeated
// Build calls never duplicate keys.
package handoff
