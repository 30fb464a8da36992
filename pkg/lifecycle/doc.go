// Package lifecycle manages an existing subscription after checkout:
// loading the merged subscription summary, scheduling and cancelling
// downgrades, cancelling the subscription, and submitting refund
// requests. All gateway-specific routing goes through the resolved
// provider reference; no identifier sniffing happens past the loader.
package lifecycle
