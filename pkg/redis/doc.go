// Package redis connects to a Redis server with retries and exposes a
// readiness check for health probes.
package redis
