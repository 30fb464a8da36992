// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, and a health-check handler. Run blocks until the context is
// cancelled or an interrupt/TERM signal arrives, then drains connections
// within the shutdown deadline.
package httpserver
