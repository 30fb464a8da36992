// Package logger builds the slog loggers used across the storefront. It
// produces JSON output for production and text output for development, and
// can inject request-scoped attributes from context into every record.
package logger
