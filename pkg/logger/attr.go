package logger

import "log/slog"

// Error records a single error under the key "error". Nil yields an empty
// attribute, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the acting user under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Plan records a plan slug under the key "plan".
func Plan(slug string) slog.Attr {
	return slog.String("plan", slug)
}

// Provider records the payment gateway under the key "provider".
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

// Outcome records how a checkout pass settled under the key "outcome".
func Outcome(kind string) slog.Attr {
	return slog.String("outcome", kind)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}
