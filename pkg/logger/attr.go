package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil err yields an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the application user under the key "user_id".
func UserID(id string) slog.Attr {
	return optionalString("user_id", id)
}

// CustomerID records the payment provider customer under the key "customer_id".
func CustomerID(id string) slog.Attr {
	return optionalString("customer_id", id)
}

// SubscriptionID records the payment provider subscription under the key "subscription_id".
func SubscriptionID(id string) slog.Attr {
	return optionalString("subscription_id", id)
}

// EventID records a provider event ID under the key "event_id".
func EventID(id string) slog.Attr {
	return optionalString("event_id", id)
}

// EventType records a provider event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return optionalString("event_type", eventType)
}

// Outcome records the result of a reconciliation under the key "outcome".
func Outcome(outcome string) slog.Attr {
	return slog.String("outcome", outcome)
}

// RequestID records the request correlation ID under the key "request_id".
func RequestID(id string) slog.Attr {
	return optionalString("request_id", id)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records d under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func optionalString(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}
