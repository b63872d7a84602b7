package subscription

import (
	"strings"
	"time"
)

// NormalizeStatus lower-cases a raw provider status and folds trialing into active.
// Unknown statuses pass through so new provider states never fail reconciliation.
func NormalizeStatus(raw string) Status {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		// Provider objects without a status are not yet usable.
		return StatusIncomplete
	}
	switch Status(status) {
	case StatusActive, StatusTrialing:
		return StatusActive
	default:
		return Status(status)
	}
}

// Normalize converts a provider subscription into the payload stored for its owner.
func Normalize(sub ProviderSubscription) Payload {
	return Payload{
		SubscriptionID:   sub.ID,
		Status:           NormalizeStatus(sub.Status),
		CurrentPeriodEnd: periodEnd(sub.CurrentPeriodEnd),
	}
}

// cancellationPayload is written for deleted subscriptions regardless of the
// status carried by the deletion event.
func cancellationPayload(sub ProviderSubscription) Payload {
	return Payload{
		SubscriptionID:   sub.ID,
		Status:           StatusCanceled,
		CurrentPeriodEnd: nil,
	}
}

// inactivePayload is written when the provider has no subscription at all for a customer.
func inactivePayload() Payload {
	return Payload{Status: StatusInactive}
}

// periodEnd treats zero and negative epochs as no known period end.
func periodEnd(epochSeconds int64) *time.Time {
	if epochSeconds <= 0 {
		return nil
	}
	t := time.Unix(epochSeconds, 0).UTC()
	return &t
}

// SnapshotOf renders a payload in its wire form.
func SnapshotOf(p Payload) Snapshot {
	s := Snapshot{Status: p.Status}
	if p.CurrentPeriodEnd != nil {
		v := p.CurrentPeriodEnd.UTC().Format(time.RFC3339)
		s.CurrentPeriodEnd = &v
	}
	return s
}
