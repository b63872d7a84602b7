package subscription

import (
	"strings"
	"time"
)

// Status is the stored subscription status.
// Raw provider statuses outside the known set are kept verbatim.
type Status string

const (
	StatusActive            Status = "active"
	StatusInactive          Status = "inactive"
	StatusTrialing          Status = "trialing"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusUnpaid            Status = "unpaid"
)

// GrantsAccess reports whether the status is one of the access-granting statuses.
// Trialing is accepted even though storage folds it into active, so records
// written by older code paths still evaluate correctly.
func (s Status) GrantsAccess() bool {
	switch Status(strings.ToLower(string(s))) {
	case StatusActive, StatusTrialing:
		return true
	default:
		return false
	}
}

// Record is the locally persisted subscription snapshot, one per user.
type Record struct {
	UserID           string     // Primary key
	CustomerID       string     // Provider customer ID, immutable once set
	SubscriptionID   string     // Most recently observed provider subscription
	Status           Status     // Always normalized
	CurrentPeriodEnd *time.Time // nil means no known expiry
	UpdatedAt        time.Time  // Observability only, never used for conflict resolution
}

// Payload is the normalized part of a record written by every reconciliation path.
type Payload struct {
	SubscriptionID   string
	Status           Status
	CurrentPeriodEnd *time.Time
}

// ProviderSubscription is the subset of the provider's subscription object
// this package reads.
type ProviderSubscription struct {
	ID               string
	CustomerID       string
	Status           string // Raw provider status
	CurrentPeriodEnd int64  // Epoch seconds, 0 when absent
	Created          int64  // Epoch seconds
	Metadata         map[string]string
}

// Snapshot is the wire form of a subscription state returned to clients.
type Snapshot struct {
	Status           Status  `json:"status"`
	CurrentPeriodEnd *string `json:"current_period_end"`
}

// Outcome describes what a reconciliation call did.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"   // Record written
	OutcomeUnlinked  Outcome = "unlinked"  // No row for the customer and no user ID to fall back to
	OutcomeIgnored   Outcome = "ignored"   // Event type not handled or nothing to fetch
	OutcomeDuplicate Outcome = "duplicate" // Event already processed
)

// Identity is the authenticated caller of a user-facing billing operation.
type Identity struct {
	UserID string
	Email  string
}

// Link is a provider-hosted redirect target (checkout or billing portal).
type Link struct {
	URL       string
	SessionID string
}
