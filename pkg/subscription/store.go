package subscription

import "context"

// Store persists one Record per user.
//
// Writes are last-write-wins upserts keyed by UserID. There is no ordering token,
// so two concurrent reconciliations for the same user may land in either order.
type Store interface {
	// GetByUserID returns ErrRecordNotFound if the user has no record.
	GetByUserID(ctx context.Context, userID string) (*Record, error)

	// GetByCustomerID returns ErrRecordNotFound if no record carries the customer ID.
	GetByCustomerID(ctx context.Context, customerID string) (*Record, error)

	// Upsert inserts or replaces the record for rec.UserID.
	// Empty CustomerID or SubscriptionID keep the stored values.
	Upsert(ctx context.Context, rec Record) error
}

// EventLog remembers webhook events that were processed successfully.
// Implementations must be safe for concurrent use.
type EventLog interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}
