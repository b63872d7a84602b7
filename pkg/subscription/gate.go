package subscription

import (
	"context"
	"errors"
	"time"
)

// CanAccess reports whether rec grants access to paid features at now.
// A nil record, a non-granting status or a period end strictly before now deny access.
// A nil period end never expires.
func CanAccess(rec *Record, now time.Time) bool {
	if rec == nil || !rec.Status.GrantsAccess() {
		return false
	}
	if rec.CurrentPeriodEnd != nil && rec.CurrentPeriodEnd.Before(now) {
		return false
	}
	return true
}

// CanAccess evaluates the wire form of a subscription the same way as the
// package-level CanAccess. An unparseable period end is treated as absent.
func (s Snapshot) CanAccess(now time.Time) bool {
	if !s.Status.GrantsAccess() {
		return false
	}
	if s.CurrentPeriodEnd == nil {
		return true
	}
	end, err := time.Parse(time.RFC3339, *s.CurrentPeriodEnd)
	if err != nil {
		return true
	}
	return !end.Before(now)
}

// Snapshot returns the wire form of the record.
func (r Record) Snapshot() Snapshot {
	return SnapshotOf(Payload{
		SubscriptionID:   r.SubscriptionID,
		Status:           r.Status,
		CurrentPeriodEnd: r.CurrentPeriodEnd,
	})
}

// Gate answers access questions against the Store.
type Gate struct {
	reconciler *Reconciler
	now        func() time.Time
}

// NewGate creates a Gate. Panics if reconciler is nil.
func NewGate(reconciler *Reconciler, opts ...Option) *Gate {
	if reconciler == nil {
		panic("subscription: Reconciler is required")
	}
	o := applyOptions(opts)
	return &Gate{reconciler: reconciler, now: o.now}
}

// Check loads the user's record and evaluates it. A user without a record is
// denied. Store failures are returned so callers never grant access on error.
func (g *Gate) Check(ctx context.Context, userID string) (bool, *Record, error) {
	if userID == "" {
		return false, nil, ErrUnauthenticated
	}
	rec, err := g.reconciler.Get(ctx, userID)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return CanAccess(rec, g.now()), rec, nil
}
