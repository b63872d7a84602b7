package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clientflow/clientflow/pkg/logger"
)

// Reconciler applies normalized payloads to the Store.
// It never retries and never swallows store failures: every error is returned
// joined with ErrStore so callers can translate it at their boundary.
type Reconciler struct {
	store   Store
	now     func() time.Time
	log     *slog.Logger
	metrics *Metrics
}

// NewReconciler creates a Reconciler. Panics if store is nil.
func NewReconciler(store Store, opts ...Option) *Reconciler {
	if store == nil {
		panic("subscription: Store is required")
	}
	o := applyOptions(opts)
	return &Reconciler{
		store:   store,
		now:     o.now,
		log:     o.log,
		metrics: o.metrics,
	}
}

// ApplyByCustomerID updates the record linked to customerID.
// Returns false if no record carries that customer ID.
func (r *Reconciler) ApplyByCustomerID(ctx context.Context, customerID string, p Payload) (bool, error) {
	if customerID == "" {
		return false, nil
	}

	rec, err := r.store.GetByCustomerID(ctx, customerID)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Join(ErrStore, err)
	}

	if err := r.write(ctx, rec.UserID, customerID, p); err != nil {
		return false, err
	}
	r.metrics.storeWrite("customer_id")
	return true, nil
}

// ApplyByUserID upserts the record for userID, always writing customerID.
func (r *Reconciler) ApplyByUserID(ctx context.Context, userID, customerID string, p Payload) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := r.write(ctx, userID, customerID, p); err != nil {
		return err
	}
	r.metrics.storeWrite("user_id")
	return nil
}

// Apply tries the customer ID first and falls back to the user ID carried in
// provider metadata. When neither resolves a user the payload is dropped and
// OutcomeUnlinked is returned.
func (r *Reconciler) Apply(ctx context.Context, customerID, userID string, p Payload) (Outcome, error) {
	updated, err := r.ApplyByCustomerID(ctx, customerID, p)
	if err != nil {
		return "", err
	}
	if updated {
		return OutcomeApplied, nil
	}

	if userID == "" {
		r.log.WarnContext(ctx, "no subscription record linked to customer",
			logger.CustomerID(customerID),
			logger.SubscriptionID(p.SubscriptionID),
			logger.Component("reconciler"),
		)
		return OutcomeUnlinked, nil
	}

	if err := r.ApplyByUserID(ctx, userID, customerID, p); err != nil {
		return "", err
	}
	return OutcomeApplied, nil
}

// LinkCustomer records the provider customer for a user the first time one is
// assigned. A missing record is created as inactive; an existing record only
// gets the customer ID if it has none, since customer IDs are immutable.
func (r *Reconciler) LinkCustomer(ctx context.Context, userID, customerID string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if customerID == "" {
		return ErrMissingCustomer
	}

	rec, err := r.store.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		if err := r.write(ctx, userID, customerID, inactivePayload()); err != nil {
			return err
		}
		r.metrics.storeWrite("link")
		return nil
	case err != nil:
		return errors.Join(ErrStore, err)
	}

	if rec.CustomerID != "" {
		if rec.CustomerID != customerID {
			r.log.WarnContext(ctx, "user already linked to a different customer",
				logger.UserID(userID),
				logger.CustomerID(rec.CustomerID),
				slog.String("new_customer_id", customerID),
				logger.Component("reconciler"),
			)
		}
		return nil
	}

	rec.CustomerID = customerID
	rec.UpdatedAt = r.now().UTC()
	if err := r.store.Upsert(ctx, *rec); err != nil {
		return errors.Join(ErrStore, err)
	}
	r.metrics.storeWrite("link")
	return nil
}

// Get returns the stored record for userID.
func (r *Reconciler) Get(ctx context.Context, userID string) (*Record, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	rec, err := r.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, err
		}
		return nil, errors.Join(ErrStore, err)
	}
	return rec, nil
}

func (r *Reconciler) write(ctx context.Context, userID, customerID string, p Payload) error {
	rec := Record{
		UserID:           userID,
		CustomerID:       customerID,
		SubscriptionID:   p.SubscriptionID,
		Status:           p.Status,
		CurrentPeriodEnd: p.CurrentPeriodEnd,
		UpdatedAt:        r.now().UTC(),
	}
	if err := r.store.Upsert(ctx, rec); err != nil {
		return errors.Join(ErrStore, err)
	}

	r.log.DebugContext(ctx, "subscription record written",
		logger.UserID(userID),
		logger.CustomerID(customerID),
		logger.SubscriptionID(p.SubscriptionID),
		slog.String("status", string(p.Status)),
	)
	return nil
}
