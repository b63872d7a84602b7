package subscription

import (
	"context"
	"log/slog"

	"github.com/clientflow/clientflow/pkg/logger"
)

// Syncer pulls the current subscription state for a user from the provider
// and writes it through the Reconciler. It is used after checkout redirects
// and whenever the client suspects webhooks have not arrived yet.
type Syncer struct {
	provider   Provider
	reconciler *Reconciler
	log        *slog.Logger
	metrics    *Metrics
}

// NewSyncer creates a Syncer. Panics if provider or reconciler is nil.
func NewSyncer(provider Provider, reconciler *Reconciler, opts ...Option) *Syncer {
	if provider == nil {
		panic("subscription: Provider is required")
	}
	if reconciler == nil {
		panic("subscription: Reconciler is required")
	}
	o := applyOptions(opts)
	return &Syncer{
		provider:   provider,
		reconciler: reconciler,
		log:        o.log,
		metrics:    o.metrics,
	}
}

// Sync reconciles the user's record with the provider and returns the stored snapshot.
// Returns ErrCustomerNotFound if the provider has no customer tagged with userID.
func (s *Syncer) Sync(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrUnauthenticated
	}

	customerID, err := s.provider.FindCustomer(ctx, userID)
	if err != nil {
		s.metrics.sync("failed")
		return Snapshot{}, err
	}

	subs, err := s.provider.ListSubscriptions(ctx, customerID)
	if err != nil {
		s.metrics.sync("failed")
		return Snapshot{}, err
	}

	p := inactivePayload()
	if sub := SelectSubscription(subs); sub != nil {
		p = Normalize(*sub)
	}

	if err := s.reconciler.ApplyByUserID(ctx, userID, customerID, p); err != nil {
		s.metrics.sync("failed")
		return Snapshot{}, err
	}

	s.log.InfoContext(ctx, "subscription synced",
		logger.UserID(userID),
		logger.CustomerID(customerID),
		logger.SubscriptionID(p.SubscriptionID),
		slog.String("status", string(p.Status)),
		logger.Component("sync"),
	)
	s.metrics.sync(string(p.Status))
	return SnapshotOf(p), nil
}

// SelectSubscription picks the subscription that represents the customer's state:
// the first one whose raw status grants access, otherwise the most recently created.
// Returns nil for an empty list.
func SelectSubscription(subs []ProviderSubscription) *ProviderSubscription {
	if len(subs) == 0 {
		return nil
	}
	for i := range subs {
		if Status(subs[i].Status).GrantsAccess() {
			return &subs[i]
		}
	}
	newest := 0
	for i := 1; i < len(subs); i++ {
		if subs[i].Created > subs[newest].Created {
			newest = i
		}
	}
	return &subs[newest]
}
