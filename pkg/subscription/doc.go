// Package subscription keeps a local, per-user record of a payment provider
// subscription in sync with the provider and answers access questions against it.
//
// The provider is the source of truth. Local state converges to it through three
// paths that all end in the same idempotent upsert:
//
//   - WebhookIngress: verified provider events (push)
//   - Syncer: an on-demand pull for a single user, used after checkout redirects
//   - Billing: links a newly created provider customer to the user before checkout
//
// The Reconciler resolves the owner of an update by provider customer ID first and
// falls back to the user ID carried in provider metadata. Statuses are normalized
// before they are stored: trialing is folded into active and unknown statuses pass
// through unchanged.
//
// # Architecture
//
//   - Store: persists one Record per user (MemoryStore here, Postgres in svc/subscription)
//   - Provider: the payment provider (StripeProvider)
//   - EventLog: optional replay detection for webhook events
//   - Gate and CanAccess: the paid-feature access decision
//
// # Usage
//
//	provider, err := subscription.NewStripeProvider(cfg.Stripe)
//	if err != nil {
//	    return err
//	}
//	rec := subscription.NewReconciler(store, subscription.WithLogger(log))
//	ingress := subscription.NewWebhookIngress(provider, rec,
//	    subscription.WithEventLog(events),
//	    subscription.WithUserMetadataKey(cfg.Stripe.UserMetadataKey),
//	)
//
//	outcome, err := ingress.Handle(ctx, body, r.Header.Get("Stripe-Signature"))
//
// # Ordering
//
// Writes are last-write-wins. Provider events carry no ordering token that is stored,
// so a late delivery of an older event can overwrite a newer state until the next
// event or sync corrects it.
//
// # Error Handling
//
// Errors are sentinel values joined with their cause. Use IsVerificationError and
// IsValidationError to map them to client errors; ErrStore and ErrProvider are server
// errors.
package subscription
