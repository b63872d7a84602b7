package subscription

import (
	"context"
	"log/slog"

	"github.com/clientflow/clientflow/pkg/logger"
)

// DefaultUserMetadataKey is the provider metadata key carrying the application user ID.
const DefaultUserMetadataKey = "supabase_user_id"

// WebhookIngress verifies provider events and feeds them to the Reconciler.
type WebhookIngress struct {
	provider   Provider
	reconciler *Reconciler
	events     EventLog
	userKey    string
	log        *slog.Logger
	metrics    *Metrics
}

// NewWebhookIngress creates a WebhookIngress. Panics if provider or reconciler is nil.
func NewWebhookIngress(provider Provider, reconciler *Reconciler, opts ...Option) *WebhookIngress {
	if provider == nil {
		panic("subscription: Provider is required")
	}
	if reconciler == nil {
		panic("subscription: Reconciler is required")
	}
	o := applyOptions(opts)
	return &WebhookIngress{
		provider:   provider,
		reconciler: reconciler,
		events:     o.events,
		userKey:    o.userKey,
		log:        o.log,
		metrics:    o.metrics,
	}
}

// Handle verifies and processes one webhook delivery.
//
// Verification failures are returned before any state is read. Events that
// were already processed return OutcomeDuplicate without touching the store.
// An event is marked processed only after it was applied without error, so a
// failed delivery is retried by the provider and processed again.
func (w *WebhookIngress) Handle(ctx context.Context, body []byte, signature string) (Outcome, error) {
	if signature == "" {
		w.metrics.webhook("", "rejected")
		return "", ErrMissingSignature
	}

	evt, err := w.provider.ParseEvent(body, signature)
	if err != nil {
		w.metrics.webhook("", "rejected")
		return "", err
	}
	h := evt.Header()

	l := w.log.With(logger.EventID(h.ID), logger.EventType(h.Type), logger.Component("webhook"))

	if w.events != nil && h.ID != "" {
		seen, err := w.events.Seen(ctx, h.ID)
		if err != nil {
			// Replay detection is best effort; processing is idempotent.
			l.WarnContext(ctx, "event log lookup failed", logger.Error(err))
		} else if seen {
			l.DebugContext(ctx, "duplicate event skipped")
			w.metrics.webhook(h.Type, string(OutcomeDuplicate))
			return OutcomeDuplicate, nil
		}
	}

	outcome, err := w.dispatch(ctx, evt)
	if err != nil {
		l.ErrorContext(ctx, "webhook processing failed", logger.Error(err))
		w.metrics.webhook(h.Type, "failed")
		return "", err
	}

	if w.events != nil && h.ID != "" {
		if err := w.events.MarkProcessed(ctx, h.ID); err != nil {
			l.WarnContext(ctx, "failed to mark event processed", logger.Error(err))
		}
	}

	l.InfoContext(ctx, "webhook processed", logger.Outcome(string(outcome)))
	w.metrics.webhook(h.Type, string(outcome))
	return outcome, nil
}

func (w *WebhookIngress) dispatch(ctx context.Context, evt Event) (Outcome, error) {
	switch e := evt.(type) {
	case SubscriptionChanged:
		sub := e.Subscription
		return w.reconciler.Apply(ctx, sub.CustomerID, sub.Metadata[w.userKey], Normalize(sub))

	case SubscriptionDeleted:
		sub := e.Subscription
		return w.reconciler.Apply(ctx, sub.CustomerID, sub.Metadata[w.userKey], cancellationPayload(sub))

	case SubscriptionReferenced:
		if e.SubscriptionID == "" {
			// One-off payments and invoices without a subscription.
			return OutcomeIgnored, nil
		}
		sub, err := w.provider.GetSubscription(ctx, e.SubscriptionID)
		if err != nil {
			return "", err
		}
		userID := sub.Metadata[w.userKey]
		if userID == "" {
			userID = e.Metadata[w.userKey]
		}
		return w.reconciler.Apply(ctx, sub.CustomerID, userID, Normalize(sub))

	default:
		return OutcomeIgnored, nil
	}
}
