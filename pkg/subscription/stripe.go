package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeConfig holds configuration for the Stripe provider.
type StripeConfig struct {
	SecretKey       string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret   string `env:"STRIPE_WEBHOOK_SECRET,required"`
	PriceID         string `env:"STRIPE_PRICE_ID"`
	UserMetadataKey string `env:"STRIPE_USER_METADATA_KEY" envDefault:"supabase_user_id"`
	// APIURL overrides the API base URL, e.g. to point at stripe-mock.
	APIURL string `env:"STRIPE_API_URL"`
}

// StripeProvider implements Provider for Stripe.
type StripeProvider struct {
	api     *client.API
	secret  string
	userKey string
}

// NewStripeProvider creates a new Stripe provider.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var backends *stripe.Backends
	if cfg.APIURL != "" {
		b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(strings.TrimRight(cfg.APIURL, "/")),
		})
		backends = &stripe.Backends{API: b, Connect: b, Uploads: b}
	}

	userKey := cfg.UserMetadataKey
	if userKey == "" {
		userKey = DefaultUserMetadataKey
	}

	return &StripeProvider{
		api:     client.New(cfg.SecretKey, backends),
		secret:  cfg.WebhookSecret,
		userKey: userKey,
	}, nil
}

// ParseEvent verifies the Stripe-Signature header against the raw body and
// decodes the event into one of the Event variants.
func (p *StripeProvider) ParseEvent(payload []byte, signature string) (Event, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}

	h := EventHeader{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data == nil {
		return nil, errors.Join(ErrInvalidPayload, errors.New("event has no data"))
	}
	raw := evt.Data.Raw

	switch evt.Type {
	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, errors.Join(ErrInvalidPayload, err)
		}
		return SubscriptionChanged{EventHeader: h, Subscription: fromStripeSubscription(&sub)}, nil

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, errors.Join(ErrInvalidPayload, err)
		}
		return SubscriptionDeleted{EventHeader: h, Subscription: fromStripeSubscription(&sub)}, nil

	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(raw, &sess); err != nil {
			return nil, errors.Join(ErrInvalidPayload, err)
		}
		md := copyMetadata(sess.Metadata)
		if md[p.userKey] == "" && sess.ClientReferenceID != "" {
			md[p.userKey] = sess.ClientReferenceID
		}
		ref := SubscriptionReferenced{EventHeader: h, Metadata: md}
		if sess.Subscription != nil {
			ref.SubscriptionID = sess.Subscription.ID
		}
		return ref, nil

	case stripe.EventTypeInvoicePaid, stripe.EventTypeInvoicePaymentSucceeded:
		var inv stripe.Invoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			return nil, errors.Join(ErrInvalidPayload, err)
		}
		ref := SubscriptionReferenced{EventHeader: h, Metadata: copyMetadata(inv.Metadata)}
		if inv.Subscription != nil {
			ref.SubscriptionID = inv.Subscription.ID
		}
		return ref, nil

	default:
		return Unhandled{EventHeader: h}, nil
	}
}

// GetSubscription retrieves a subscription by ID.
func (p *StripeProvider) GetSubscription(ctx context.Context, subscriptionID string) (ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return ProviderSubscription{}, errors.Join(ErrProvider, fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err))
	}
	return fromStripeSubscription(sub), nil
}

// FindCustomer searches for the customer tagged with userID in its metadata.
func (p *StripeProvider) FindCustomer(ctx context.Context, userID string) (string, error) {
	params := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   customerQuery(p.userKey, userID),
			Limit:   stripe.Int64(1),
			Context: ctx,
			Single:  true,
		},
	}

	iter := p.api.Customers.Search(params)
	if iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", errors.Join(ErrProvider, fmt.Errorf("search customer: %w", err))
	}
	return "", ErrCustomerNotFound
}

// CreateCustomer creates a customer tagged with the user's ID.
func (p *StripeProvider) CreateCustomer(ctx context.Context, id Identity) (string, error) {
	params := &stripe.CustomerParams{}
	if id.Email != "" {
		params.Email = stripe.String(id.Email)
	}
	params.AddMetadata(p.userKey, id.UserID)
	params.Context = ctx

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", errors.Join(ErrProvider, fmt.Errorf("create customer: %w", err))
	}
	return c.ID, nil
}

// ListSubscriptions lists up to ten of the customer's subscriptions of any status.
func (p *StripeProvider) ListSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Limit = stripe.Int64(10)
	params.Single = true
	params.Context = ctx

	var subs []ProviderSubscription
	iter := p.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, fromStripeSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("list subscriptions: %w", err))
	}
	return subs, nil
}

// CreateCheckoutSession creates a hosted subscription checkout session.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*Link, error) {
	if req.PriceID == "" {
		return nil, ErrMissingPriceID
	}
	if req.CustomerID == "" {
		return nil, ErrMissingCustomer
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(req.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:          stripe.String(req.SuccessURL),
		CancelURL:           stripe.String(req.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
		ClientReferenceID:   stripe.String(req.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{p.userKey: req.UserID},
		},
	}
	params.AddMetadata(p.userKey, req.UserID)
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create checkout session: %w", err))
	}
	if sess.URL == "" {
		return nil, ErrNoCheckoutURL
	}
	return &Link{URL: sess.URL, SessionID: sess.ID}, nil
}

// CreatePortalSession creates a billing-portal session.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Link, error) {
	if customerID == "" {
		return nil, ErrMissingCustomer
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, errors.Join(ErrProvider, fmt.Errorf("create portal session: %w", err))
	}
	if sess.URL == "" {
		return nil, ErrNoPortalURL
	}
	return &Link{URL: sess.URL, SessionID: sess.ID}, nil
}

func fromStripeSubscription(sub *stripe.Subscription) ProviderSubscription {
	if sub == nil {
		return ProviderSubscription{}
	}
	ps := ProviderSubscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		Created:          sub.Created,
		Metadata:         copyMetadata(sub.Metadata),
	}
	if sub.Customer != nil {
		ps.CustomerID = sub.Customer.ID
	}
	return ps
}

func copyMetadata(md map[string]string) map[string]string {
	out := make(map[string]string, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}

// customerQuery builds a Stripe search query matching a metadata value.
// Single quotes in the value are escaped so user input cannot alter the query.
func customerQuery(key, value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return fmt.Sprintf("metadata['%s']:'%s'", key, value)
}
