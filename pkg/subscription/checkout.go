package subscription

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/clientflow/clientflow/pkg/logger"
)

// CheckoutRequest contains caller-supplied checkout parameters.
// Empty fields fall back to configured defaults.
type CheckoutRequest struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Billing starts provider-hosted flows on behalf of an authenticated user.
type Billing struct {
	provider   Provider
	reconciler *Reconciler
	siteURL    string
	defPrice   string
	log        *slog.Logger
}

// NewBilling creates a Billing. Panics if provider or reconciler is nil.
func NewBilling(provider Provider, reconciler *Reconciler, opts ...Option) *Billing {
	if provider == nil {
		panic("subscription: Provider is required")
	}
	if reconciler == nil {
		panic("subscription: Reconciler is required")
	}
	o := applyOptions(opts)
	return &Billing{
		provider:   provider,
		reconciler: reconciler,
		siteURL:    strings.TrimRight(o.siteURL, "/"),
		defPrice:   o.defPrice,
		log:        o.log,
	}
}

// CreateCheckout returns a hosted checkout link for a subscription to the requested price.
// The provider customer is found or created and linked to the user before the
// session is created, so the webhook that follows can resolve the user by customer ID.
func (b *Billing) CreateCheckout(ctx context.Context, id Identity, req CheckoutRequest) (*Link, error) {
	if id.UserID == "" {
		return nil, ErrUnauthenticated
	}

	priceID := strings.TrimSpace(req.PriceID)
	if priceID == "" {
		priceID = b.defPrice
	}
	if priceID == "" {
		return nil, ErrMissingPriceID
	}

	customerID, err := b.ensureCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = b.siteURL + "/billing?success=true"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = b.siteURL + "/billing?canceled=true"
	}

	link, err := b.provider.CreateCheckoutSession(ctx, CheckoutSessionRequest{
		CustomerID: customerID,
		UserID:     id.UserID,
		PriceID:    priceID,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		return nil, err
	}

	b.log.InfoContext(ctx, "checkout session created",
		logger.UserID(id.UserID),
		logger.CustomerID(customerID),
		slog.String("price_id", priceID),
		logger.Component("billing"),
	)
	return link, nil
}

// CreatePortal returns a billing-portal link for the user's provider customer.
// Returns ErrCustomerNotFound if the user never started a checkout.
func (b *Billing) CreatePortal(ctx context.Context, id Identity, returnURL string) (*Link, error) {
	if id.UserID == "" {
		return nil, ErrUnauthenticated
	}

	customerID, err := b.customerOf(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	if returnURL == "" {
		returnURL = b.siteURL + "/billing"
	}
	returnURL, err = withPortalFlag(returnURL)
	if err != nil {
		return nil, err
	}

	return b.provider.CreatePortalSession(ctx, customerID, returnURL)
}

// ensureCustomer finds the user's provider customer or creates one, then links
// it to the local record.
func (b *Billing) ensureCustomer(ctx context.Context, id Identity) (string, error) {
	customerID, err := b.customerOf(ctx, id.UserID)
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		customerID, err = b.provider.CreateCustomer(ctx, id)
		if err != nil {
			return "", err
		}
		b.log.InfoContext(ctx, "provider customer created",
			logger.UserID(id.UserID),
			logger.CustomerID(customerID),
			logger.Component("billing"),
		)
	case err != nil:
		return "", err
	}

	if err := b.reconciler.LinkCustomer(ctx, id.UserID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// customerOf prefers the locally linked customer and falls back to a provider search.
func (b *Billing) customerOf(ctx context.Context, userID string) (string, error) {
	rec, err := b.reconciler.Get(ctx, userID)
	switch {
	case err == nil && rec.CustomerID != "":
		return rec.CustomerID, nil
	case err != nil && !errors.Is(err, ErrRecordNotFound):
		return "", err
	}
	return b.provider.FindCustomer(ctx, userID)
}

func withPortalFlag(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Join(ErrInvalidReturnURL, err)
	}
	q := u.Query()
	q.Set("portal", "return")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
