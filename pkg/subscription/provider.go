package subscription

import "context"

// Provider is the payment provider as seen by the reconciliation flow.
// Implementations wrap the provider SDK and map its objects onto this package's types.
type Provider interface {
	// ParseEvent verifies the signature over the raw body and decodes the event.
	// Returns ErrInvalidSignature (joined with the cause) on verification failure.
	ParseEvent(payload []byte, signature string) (Event, error)

	// GetSubscription fetches the current subscription object.
	GetSubscription(ctx context.Context, subscriptionID string) (ProviderSubscription, error)

	// FindCustomer returns the ID of the customer tagged with userID,
	// or ErrCustomerNotFound.
	FindCustomer(ctx context.Context, userID string) (string, error)

	// CreateCustomer creates a customer tagged with the user's ID.
	CreateCustomer(ctx context.Context, id Identity) (string, error)

	// ListSubscriptions lists the customer's subscriptions of any status.
	ListSubscriptions(ctx context.Context, customerID string) ([]ProviderSubscription, error)

	// CreateCheckoutSession creates a hosted subscription checkout.
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*Link, error)

	// CreatePortalSession creates a billing-portal session for the customer.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Link, error)
}

// CheckoutSessionRequest contains data needed to create a checkout session.
type CheckoutSessionRequest struct {
	CustomerID string // Provider customer ID
	UserID     string // Tagged into session and subscription metadata
	PriceID    string
	SuccessURL string
	CancelURL  string
}
