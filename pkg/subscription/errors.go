package subscription

import "errors"

var (
	ErrRecordNotFound   = errors.New("subscription record not found")
	ErrUnauthenticated  = errors.New("authenticated user is required")
	ErrCustomerNotFound = errors.New("no customer on file")

	// Webhook verification
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrInvalidPayload   = errors.New("invalid webhook payload")

	// Input validation
	ErrMissingPriceID   = errors.New("price ID is required")
	ErrMissingUserID    = errors.New("user ID is required")
	ErrMissingCustomer  = errors.New("provider customer ID is required")
	ErrInvalidReturnURL = errors.New("invalid return URL")

	// Downstream failures
	ErrStore    = errors.New("subscription store error")
	ErrProvider = errors.New("payment provider error")

	// Provider configuration
	ErrMissingAPIKey        = errors.New("payment provider API key is required")
	ErrMissingWebhookSecret = errors.New("payment provider webhook secret is required")
	ErrNoCheckoutURL        = errors.New("no checkout URL returned from provider")
	ErrNoPortalURL          = errors.New("no portal URL returned from provider")
)

// IsValidationError reports whether err is caused by missing or malformed caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingPriceID) ||
		errors.Is(err, ErrMissingUserID) ||
		errors.Is(err, ErrMissingCustomer) ||
		errors.Is(err, ErrInvalidReturnURL)
}

// IsVerificationError reports whether err means the webhook was not authentic.
func IsVerificationError(err error) bool {
	return errors.Is(err, ErrMissingSignature) || errors.Is(err, ErrInvalidSignature)
}
