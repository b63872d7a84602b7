package billing

import (
	"errors"
	"net/http"

	"github.com/clientflow/clientflow/pkg/jwt"
	"github.com/clientflow/clientflow/pkg/subscription"
)

// HTTPError pairs a status code with the message shown to the client.
type HTTPError struct {
	Code    int
	Message string
}

func (e HTTPError) Error() string {
	return e.Message
}

var (
	ErrBadRequest      = HTTPError{Code: http.StatusBadRequest, Message: "invalid request body"}
	ErrUnauthorized    = HTTPError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrPaymentRequired = HTTPError{Code: http.StatusPaymentRequired, Message: "payment_required"}
	ErrNotFound        = HTTPError{Code: http.StatusNotFound, Message: "not found"}
	ErrTooManyRequests = HTTPError{Code: http.StatusTooManyRequests, Message: "too many requests"}
	ErrInternal        = HTTPError{Code: http.StatusInternalServerError, Message: "internal server error"}
)

// clientErrors maps domain errors to responses. Order matters: the first match wins.
var clientErrors = []struct {
	target error
	status int
}{
	{subscription.ErrUnauthenticated, http.StatusUnauthorized},
	{jwt.ErrMissingToken, http.StatusUnauthorized},
	{jwt.ErrInvalidToken, http.StatusUnauthorized},
	{jwt.ErrExpiredToken, http.StatusUnauthorized},
	{jwt.ErrMissingSubject, http.StatusUnauthorized},
	{subscription.ErrCustomerNotFound, http.StatusNotFound},
	{subscription.ErrMissingPriceID, http.StatusBadRequest},
	{subscription.ErrMissingUserID, http.StatusBadRequest},
	{subscription.ErrMissingCustomer, http.StatusBadRequest},
	{subscription.ErrInvalidReturnURL, http.StatusBadRequest},
	{subscription.ErrMissingSignature, http.StatusBadRequest},
	{subscription.ErrInvalidSignature, http.StatusBadRequest},
	{subscription.ErrInvalidPayload, http.StatusBadRequest},
}

// classify translates err into the response the client sees.
// Anything not recognized is a 500 with a generic message.
func classify(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, ce := range clientErrors {
		if errors.Is(err, ce.target) {
			return HTTPError{Code: ce.status, Message: ce.target.Error()}
		}
	}
	return ErrInternal
}
