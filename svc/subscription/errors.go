package subscription

import "errors"

var (
	// ErrCustomerTaken is returned when a customer ID is already linked to another user.
	ErrCustomerTaken = errors.New("customer id already linked to another user")
	ErrNilClient     = errors.New("nil redis client")
)
