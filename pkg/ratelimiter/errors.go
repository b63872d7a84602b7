package ratelimiter

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid rate limit configuration")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
	ErrEmptyKey         = errors.New("empty rate limit key")

	// ErrLimited is passed to the ErrorHandler when a request exceeds the limit.
	ErrLimited = errors.New("rate limit exceeded")
)
