package ratelimiter

import "time"

// Result is the outcome of one rate limit check.
type Result struct {
	Limit     int       // Requests allowed per window
	Remaining int       // Requests left in the current window, negative when denied
	ResetAt   time.Time // End of the current window
}

// Allowed reports whether the request fits in the window.
func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before the next request, or 0 if allowed.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Config defines a fixed window limit.
type Config struct {
	Limit  int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}
