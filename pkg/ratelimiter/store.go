package ratelimiter

import (
	"context"
	"time"
)

// Store counts hits per key in fixed windows.
type Store interface {
	// Increment adds one hit to key. The window starts with the first hit and
	// lasts window. Returns the hit count in the window and when it ends.
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)

	// Reset clears the window for key.
	Reset(ctx context.Context, key string) error
}
