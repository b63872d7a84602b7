// Package ratelimiter provides fixed window rate limiting with in-memory and
// Redis storage and an HTTP middleware.
//
// Each key gets Config.Limit hits per Config.Window. The window starts with
// the first hit and is shared across instances when the Redis store is used.
//
//	store := ratelimiter.NewRedisStore(rdb, "")
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{Limit: 20, Window: time.Minute})
//	if err != nil {
//		return err
//	}
//	r.Use(ratelimiter.Middleware(limiter, userKey, nil))
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every checked response and Retry-After on denied ones.
package ratelimiter
