// Package redis connects a go-redis/v9 client with startup retries and exposes
// a readiness check. The client backs the webhook event log in svc/subscription.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
