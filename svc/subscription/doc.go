// Package subscription provides the production storage adapters for
// pkg/subscription: a Postgres-backed Store and EventLog built on pgx, a
// Redis-backed EventLog built on go-redis, and the embedded goose migrations
// that create their tables.
//
// Usage:
//
//	pool, err := pg.Connect(ctx, cfg.Postgres)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg.Postgres, substore.Migrations, log); err != nil {
//		return err
//	}
//	store := substore.NewPGStore(pool)
//	events := substore.NewRedisEventLog(rdb, substore.WithEventTTL(72*time.Hour))
//
// Records are keyed by user ID. The customer ID column is unique so webhook
// events can be routed back to their user. Empty customer or subscription IDs
// never overwrite stored values.
package subscription
