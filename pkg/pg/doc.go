// Package pg bootstraps a pgx/v5 connection pool and runs goose migrations.
//
// Connect parses Config, opens the pool and retries until the database answers a
// ping. Migrate, Rollback and MigrationStatus run goose against migrations
// embedded in the binary:
//
//	//go:embed migrations/*.sql
//	var migrationsFS embed.FS
//
//	pool, err := pg.Connect(ctx, cfg.PG)
//	if err != nil {
//	    return err
//	}
//	err = pg.Migrate(ctx, pool, cfg.PG, pg.Migrations{FS: migrationsFS, Dir: "migrations"}, log)
//
// IsNotFoundError and IsDuplicateKeyError classify driver errors.
package pg
