package subscription

import (
	"embed"

	"github.com/clientflow/clientflow/pkg/pg"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations holds the schema for the user_subscriptions and processed_webhook_events tables.
var Migrations = pg.Migrations{FS: migrationsFS, Dir: "migrations"}
