package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clientflow/clientflow/pkg/config"
	"github.com/clientflow/clientflow/pkg/pg"
	substore "github.com/clientflow/clientflow/svc/subscription"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runMigrate(ctx, direction)
	},
}

func runMigrate(ctx context.Context, direction string) error {
	app, logCfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	log := newLogger(app, logCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	switch direction {
	case "up":
		return pg.Migrate(ctx, pool, pgCfg, substore.Migrations, log)
	case "down":
		return pg.Rollback(ctx, pool, pgCfg, substore.Migrations, log)
	case "status":
		return pg.MigrationStatus(ctx, pool, pgCfg, substore.Migrations, log)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}
