package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clientflow/clientflow/pkg/config"
	"github.com/clientflow/clientflow/pkg/logger"
	"github.com/clientflow/clientflow/pkg/pg"
	"github.com/clientflow/clientflow/pkg/subscription"
	substore "github.com/clientflow/clientflow/svc/subscription"
)

var syncUserID string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull one user's subscription from Stripe and store it",
	Long: `sync runs the same reconciliation as POST /billing/sync for the given user.
Use it to repair a record after a missed webhook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncUserID == "" {
			return errMissingUser
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSync(ctx, cmd.OutOrStdout(), syncUserID)
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncUserID, "user", "", "user ID to reconcile")
}

func runSync(ctx context.Context, out io.Writer, userID string) error {
	app, logCfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	var (
		pgCfg     pg.Config
		stripeCfg subscription.StripeConfig
	)
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	if err := config.Load(&stripeCfg); err != nil {
		return err
	}
	log := newLogger(app, logCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	provider, err := subscription.NewStripeProvider(stripeCfg)
	if err != nil {
		return err
	}
	svc := newServices(provider, substore.NewPGStore(pool),
		subscription.WithLogger(log),
		subscription.WithUserMetadataKey(stripeCfg.UserMetadataKey),
	)
	return syncUser(ctx, svc.syncer, out, userID, log)
}

// syncUser reconciles userID and prints the resulting snapshot as JSON.
func syncUser(ctx context.Context, syncer *subscription.Syncer, out io.Writer, userID string, log *slog.Logger) error {
	snap, err := syncer.Sync(ctx, userID)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "subscription synced", logger.UserID(userID), logger.Outcome(string(snap.Status)))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
