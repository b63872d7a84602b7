package subscription_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientflow/clientflow/pkg/logger"
	"github.com/clientflow/clientflow/pkg/pg"
	sub "github.com/clientflow/clientflow/pkg/subscription"
	substore "github.com/clientflow/clientflow/svc/subscription"
)

// setupPostgres connects to TEST_PG_URL, applies migrations and empties the tables.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_PG_URL")
	if url == "" {
		t.Skip("TEST_PG_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{ConnectionString: url, MaxConns: 4, RetryAttempts: 1, MigrationsTable: "schema_migrations"}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, cfg, substore.Migrations, logger.Discard()))
	_, err = pool.Exec(ctx, `TRUNCATE user_subscriptions, processed_webhook_events`)
	require.NoError(t, err)
	return pool
}

func TestNewPGStore_NilDB(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { substore.NewPGStore(nil) })
}

func TestPGStore(t *testing.T) {
	pool := setupPostgres(t)
	store := substore.NewPGStore(pool)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		_, err := store.GetByUserID(ctx, "missing")
		assert.ErrorIs(t, err, sub.ErrRecordNotFound)
		_, err = store.GetByCustomerID(ctx, "")
		assert.ErrorIs(t, err, sub.ErrRecordNotFound)
	})

	t.Run("insert and read back", func(t *testing.T) {
		end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Upsert(ctx, sub.Record{
			UserID:           "u1",
			CustomerID:       "cus_1",
			SubscriptionID:   "sub_1",
			Status:           sub.StatusActive,
			CurrentPeriodEnd: &end,
		}))

		rec, err := store.GetByCustomerID(ctx, "cus_1")
		require.NoError(t, err)
		assert.Equal(t, "u1", rec.UserID)
		assert.Equal(t, "sub_1", rec.SubscriptionID)
		assert.Equal(t, sub.StatusActive, rec.Status)
		require.NotNil(t, rec.CurrentPeriodEnd)
		assert.True(t, rec.CurrentPeriodEnd.Equal(end))
		assert.False(t, rec.UpdatedAt.IsZero())
	})

	t.Run("empty IDs keep stored values", func(t *testing.T) {
		require.NoError(t, store.Upsert(ctx, sub.Record{UserID: "u1", Status: sub.StatusCanceled}))

		rec, err := store.GetByUserID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", rec.CustomerID)
		assert.Equal(t, "sub_1", rec.SubscriptionID)
		assert.Equal(t, sub.StatusCanceled, rec.Status)
		assert.Nil(t, rec.CurrentPeriodEnd)
	})

	t.Run("customer linked once", func(t *testing.T) {
		err := store.Upsert(ctx, sub.Record{UserID: "u2", CustomerID: "cus_1", Status: sub.StatusInactive})
		assert.ErrorIs(t, err, substore.ErrCustomerTaken)
	})

	t.Run("requires user ID", func(t *testing.T) {
		assert.ErrorIs(t, store.Upsert(ctx, sub.Record{}), sub.ErrMissingUserID)
	})

	t.Run("works behind the reconciler", func(t *testing.T) {
		r := sub.NewReconciler(store)
		require.NoError(t, r.LinkCustomer(ctx, "u3", "cus_3"))

		applied, err := r.ApplyByCustomerID(ctx, "cus_3", sub.Normalize(sub.ProviderSubscription{
			ID: "sub_3", CustomerID: "cus_3", Status: "trialing",
		}))
		require.NoError(t, err)
		assert.True(t, applied)

		rec, err := r.Get(ctx, "u3")
		require.NoError(t, err)
		assert.Equal(t, sub.StatusActive, rec.Status)
	})
}

func TestPGEventLog(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	l := substore.NewPGEventLog(pool, substore.WithEventTTL(time.Hour))

	seen, err := l.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, l.MarkProcessed(ctx, "evt_1"))
	require.NoError(t, l.MarkProcessed(ctx, "evt_1"))

	seen, err = l.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	_, err = pool.Exec(ctx, `UPDATE processed_webhook_events SET processed_at = now() - interval '2 hours'`)
	require.NoError(t, err)

	seen, err = l.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	n, err := l.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
