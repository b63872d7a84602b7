package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clientflow/clientflow/pkg/pg"
	"github.com/clientflow/clientflow/pkg/subscription"
)

// DB is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const selectRecord = `
SELECT user_id,
       COALESCE(stripe_customer_id, ''),
       COALESCE(stripe_subscription_id, ''),
       status,
       current_period_end,
       updated_at
  FROM user_subscriptions`

const upsertRecord = `
INSERT INTO user_subscriptions (user_id, stripe_customer_id, stripe_subscription_id, status, current_period_end, updated_at)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
    stripe_customer_id     = COALESCE(EXCLUDED.stripe_customer_id, user_subscriptions.stripe_customer_id),
    stripe_subscription_id = COALESCE(EXCLUDED.stripe_subscription_id, user_subscriptions.stripe_subscription_id),
    status                 = EXCLUDED.status,
    current_period_end     = EXCLUDED.current_period_end,
    updated_at             = EXCLUDED.updated_at`

// PGStore is a subscription.Store on top of Postgres.
type PGStore struct {
	db DB
}

var _ subscription.Store = (*PGStore)(nil)

// NewPGStore returns a store using db for all queries.
// Panics if db is nil.
func NewPGStore(db DB) *PGStore {
	if db == nil {
		panic("subscription: nil db")
	}
	return &PGStore{db: db}
}

func (s *PGStore) GetByUserID(ctx context.Context, userID string) (*subscription.Record, error) {
	if userID == "" {
		return nil, subscription.ErrRecordNotFound
	}
	return s.get(ctx, selectRecord+` WHERE user_id = $1`, userID)
}

func (s *PGStore) GetByCustomerID(ctx context.Context, customerID string) (*subscription.Record, error) {
	if customerID == "" {
		return nil, subscription.ErrRecordNotFound
	}
	return s.get(ctx, selectRecord+` WHERE stripe_customer_id = $1`, customerID)
}

func (s *PGStore) get(ctx context.Context, query string, arg string) (*subscription.Record, error) {
	var (
		rec       subscription.Record
		status    string
		periodEnd *time.Time
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&rec.UserID,
		&rec.CustomerID,
		&rec.SubscriptionID,
		&status,
		&periodEnd,
		&rec.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, subscription.ErrRecordNotFound
		}
		return nil, err
	}

	rec.Status = subscription.Status(status)
	if periodEnd != nil {
		utc := periodEnd.UTC()
		rec.CurrentPeriodEnd = &utc
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}

func (s *PGStore) Upsert(ctx context.Context, rec subscription.Record) error {
	if rec.UserID == "" {
		return subscription.ErrMissingUserID
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, upsertRecord,
		rec.UserID,
		rec.CustomerID,
		rec.SubscriptionID,
		string(rec.Status),
		rec.CurrentPeriodEnd,
		updatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrCustomerTaken, err)
		}
		return err
	}
	return nil
}
