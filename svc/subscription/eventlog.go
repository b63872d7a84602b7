package subscription

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clientflow/clientflow/pkg/subscription"
)

const (
	DefaultEventTTL       = 72 * time.Hour
	DefaultEventKeyPrefix = "clientflow:stripe:event:"
)

type eventLogOptions struct {
	ttl    time.Duration
	prefix string
}

// EventLogOption configures the processed event logs.
type EventLogOption func(*eventLogOptions)

// WithEventTTL sets how long a processed event is remembered.
// Stripe retries for up to three days, so shorter values let late retries through.
func WithEventTTL(ttl time.Duration) EventLogOption {
	return func(o *eventLogOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithEventKeyPrefix sets the Redis key prefix. Ignored by the Postgres log.
func WithEventKeyPrefix(prefix string) EventLogOption {
	return func(o *eventLogOptions) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

func applyEventLogOptions(opts []EventLogOption) eventLogOptions {
	o := eventLogOptions{ttl: DefaultEventTTL, prefix: DefaultEventKeyPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RedisEventLog remembers processed events as expiring Redis keys.
type RedisEventLog struct {
	client redis.UniversalClient
	opts   eventLogOptions
}

var _ subscription.EventLog = (*RedisEventLog)(nil)

// NewRedisEventLog panics if client is nil.
func NewRedisEventLog(client redis.UniversalClient, opts ...EventLogOption) *RedisEventLog {
	if client == nil {
		panic(ErrNilClient)
	}
	return &RedisEventLog{client: client, opts: applyEventLogOptions(opts)}
}

func (l *RedisEventLog) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RedisEventLog) MarkProcessed(ctx context.Context, eventID string) error {
	// The first processing time wins.
	return l.client.SetNX(ctx, l.key(eventID), time.Now().UTC().Unix(), l.opts.ttl).Err()
}

func (l *RedisEventLog) key(eventID string) string {
	return l.opts.prefix + eventID
}

// PGEventLog remembers processed events in the processed_webhook_events table.
// Rows older than the TTL are treated as unseen and removed by Prune.
type PGEventLog struct {
	db   DB
	opts eventLogOptions
	now  func() time.Time
}

var _ subscription.EventLog = (*PGEventLog)(nil)

// NewPGEventLog panics if db is nil.
func NewPGEventLog(db DB, opts ...EventLogOption) *PGEventLog {
	if db == nil {
		panic("subscription: nil db")
	}
	return &PGEventLog{db: db, opts: applyEventLogOptions(opts), now: time.Now}
}

func (l *PGEventLog) Seen(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	err := l.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_webhook_events WHERE event_id = $1 AND processed_at > $2)`,
		eventID, l.cutoff(),
	).Scan(&seen)
	return seen, err
}

func (l *PGEventLog) MarkProcessed(ctx context.Context, eventID string) error {
	_, err := l.db.Exec(ctx,
		`INSERT INTO processed_webhook_events (event_id, processed_at) VALUES ($1, $2)
		 ON CONFLICT (event_id) DO UPDATE SET processed_at = EXCLUDED.processed_at`,
		eventID, l.now().UTC(),
	)
	return err
}

// Prune deletes events older than the TTL and returns how many were removed.
func (l *PGEventLog) Prune(ctx context.Context) (int64, error) {
	tag, err := l.db.Exec(ctx, `DELETE FROM processed_webhook_events WHERE processed_at <= $1`, l.cutoff())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (l *PGEventLog) cutoff() time.Time {
	return l.now().UTC().Add(-l.opts.ttl)
}
