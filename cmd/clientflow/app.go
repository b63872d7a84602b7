package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/clientflow/clientflow/pkg/httpserver"
	"github.com/clientflow/clientflow/pkg/logger"
	"github.com/clientflow/clientflow/pkg/pg"
	"github.com/clientflow/clientflow/pkg/ratelimiter"
	"github.com/clientflow/clientflow/pkg/redis"
	"github.com/clientflow/clientflow/pkg/requestid"
	"github.com/clientflow/clientflow/pkg/subscription"
	substore "github.com/clientflow/clientflow/svc/subscription"
)

func newLogger(app appConfig, cfg logger.Config) *slog.Logger {
	l := logger.New(
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithConfig(cfg),
		logger.WithContextExtractors(requestid.LogExtractor()),
	)
	logger.SetAsDefault(l)
	return l
}

// services are the subscription components shared by every entry point.
type services struct {
	reconciler *subscription.Reconciler
	webhook    *subscription.WebhookIngress
	billing    *subscription.Billing
	syncer     *subscription.Syncer
	gate       *subscription.Gate
}

func newServices(provider subscription.Provider, store subscription.Store, opts ...subscription.Option) services {
	reconciler := subscription.NewReconciler(store, opts...)
	return services{
		reconciler: reconciler,
		webhook:    subscription.NewWebhookIngress(provider, reconciler, opts...),
		billing:    subscription.NewBilling(provider, reconciler, opts...),
		syncer:     subscription.NewSyncer(provider, reconciler, opts...),
		gate:       subscription.NewGate(reconciler, opts...),
	}
}

// infra holds the open connections of a running process.
type infra struct {
	pool   *pgxpool.Pool
	redis  *goredis.Client
	events subscription.EventLog
	pruner eventPruner
	checks map[string]httpserver.Check
}

func (i *infra) Close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.pool != nil {
		i.pool.Close()
	}
}

func openInfra(ctx context.Context, cfg serveConfig, log *slog.Logger) (*infra, error) {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	in := &infra{
		pool:   pool,
		checks: map[string]httpserver.Check{"postgres": pg.Healthcheck(pool)},
	}

	switch cfg.App.EventLog {
	case eventLogRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.redis = client
		in.events = substore.NewRedisEventLog(client, substore.WithEventTTL(cfg.App.EventLogTTL))
		in.checks["redis"] = redis.Healthcheck(client)
	case eventLogPostgres:
		events := substore.NewPGEventLog(pool, substore.WithEventTTL(cfg.App.EventLogTTL))
		in.events = events
		in.pruner = events
	case eventLogNone, "":
		log.WarnContext(ctx, "webhook event log disabled, provider retries will be reprocessed")
	default:
		in.Close()
		return nil, fmt.Errorf("unknown EVENT_LOG_BACKEND %q", cfg.App.EventLog)
	}
	return in, nil
}

// eventPruner is an event log whose expired entries must be deleted explicitly.
type eventPruner interface {
	Prune(ctx context.Context) (int64, error)
}

// pruneInterval runs cleanup several times per TTL, never more than once a minute.
func pruneInterval(ttl time.Duration) time.Duration {
	return max(ttl/6, time.Minute)
}

// runPruner deletes expired webhook events on every tick until ctx is done.
// Failures are logged and retried on the next tick.
func runPruner(ctx context.Context, p eventPruner, every time.Duration, log *slog.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.Prune(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.WarnContext(ctx, "prune webhook events", logger.Error(err))
				continue
			}
			log.DebugContext(ctx, "pruned webhook events", slog.Int64("deleted", n))
		}
	}
}

// newMetrics registers the subscription counters and the runtime collectors
// on a dedicated registry.
func newMetrics() (*prometheus.Registry, *subscription.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, subscription.NewMetrics(reg)
}

func subscriptionOptions(cfg serveConfig, log *slog.Logger, metrics *subscription.Metrics, events subscription.EventLog) []subscription.Option {
	opts := []subscription.Option{
		subscription.WithLogger(log),
		subscription.WithMetrics(metrics),
		subscription.WithSiteURL(cfg.App.SiteURL),
		subscription.WithDefaultPriceID(cfg.Stripe.PriceID),
		subscription.WithUserMetadataKey(cfg.Stripe.UserMetadataKey),
	}
	if events != nil {
		opts = append(opts, subscription.WithEventLog(events))
	}
	return opts
}

// newRateLimiter shares windows through Redis when it is configured and
// falls back to process memory otherwise. A zero limit disables limiting.
func newRateLimiter(cfg ratelimiter.Config, client *goredis.Client) (*ratelimiter.Limiter, func(), error) {
	if cfg.Limit <= 0 {
		return nil, func() {}, nil
	}
	if client != nil {
		l, err := ratelimiter.New(ratelimiter.NewRedisStore(client, ""), cfg)
		return l, func() {}, err
	}
	store := ratelimiter.NewMemoryStore()
	l, err := ratelimiter.New(store, cfg)
	return l, store.Close, err
}

var errMissingUser = errors.New("--user is required")
