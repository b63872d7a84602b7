package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/clientflow/clientflow/modules/billing"
	"github.com/clientflow/clientflow/pkg/httpserver"
	"github.com/clientflow/clientflow/pkg/jwt"
	"github.com/clientflow/clientflow/pkg/logger"
	"github.com/clientflow/clientflow/pkg/pg"
	"github.com/clientflow/clientflow/pkg/requestid"
	"github.com/clientflow/clientflow/pkg/subscription"
	substore "github.com/clientflow/clientflow/svc/subscription"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func runServe(ctx context.Context) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.App, cfg.Logger)

	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.Close()

	if migrateOnStart {
		if err := pg.Migrate(ctx, in.pool, cfg.Postgres, substore.Migrations, log); err != nil {
			return err
		}
	}

	provider, err := subscription.NewStripeProvider(cfg.Stripe)
	if err != nil {
		return err
	}
	verifier, err := jwt.NewVerifier(cfg.Auth)
	if err != nil {
		return err
	}
	limiter, closeLimiter, err := newRateLimiter(cfg.Limit, in.redis)
	if err != nil {
		return err
	}
	defer closeLimiter()

	reg, metrics := newMetrics()
	svc := newServices(provider, substore.NewPGStore(in.pool), subscriptionOptions(cfg, log, metrics, in.events)...)

	module := billing.New(billing.Options{
		Webhook:        svc.webhook,
		Billing:        svc.billing,
		Syncer:         svc.syncer,
		Gate:           svc.gate,
		Verifier:       verifier,
		Logger:         log,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	api := httpserver.New(cfg.HTTP, httpserver.WithLogger(log), httpserver.WithName("api"))
	metricsSrv := httpserver.New(httpserver.Config{Addr: cfg.App.MetricsAddr, ReadHeaderTimeout: 5 * time.Second},
		httpserver.WithLogger(log), httpserver.WithName("metrics"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return api.Run(ctx, newRouter(log, module, in.checks)) })
	g.Go(func() error { return metricsSrv.Run(ctx, metricsHandler(reg)) })
	if in.pruner != nil {
		g.Go(func() error { return runPruner(ctx, in.pruner, pruneInterval(cfg.App.EventLogTTL), log) })
	}

	log.InfoContext(ctx, "clientflow started", slog.String("version", Version))
	return g.Wait()
}

func newRouter(log *slog.Logger, module billing.Mountable, checks map[string]httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(log, checks))
	r.Mount("/billing", module.Handle())
	return r
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// accessLog logs one line per request. Health probes are logged at debug level.
func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if strings.HasPrefix(r.URL.Path, "/health/") {
				level = slog.LevelDebug
			}
			log.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
