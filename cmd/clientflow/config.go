package main

import (
	"time"

	"github.com/clientflow/clientflow/pkg/config"
	"github.com/clientflow/clientflow/pkg/httpserver"
	"github.com/clientflow/clientflow/pkg/jwt"
	"github.com/clientflow/clientflow/pkg/logger"
	"github.com/clientflow/clientflow/pkg/pg"
	"github.com/clientflow/clientflow/pkg/ratelimiter"
	"github.com/clientflow/clientflow/pkg/redis"
	"github.com/clientflow/clientflow/pkg/subscription"
)

// Event log backends.
const (
	eventLogRedis    = "redis"
	eventLogPostgres = "postgres"
	eventLogNone     = "none"
)

type appConfig struct {
	Env            string        `env:"APP_ENV" envDefault:"production"`
	Name           string        `env:"APP_NAME" envDefault:"clientflow"`
	SiteURL        string        `env:"SITE_URL" envDefault:"http://localhost:3000"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGIN" envSeparator:","`
	MetricsAddr    string        `env:"METRICS_ADDR" envDefault:":9091"`
	EventLog       string        `env:"EVENT_LOG_BACKEND" envDefault:"redis"`
	EventLogTTL    time.Duration `env:"EVENT_LOG_TTL" envDefault:"72h"`
}

// serveConfig is everything the serve command reads. Each part is parsed
// separately so commands that need less do not require unrelated variables.
type serveConfig struct {
	App      appConfig
	Logger   logger.Config
	HTTP     httpserver.Config
	Postgres pg.Config
	Redis    redis.Config
	Stripe   subscription.StripeConfig
	Auth     jwt.Config
	Limit    ratelimiter.Config
}

func loadAppConfig() (appConfig, logger.Config, error) {
	var (
		app appConfig
		log logger.Config
	)
	if err := config.Load(&app); err != nil {
		return app, log, err
	}
	if err := config.Load(&log); err != nil {
		return app, log, err
	}
	return app, log, nil
}

func loadServeConfig() (serveConfig, error) {
	var cfg serveConfig
	var err error
	if cfg.App, cfg.Logger, err = loadAppConfig(); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg.HTTP); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg.Postgres); err != nil {
		return cfg, err
	}
	if cfg.App.EventLog == eventLogRedis {
		if err := config.Load(&cfg.Redis); err != nil {
			return cfg, err
		}
	}
	if err := config.Load(&cfg.Stripe); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg.Auth); err != nil {
		return cfg, err
	}
	if err := config.Load(&cfg.Limit); err != nil {
		return cfg, err
	}
	return cfg, nil
}
