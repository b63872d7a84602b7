package subscription

import (
	"log/slog"
	"time"
)

// Option configures the components of this package.
type Option func(*options)

type options struct {
	now      func() time.Time
	log      *slog.Logger
	metrics  *Metrics
	events   EventLog
	userKey  string
	siteURL  string
	defPrice string
}

func applyOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		log:     slog.New(slog.DiscardHandler),
		userKey: DefaultUserMetadataKey,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock overrides the time source used for UpdatedAt and gate evaluation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records counters on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithEventLog enables replay detection for webhook events.
func WithEventLog(l EventLog) Option {
	return func(o *options) { o.events = l }
}

// WithUserMetadataKey sets the provider metadata key holding the user ID.
func WithUserMetadataKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.userKey = key
		}
	}
}

// WithSiteURL sets the base URL used to derive default redirect targets.
func WithSiteURL(u string) Option {
	return func(o *options) { o.siteURL = u }
}

// WithDefaultPriceID sets the price used when a checkout request names none.
func WithDefaultPriceID(id string) Option {
	return func(o *options) { o.defPrice = id }
}
