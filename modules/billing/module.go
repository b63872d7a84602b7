package billing

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/clientflow/clientflow/pkg/jwt"
	"github.com/clientflow/clientflow/pkg/logger"
	"github.com/clientflow/clientflow/pkg/ratelimiter"
	"github.com/clientflow/clientflow/pkg/subscription"
)

const (
	maxWebhookBody = 1 << 20
	maxJSONBody    = 64 << 10
)

// Mountable is implemented by modules that expose their routes as a sub-router.
type Mountable interface {
	Handle() http.Handler
}

// Options wires the subscription services into the module.
// Logger, RateLimiter and AllowedOrigins are optional.
type Options struct {
	Webhook  *subscription.WebhookIngress
	Billing  *subscription.Billing
	Syncer   *subscription.Syncer
	Gate     *subscription.Gate
	Verifier *jwt.Verifier
	Logger   *slog.Logger

	// RateLimiter caps per-user calls to the endpoints that reach the provider API.
	RateLimiter *ratelimiter.Limiter

	// AllowedOrigins lists the SPA origins allowed by CORS. Empty allows any origin.
	AllowedOrigins []string
}

// Module serves the billing endpoints.
type Module struct {
	webhook  *subscription.WebhookIngress
	billing  *subscription.Billing
	syncer   *subscription.Syncer
	gate     *subscription.Gate
	verifier *jwt.Verifier
	limiter  *ratelimiter.Limiter
	cors     *cors.Cors
	log      *slog.Logger
}

var _ Mountable = (*Module)(nil)

// New creates the module. Panics if a required dependency is missing.
func New(opts Options) *Module {
	if opts.Webhook == nil || opts.Billing == nil || opts.Syncer == nil || opts.Gate == nil || opts.Verifier == nil {
		panic("billing: missing dependency")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Module{
		webhook:  opts.Webhook,
		billing:  opts.Billing,
		syncer:   opts.Syncer,
		gate:     opts.Gate,
		verifier: opts.Verifier,
		limiter:  opts.RateLimiter,
		cors: cors.New(cors.Options{
			AllowedOrigins:       origins,
			AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:       []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
			MaxAge:               86400,
			OptionsSuccessStatus: http.StatusOK,
		}),
		log: log.With(logger.Component("billing")),
	}
}

// Handle returns the billing router, meant to be mounted at /billing.
//
//	r.Mount("/billing", billing.New(opts).Handle())
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(m.cors.Handler)

	r.Post("/webhook", m.handleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(m.Authenticate)
		r.Get("/subscription", m.handleSubscription)

		r.Group(func(r chi.Router) {
			if m.limiter != nil {
				r.Use(ratelimiter.Middleware(m.limiter, userKey, m.rateLimited))
			}
			r.Post("/checkout", m.handleCheckout)
			r.Post("/portal", m.handlePortal)
			r.Post("/sync", m.handleSync)
		})
	})

	return r
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func (m *Module) Authenticate(next http.Handler) http.Handler {
	return jwt.Middleware(m.verifier, func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, m.log, err)
	})(next)
}

// RequireAccess denies requests of users without an access-granting subscription
// with 402. A store failure is a 500, never a pass. Must run after Authenticate.
func (m *Module) RequireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity(r)
		if !ok {
			writeError(w, r, m.log, ErrUnauthorized)
			return
		}
		allowed, _, err := m.gate.Check(r.Context(), id.UserID)
		if err != nil {
			writeError(w, r, m.log, err)
			return
		}
		if !allowed {
			writeError(w, r, m.log, ErrPaymentRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var userKey = ratelimiter.Composite(ratelimiter.Prefix("billing"), func(r *http.Request) string {
	id, _ := identity(r)
	return id.UserID
})

func (m *Module) rateLimited(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ratelimiter.ErrLimited) {
		err = ErrTooManyRequests
	}
	writeError(w, r, m.log, err)
}

func identity(r *http.Request) (subscription.Identity, bool) {
	claims, ok := jwt.ClaimsFromContext(r.Context())
	if !ok || claims.Subject == "" {
		return subscription.Identity{}, false
	}
	return subscription.Identity{UserID: claims.Subject, Email: claims.Email}, true
}
