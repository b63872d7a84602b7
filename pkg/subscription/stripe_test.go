package subscription_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/clientflow/clientflow/pkg/subscription"
)

const testWebhookSecret = "whsec_test_secret"

func newStripeProvider(t *testing.T, apiURL string) *subscription.StripeProvider {
	t.Helper()
	p, err := subscription.NewStripeProvider(subscription.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		APIURL:        apiURL,
	})
	require.NoError(t, err)
	return p
}

func signedEvent(t *testing.T, evt map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	})
	return signed.Payload, signed.Header
}

func TestNewStripeProvider(t *testing.T) {
	t.Parallel()

	_, err := subscription.NewStripeProvider(subscription.StripeConfig{WebhookSecret: "whsec"})
	assert.ErrorIs(t, err, subscription.ErrMissingAPIKey)

	_, err = subscription.NewStripeProvider(subscription.StripeConfig{SecretKey: "sk"})
	assert.ErrorIs(t, err, subscription.ErrMissingWebhookSecret)
}

func TestStripeProvider_ParseEvent(t *testing.T) {
	t.Parallel()
	p := newStripeProvider(t, "")

	t.Run("subscription updated", func(t *testing.T) {
		t.Parallel()
		body, sig := signedEvent(t, map[string]any{
			"id":     "evt_1",
			"object": "event",
			"type":   "customer.subscription.updated",
			"data": map[string]any{"object": map[string]any{
				"id":                 "sub_1",
				"object":             "subscription",
				"customer":           "cus_1",
				"status":             "trialing",
				"current_period_end": 1767225600,
				"created":            1700000000,
				"metadata":           map[string]string{"supabase_user_id": "u1"},
			}},
		})

		evt, err := p.ParseEvent(body, sig)
		require.NoError(t, err)
		changed, ok := evt.(subscription.SubscriptionChanged)
		require.True(t, ok, "got %T", evt)
		assert.Equal(t, "evt_1", changed.Header().ID)
		assert.Equal(t, "customer.subscription.updated", changed.Header().Type)
		assert.Equal(t, "sub_1", changed.Subscription.ID)
		assert.Equal(t, "cus_1", changed.Subscription.CustomerID)
		assert.Equal(t, "trialing", changed.Subscription.Status)
		assert.Equal(t, int64(1767225600), changed.Subscription.CurrentPeriodEnd)
		assert.Equal(t, "u1", changed.Subscription.Metadata["supabase_user_id"])
	})

	t.Run("subscription deleted", func(t *testing.T) {
		t.Parallel()
		body, sig := signedEvent(t, map[string]any{
			"id":   "evt_2",
			"type": "customer.subscription.deleted",
			"data": map[string]any{"object": map[string]any{
				"id": "sub_1", "object": "subscription", "customer": "cus_1", "status": "canceled",
			}},
		})

		evt, err := p.ParseEvent(body, sig)
		require.NoError(t, err)
		_, ok := evt.(subscription.SubscriptionDeleted)
		assert.True(t, ok, "got %T", evt)
	})

	t.Run("checkout completed", func(t *testing.T) {
		t.Parallel()
		body, sig := signedEvent(t, map[string]any{
			"id":   "evt_3",
			"type": "checkout.session.completed",
			"data": map[string]any{"object": map[string]any{
				"id":                  "cs_1",
				"object":              "checkout.session",
				"subscription":        "sub_1",
				"client_reference_id": "u1",
			}},
		})

		evt, err := p.ParseEvent(body, sig)
		require.NoError(t, err)
		ref, ok := evt.(subscription.SubscriptionReferenced)
		require.True(t, ok, "got %T", evt)
		assert.Equal(t, "sub_1", ref.SubscriptionID)
		assert.Equal(t, "u1", ref.Metadata["supabase_user_id"])
	})

	t.Run("invoice without subscription", func(t *testing.T) {
		t.Parallel()
		body, sig := signedEvent(t, map[string]any{
			"id":   "evt_4",
			"type": "invoice.paid",
			"data": map[string]any{"object": map[string]any{"id": "in_1", "object": "invoice"}},
		})

		evt, err := p.ParseEvent(body, sig)
		require.NoError(t, err)
		ref, ok := evt.(subscription.SubscriptionReferenced)
		require.True(t, ok, "got %T", evt)
		assert.Empty(t, ref.SubscriptionID)
	})

	t.Run("unhandled type", func(t *testing.T) {
		t.Parallel()
		body, sig := signedEvent(t, map[string]any{
			"id":   "evt_5",
			"type": "customer.created",
			"data": map[string]any{"object": map[string]any{"id": "cus_1", "object": "customer"}},
		})

		evt, err := p.ParseEvent(body, sig)
		require.NoError(t, err)
		_, ok := evt.(subscription.Unhandled)
		assert.True(t, ok, "got %T", evt)
	})

	t.Run("tampered body", func(t *testing.T) {
		t.Parallel()
		body, sig := signedEvent(t, map[string]any{"id": "evt_6", "type": "invoice.paid"})
		body = append(body, ' ')

		_, err := p.ParseEvent(body, sig)
		assert.ErrorIs(t, err, subscription.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		payload := []byte(`{"id":"evt_7","type":"invoice.paid"}`)
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_other"})

		_, err := p.ParseEvent(signed.Payload, signed.Header)
		assert.ErrorIs(t, err, subscription.ErrInvalidSignature)
	})

	t.Run("missing signature", func(t *testing.T) {
		t.Parallel()
		_, err := p.ParseEvent([]byte(`{}`), "")
		assert.ErrorIs(t, err, subscription.ErrMissingSignature)
	})
}

func TestStripeProvider_API(t *testing.T) {
	t.Parallel()

	var checkoutForm, portalForm map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/customers/search", func(w http.ResponseWriter, r *http.Request) {
		data := []map[string]any{}
		if r.URL.Query().Get("query") == `metadata['supabase_user_id']:'u1'` {
			data = append(data, map[string]any{"id": "cus_1", "object": "customer"})
		}
		writeJSON(w, map[string]any{"object": "search_result", "data": data, "has_more": false, "url": "/v1/customers/search"})
	})
	mux.HandleFunc("POST /v1/customers", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "u2@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "u2", r.PostForm.Get("metadata[supabase_user_id]"))
		writeJSON(w, map[string]any{"id": "cus_2", "object": "customer"})
	})
	mux.HandleFunc("GET /v1/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cus_1", r.URL.Query().Get("customer"))
		assert.Equal(t, "all", r.URL.Query().Get("status"))
		writeJSON(w, map[string]any{
			"object": "list", "has_more": false, "url": "/v1/subscriptions",
			"data": []map[string]any{
				{"id": "sub_1", "object": "subscription", "customer": "cus_1", "status": "active", "current_period_end": 1767225600, "created": 10},
			},
		})
	})
	mux.HandleFunc("GET /v1/subscriptions/sub_1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": "sub_1", "object": "subscription", "customer": "cus_1", "status": "past_due"})
	})
	mux.HandleFunc("POST /v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		checkoutForm = r.PostForm
		writeJSON(w, map[string]any{"id": "cs_1", "object": "checkout.session", "url": "https://checkout.stripe.test/cs_1"})
	})
	mux.HandleFunc("POST /v1/billing_portal/sessions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		portalForm = r.PostForm
		writeJSON(w, map[string]any{"id": "bps_1", "object": "billing_portal.session", "url": "https://portal.stripe.test/bps_1"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	p := newStripeProvider(t, srv.URL)
	ctx := context.Background()

	customerID, err := p.FindCustomer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", customerID)

	_, err = p.FindCustomer(ctx, "nobody")
	assert.ErrorIs(t, err, subscription.ErrCustomerNotFound)

	customerID, err = p.CreateCustomer(ctx, subscription.Identity{UserID: "u2", Email: "u2@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "cus_2", customerID)

	subs, err := p.ListSubscriptions(ctx, "cus_1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub_1", subs[0].ID)
	assert.Equal(t, "cus_1", subs[0].CustomerID)

	sub, err := p.GetSubscription(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "past_due", sub.Status)

	link, err := p.CreateCheckoutSession(ctx, subscription.CheckoutSessionRequest{
		CustomerID: "cus_1", UserID: "u1", PriceID: "price_1",
		SuccessURL: "https://app/ok", CancelURL: "https://app/no",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/cs_1", link.URL)
	assert.Equal(t, "cs_1", link.SessionID)
	assert.Equal(t, "subscription", checkoutForm["mode"][0])
	assert.Equal(t, "price_1", checkoutForm["line_items[0][price]"][0])
	assert.Equal(t, "true", checkoutForm["allow_promotion_codes"][0])
	assert.Equal(t, "u1", checkoutForm["metadata[supabase_user_id]"][0])
	assert.Equal(t, "u1", checkoutForm["subscription_data[metadata][supabase_user_id]"][0])

	link, err = p.CreatePortalSession(ctx, "cus_1", "https://app/billing?portal=return")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.stripe.test/bps_1", link.URL)
	assert.Equal(t, "https://app/billing?portal=return", portalForm["return_url"][0])
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
